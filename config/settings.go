package config

import "strconv"

// SearchSettings tunes listing search ranking and pagination.
//
// The bonuses are added on top of the TF-IDF weight when the raw query is a
// case-insensitive substring of the listing name, boarding name or boarding
// address respectively.
type SearchSettings struct {
	DefaultLimit         int     `yaml:"defaultLimit" json:"default_limit"` // Used when a supplied limit is malformed
	MaxLimit             int     `yaml:"maxLimit" json:"max_limit"`         // Upper bound on a supplied limit (0 = none)
	SimilarLimit         int     `yaml:"similarLimit" json:"similar_limit"` // Number of results in similarity mode
	NameBonus            float64 `yaml:"nameBonus" json:"name_bonus"`
	BoardingNameBonus    float64 `yaml:"boardingNameBonus" json:"boarding_name_bonus"`
	BoardingAddressBonus float64 `yaml:"boardingAddressBonus" json:"boarding_address_bonus"`
}

// DefaultSearchSettings returns the settings used when nothing is configured.
func DefaultSearchSettings() SearchSettings {
	s := SearchSettings{}
	s.ApplyDefaults()
	return s
}

// ApplyDefaults fills zero values with the default ranking constants
func (settings *SearchSettings) ApplyDefaults() {
	if settings.DefaultLimit == 0 {
		settings.DefaultLimit = 10
	}
	if settings.SimilarLimit == 0 {
		settings.SimilarLimit = 5
	}
	if settings.NameBonus == 0 {
		settings.NameBonus = 2.0
	}
	if settings.BoardingNameBonus == 0 {
		settings.BoardingNameBonus = 1.5
	}
	if settings.BoardingAddressBonus == 0 {
		settings.BoardingAddressBonus = 1.5
	}
}

// Validate returns one message per invalid setting.
func (settings *SearchSettings) Validate() []string {
	var errors []string

	if settings.DefaultLimit < 1 {
		errors = append(errors, "search.defaultLimit must be at least 1, got "+strconv.Itoa(settings.DefaultLimit))
	}
	if settings.SimilarLimit < 1 {
		errors = append(errors, "search.similarLimit must be at least 1, got "+strconv.Itoa(settings.SimilarLimit))
	}
	if settings.MaxLimit < 0 {
		errors = append(errors, "search.maxLimit cannot be negative")
	}
	if settings.MaxLimit > 0 && settings.DefaultLimit > settings.MaxLimit {
		errors = append(errors, "search.defaultLimit cannot exceed search.maxLimit")
	}

	bonuses := []struct {
		name  string
		value float64
	}{
		{"search.nameBonus", settings.NameBonus},
		{"search.boardingNameBonus", settings.BoardingNameBonus},
		{"search.boardingAddressBonus", settings.BoardingAddressBonus},
	}
	for _, b := range bonuses {
		if b.value < 0 {
			errors = append(errors, b.name+" cannot be negative")
		}
	}

	return errors
}
