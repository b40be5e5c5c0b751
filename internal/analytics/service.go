package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/unimate/listing-search/config"
	"github.com/unimate/listing-search/internal/logger"
	"github.com/unimate/listing-search/internal/persistence"
	"github.com/unimate/listing-search/model"
	"github.com/unimate/listing-search/services"
)

const (
	defaultMaxEvents   = 10000
	popularSearchLimit = 5
	publishTimeout     = 5 * time.Second
)

// Publisher forwards search events to an external sink.
type Publisher interface {
	Publish(ctx context.Context, event model.SearchEvent) error
	Close() error
}

// Service keeps the most recent search events in memory and aggregates them
// into dashboard data.
type Service struct {
	mutex        sync.RWMutex
	events       []model.SearchEvent
	maxEvents    int
	snapshotPath string
	publisher    Publisher
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher forwards every tracked event to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// NewService creates an analytics service. When cfg.SnapshotPath is set, the
// events of a previous snapshot are restored.
func NewService(cfg config.AnalyticsConfig, opts ...Option) *Service {
	s := &Service{
		events:       make([]model.SearchEvent, 0),
		maxEvents:    cfg.MaxEvents,
		snapshotPath: cfg.SnapshotPath,
		logger:       logger.WithComponent("analytics"),
		now:          time.Now,
	}
	if s.maxEvents <= 0 {
		s.maxEvents = defaultMaxEvents
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.restore(); err != nil {
		s.logger.Warn("failed to restore analytics snapshot", "path", s.snapshotPath, "error", err)
	}
	return s
}

// TrackSearchEvent records a search event, dropping the oldest events beyond
// the buffer size. A publish failure is logged and does not fail tracking.
func (s *Service) TrackSearchEvent(event model.SearchEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}

	s.mutex.Lock()
	s.events = append(s.events, event)
	if len(s.events) > s.maxEvents {
		s.events = s.events[len(s.events)-s.maxEvents:]
	}
	s.mutex.Unlock()

	if s.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish search event", "request_id", event.RequestID, "error", err)
		}
	}
	return nil
}

// GetDashboardData aggregates the buffered events.
func (s *Service) GetDashboardData() (model.AnalyticsDashboard, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	dashboard := model.AnalyticsDashboard{
		TotalSearches:            len(s.events),
		AvgResponseTime:          avgResponseTime(s.events),
		PopularSearches:          popularSearches(s.events),
		ResponseTimeDistribution: responseTimeDistribution(s.events),
		SearchModes:              searchModeStats(s.events),
	}
	for _, event := range s.events {
		switch {
		case event.Failed:
			dashboard.FailedSearches++
		case event.ResultCount == 0:
			dashboard.ZeroResultSearches++
		}
	}
	if succeeded := dashboard.TotalSearches - dashboard.FailedSearches; succeeded > 0 {
		dashboard.ZeroResultRate = float64(dashboard.ZeroResultSearches) / float64(succeeded) * 100
	}
	return dashboard, nil
}

// Snapshot writes the buffered events to the snapshot path. It is a no-op when
// no path is configured.
func (s *Service) Snapshot() error {
	if s.snapshotPath == "" {
		return nil
	}
	s.mutex.RLock()
	events := make([]model.SearchEvent, len(s.events))
	copy(events, s.events)
	s.mutex.RUnlock()

	if err := persistence.SaveGob(s.snapshotPath, events); err != nil {
		return fmt.Errorf("failed to save analytics snapshot: %w", err)
	}
	s.logger.Info("analytics snapshot saved", "path", s.snapshotPath, "events", len(events))
	return nil
}

// Close flushes the publisher, if any.
func (s *Service) Close() error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.Close()
}

func (s *Service) restore() error {
	if s.snapshotPath == "" {
		return nil
	}
	var events []model.SearchEvent
	if err := persistence.LoadGob(s.snapshotPath, &events); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(events) > s.maxEvents {
		events = events[len(events)-s.maxEvents:]
	}
	s.events = events
	return nil
}

// avgResponseTime returns the mean response time in milliseconds.
func avgResponseTime(events []model.SearchEvent) int64 {
	if len(events) == 0 {
		return 0
	}
	var total time.Duration
	for _, event := range events {
		total += event.ResponseTime
	}
	return (total / time.Duration(len(events))).Milliseconds()
}

// popularSearches returns the most frequent free-text queries, compared
// case-insensitively.
func popularSearches(events []model.SearchEvent) []model.PopularSearch {
	counts := make(map[string]int)
	for _, event := range events {
		q := strings.ToLower(strings.TrimSpace(event.Query))
		if q != "" {
			counts[q]++
		}
	}

	popular := make([]model.PopularSearch, 0, len(counts))
	for q, n := range counts {
		popular = append(popular, model.PopularSearch{Query: q, SearchCount: n})
	}
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].SearchCount != popular[j].SearchCount {
			return popular[i].SearchCount > popular[j].SearchCount
		}
		return popular[i].Query < popular[j].Query
	})
	if len(popular) > popularSearchLimit {
		popular = popular[:popularSearchLimit]
	}
	return popular
}

func responseTimeDistribution(events []model.SearchEvent) model.ResponseTimeDistribution {
	dist := model.ResponseTimeDistribution{}
	total := len(events)
	if total == 0 {
		return dist
	}

	for _, event := range events {
		ms := event.ResponseTime.Milliseconds()
		switch {
		case ms <= 25:
			dist.Bucket0To25ms++
		case ms <= 50:
			dist.Bucket25To50ms++
		case ms <= 100:
			dist.Bucket50To100ms++
		default:
			dist.Bucket100msPlus++
		}
	}

	dist.Percentage0To25 = float64(dist.Bucket0To25ms) / float64(total) * 100
	dist.Percentage25To50 = float64(dist.Bucket25To50ms) / float64(total) * 100
	dist.Percentage50To100 = float64(dist.Bucket50To100ms) / float64(total) * 100
	dist.Percentage100Plus = float64(dist.Bucket100msPlus) / float64(total) * 100
	return dist
}

func searchModeStats(events []model.SearchEvent) model.SearchModeStats {
	stats := model.SearchModeStats{}
	for _, event := range events {
		switch services.SearchMode(event.Mode) {
		case services.ModeBrowse:
			stats.Browse++
		case services.ModeFreeText:
			stats.FreeText++
		case services.ModeSimilar:
			stats.Similar++
		}
	}
	return stats
}
