package postgres

import (
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/unimate/listing-search/model"
	"github.com/unimate/listing-search/services"
)

const schema = `
CREATE TABLE IF NOT EXISTS boardings (
	id          TEXT PRIMARY KEY,
	name        TEXT   NOT NULL DEFAULT '',
	address     TEXT   NOT NULL DEFAULT '',
	description TEXT   NOT NULL DEFAULT '',
	amenities   TEXT[] NOT NULL DEFAULT '{}',
	status      TEXT   NOT NULL,
	owner       TEXT   NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_boardings_status_owner ON boardings (status, owner);

CREATE TABLE IF NOT EXISTS listings (
	id          TEXT PRIMARY KEY,
	name        TEXT             NOT NULL DEFAULT '',
	description TEXT             NOT NULL DEFAULT '',
	type        TEXT             NOT NULL DEFAULT '',
	gender      TEXT             NOT NULL DEFAULT '',
	amenities   TEXT[]           NOT NULL DEFAULT '{}',
	price       DOUBLE PRECISION NOT NULL DEFAULT 0,
	distance    DOUBLE PRECISION NOT NULL DEFAULT 0,
	available   INTEGER          NOT NULL DEFAULT 0,
	key_money   DOUBLE PRECISION,
	status      TEXT             NOT NULL,
	pay_status  TEXT             NOT NULL DEFAULT '',
	owner       TEXT             NOT NULL,
	boarding_id TEXT             NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ      NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_listings_searchable ON listings (status, pay_status, owner);
CREATE INDEX IF NOT EXISTS idx_listings_price      ON listings (price);
CREATE INDEX IF NOT EXISTS idx_listings_distance   ON listings (distance);
CREATE INDEX IF NOT EXISTS idx_listings_created_at ON listings (created_at);
`

const selectColumns = `
	l.id, l.name, l.description, l.type, l.gender, l.amenities, l.price, l.distance,
	l.available, l.key_money, l.status, l.pay_status, l.owner, l.boarding_id,
	l.created_at, l.updated_at,
	b.id, b.name, b.address, b.description, b.amenities, b.status, b.owner`

const fromJoin = `FROM listings l LEFT JOIN boardings b ON b.id = l.boarding_id`

const upsertBoarding = `
INSERT INTO boardings (id, name, address, description, amenities, status, owner)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name, address = EXCLUDED.address, description = EXCLUDED.description,
	amenities = EXCLUDED.amenities, status = EXCLUDED.status, owner = EXCLUDED.owner`

const upsertListing = `
INSERT INTO listings (id, name, description, type, gender, amenities, price, distance,
	available, key_money, status, pay_status, owner, boarding_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name, description = EXCLUDED.description, type = EXCLUDED.type,
	gender = EXCLUDED.gender, amenities = EXCLUDED.amenities, price = EXCLUDED.price,
	distance = EXCLUDED.distance, available = EXCLUDED.available, key_money = EXCLUDED.key_money,
	status = EXCLUDED.status, pay_status = EXCLUDED.pay_status, owner = EXCLUDED.owner,
	boarding_id = EXCLUDED.boarding_id, created_at = EXCLUDED.created_at, updated_at = EXCLUDED.updated_at`

// whereBuilder accumulates AND-ed predicates with positional placeholders.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *whereBuilder) add(clause string) {
	w.clauses = append(w.clauses, clause)
}

// buildWhere translates filter into a WHERE clause and its arguments.
func buildWhere(filter services.ListingFilter) (string, []any) {
	w := &whereBuilder{}

	owners := filter.Owners
	if owners == nil {
		owners = []string{}
	}
	w.add("l.available >= 0")
	w.add("l.status = " + w.arg(model.StatusApproved))
	w.add("l.pay_status = " + w.arg(model.PayStatusDone))
	w.add("l.owner = ANY(" + w.arg(pq.Array(owners)) + ")")

	if filter.Type != "" {
		w.add("l.type = " + w.arg(filter.Type))
	}
	if filter.Gender != "" {
		w.add("l.gender = " + w.arg(filter.Gender))
	}
	// NULL key_money fails both comparisons
	switch filter.KeyMoney {
	case services.KeyMoneyWith:
		w.add("l.key_money > 0")
	case services.KeyMoneyWithout:
		w.add("l.key_money = 0")
	}
	if filter.PriceMin != nil {
		w.add("l.price >= " + w.arg(*filter.PriceMin))
	}
	if filter.PriceMax != nil {
		w.add("l.price <= " + w.arg(*filter.PriceMax))
	}
	if filter.DistanceMin != nil {
		w.add("l.distance >= " + w.arg(*filter.DistanceMin))
	}
	if filter.DistanceMax != nil {
		w.add("l.distance <= " + w.arg(*filter.DistanceMax))
	}
	if filter.Text != "" {
		p := w.arg("%" + escapeLike(filter.Text) + "%")
		fields := []string{"l.name", "l.description", "l.type", "b.name", "b.address", "b.description"}
		alternatives := make([]string, len(fields))
		for i, f := range fields {
			alternatives[i] = f + " ILIKE " + p
		}
		w.add("(" + strings.Join(alternatives, " OR ") + ")")
	}

	return "WHERE " + strings.Join(w.clauses, " AND "), w.args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes text match literally inside an ILIKE pattern.
func escapeLike(text string) string {
	return likeEscaper.Replace(text)
}

// orderClause maps a sort order to ORDER BY, breaking ties on id. Names compare
// by byte value so ordering matches the other backends.
func orderClause(order services.SortOrder) string {
	var primary string
	switch order {
	case services.SortNameAsc:
		primary = `l.name COLLATE "C" ASC`
	case services.SortNameDesc:
		primary = `l.name COLLATE "C" DESC`
	case services.SortPriceAsc:
		primary = "l.price ASC"
	case services.SortPriceDesc:
		primary = "l.price DESC"
	case services.SortDistanceAsc:
		primary = "l.distance ASC"
	case services.SortDistanceDesc:
		primary = "l.distance DESC"
	default:
		primary = "l.created_at DESC"
	}
	return "ORDER BY " + primary + `, l.id COLLATE "C" ASC`
}

// findQuery builds the paged, ordered listing select.
func findQuery(filter services.ListingFilter) (string, []any) {
	where, args := buildWhere(filter)
	query := "SELECT " + selectColumns + " " + fromJoin + " " + where + " " + orderClause(filter.Sort)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if filter.Skip > 0 {
		args = append(args, filter.Skip)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}
	return query, args
}

// countQuery builds the unpaged match count.
func countQuery(filter services.ListingFilter) (string, []any) {
	where, args := buildWhere(filter)
	return "SELECT COUNT(*) " + fromJoin + " " + where, args
}
