// Package postgres is the PostgreSQL listing store, using lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/unimate/listing-search/config"
	apperrors "github.com/unimate/listing-search/internal/errors"
	"github.com/unimate/listing-search/internal/logger"
	"github.com/unimate/listing-search/model"
	"github.com/unimate/listing-search/services"
)

// Store implements services.Store on PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ services.Store = (*Store)(nil)

// New opens a connection pool, verifies it and creates the schema if needed.
func New(ctx context.Context, cfg config.PostgresConfig) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.WithComponent("postgres").Info("connected to postgres", "host", cfg.Host, "database", cfg.Database)
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return apperrors.NewStoreError("migrate", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back transaction after error %v: %w", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// PutBoardings upserts boardings in one transaction.
func (s *Store) PutBoardings(ctx context.Context, boardings []model.Boarding) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertBoarding)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, b := range boardings {
			if _, err := stmt.ExecContext(ctx, b.ID, b.Name, b.Address, b.Description,
				pq.Array(nonNil(b.Amenities)), b.Status, b.Owner); err != nil {
				return fmt.Errorf("boarding %s: %w", b.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.NewStoreError("put boardings", err)
	}
	return nil
}

// PutListings upserts listings in one transaction.
func (s *Store) PutListings(ctx context.Context, listings []model.Listing) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertListing)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, l := range listings {
			var keyMoney sql.NullFloat64
			if l.KeyMoney != nil {
				keyMoney = sql.NullFloat64{Float64: *l.KeyMoney, Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, l.ID, l.Name, l.Description, l.Type, l.Gender,
				pq.Array(nonNil(l.Amenities)), l.Price, l.Distance, l.Available, keyMoney,
				l.Status, l.PayStatus, l.Owner, l.BoardingID, l.CreatedAt, l.UpdatedAt); err != nil {
				return fmt.Errorf("listing %s: %w", l.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.NewStoreError("put listings", err)
	}
	return nil
}

// ApprovedOwners selects the distinct owners of approved boardings.
func (s *Store) ApprovedOwners(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT owner FROM boardings WHERE status = $1 ORDER BY owner`, model.StatusApproved)
	if err != nil {
		return nil, apperrors.NewStoreError("approved owners", err)
	}
	defer rows.Close()

	owners := []string{}
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, apperrors.NewStoreError("approved owners", err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("approved owners", err)
	}
	return owners, nil
}

// FindListings runs the filtered, ordered and paged select.
func (s *Store) FindListings(ctx context.Context, filter services.ListingFilter) ([]model.ListingView, error) {
	query, args := findQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("find listings", err)
	}
	defer rows.Close()

	views := []model.ListingView{}
	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("find listings", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("find listings", err)
	}
	return views, nil
}

// CountListings counts all rows matching filter.
func (s *Store) CountListings(ctx context.Context, filter services.ListingFilter) (int, error) {
	query, args := countQuery(filter)
	var total int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, apperrors.NewStoreError("count listings", err)
	}
	return total, nil
}

// GetListing loads one listing joined with its boarding.
func (s *Store) GetListing(ctx context.Context, id string) (model.ListingView, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" "+fromJoin+" WHERE l.id = $1", id)
	view, err := scanView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ListingView{}, apperrors.NewListingNotFoundError(id)
	}
	if err != nil {
		return model.ListingView{}, apperrors.NewStoreError("get listing", err)
	}
	return view, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanView(row scanner) (model.ListingView, error) {
	var (
		view      model.ListingView
		amenities pq.StringArray
		keyMoney  sql.NullFloat64

		boardingID, boardingName, boardingAddress sql.NullString
		boardingDesc, boardingStatus, boardingOwn sql.NullString
		boardingAmenities                         pq.StringArray
	)
	l := &view.Listing
	err := row.Scan(
		&l.ID, &l.Name, &l.Description, &l.Type, &l.Gender, &amenities, &l.Price, &l.Distance,
		&l.Available, &keyMoney, &l.Status, &l.PayStatus, &l.Owner, &l.BoardingID,
		&l.CreatedAt, &l.UpdatedAt,
		&boardingID, &boardingName, &boardingAddress, &boardingDesc, &boardingAmenities,
		&boardingStatus, &boardingOwn,
	)
	if err != nil {
		return model.ListingView{}, err
	}

	l.Amenities = []string(amenities)
	if keyMoney.Valid {
		v := keyMoney.Float64
		l.KeyMoney = &v
	}
	if boardingID.Valid {
		view.Boarding = &model.Boarding{
			ID:          boardingID.String,
			Name:        boardingName.String,
			Address:     boardingAddress.String,
			Description: boardingDesc.String,
			Amenities:   []string(boardingAmenities),
			Status:      boardingStatus.String,
			Owner:       boardingOwn.String,
		}
	}
	return view, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
