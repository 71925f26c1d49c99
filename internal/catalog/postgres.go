// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	apperrors "travelease/internal/common/errors"
	"travelease/internal/common/logger"
	"travelease/internal/models"

	"github.com/lib/pq"
)

// PostgresSchema creates the listing tables PostgresSource reads. position
// carries catalog order.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS listings_housing (
	id              TEXT PRIMARY KEY,
	position        INTEGER NOT NULL,
	location        TEXT NOT NULL,
	neighborhood    TEXT,
	housing_type    TEXT NOT NULL,
	rental_type     TEXT,
	cost_per_night  NUMERIC NOT NULL,
	amenities       TEXT[] NOT NULL DEFAULT '{}',
	safety          TEXT,
	safety_rating   NUMERIC,
	scheduled_dates TEXT[] NOT NULL DEFAULT '{}',
	reviews         TEXT[] NOT NULL DEFAULT '{}',
	bedrooms        INTEGER,
	bathrooms       INTEGER,
	beds            INTEGER
);
CREATE TABLE IF NOT EXISTS listings_cuisine (
	id           TEXT PRIMARY KEY,
	position     INTEGER NOT NULL,
	name         TEXT,
	location     TEXT NOT NULL,
	cuisine_type TEXT NOT NULL,
	pricing      TEXT
);
CREATE TABLE IF NOT EXISTS listings_experience (
	id         TEXT PRIMARY KEY,
	position   INTEGER NOT NULL,
	location   TEXT NOT NULL,
	experience TEXT NOT NULL,
	company    TEXT,
	pricing    TEXT,
	keyword    TEXT
);`

const (
	queryHousing = `
		SELECT id, location, neighborhood, housing_type, rental_type, cost_per_night,
		       amenities, safety, safety_rating, scheduled_dates, reviews,
		       bedrooms, bathrooms, beds
		FROM listings_housing
		ORDER BY position`
	queryCuisine = `
		SELECT id, name, location, cuisine_type, pricing
		FROM listings_cuisine
		ORDER BY position`
	queryExperience = `
		SELECT id, location, experience, company, pricing, keyword
		FROM listings_experience
		ORDER BY position`
)

// PostgresSource loads listings from the listings_* tables.
type PostgresSource struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresSource(db *sql.DB, log logger.Logger) *PostgresSource {
	return &PostgresSource{
		db:     db,
		logger: log.With(map[string]interface{}{"component": "catalog-postgres"}),
	}
}

func (s *PostgresSource) Name() string { return "postgres" }

func (s *PostgresSource) Load(ctx context.Context) (*Store, error) {
	start := time.Now()

	housing, err := s.loadHousing(ctx)
	if err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(s.Name(), err)
	}
	cuisine, err := s.loadCuisine(ctx)
	if err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(s.Name(), err)
	}
	experiences, err := s.loadExperiences(ctx)
	if err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(s.Name(), err)
	}

	s.logger.Info("Loaded Postgres catalog", map[string]interface{}{
		"housing":     len(housing),
		"cuisine":     len(cuisine),
		"experiences": len(experiences),
		"durationMs":  time.Since(start).Milliseconds(),
	})

	store, err := NewStore(housing, cuisine, experiences)
	if err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(s.Name(), err)
	}
	return store, nil
}

func (s *PostgresSource) loadHousing(ctx context.Context) ([]models.Housing, error) {
	rows, err := s.db.QueryContext(ctx, queryHousing)
	if err != nil {
		return nil, fmt.Errorf("query housing: %w", err)
	}
	defer rows.Close()

	var out []models.Housing
	for rows.Next() {
		var (
			h                            models.Housing
			neighborhood, rental, safety sql.NullString
			rating                       sql.NullFloat64
			bedrooms, bathrooms, beds    sql.NullInt64
			amenities, dates, reviews    pq.StringArray
		)
		if err := rows.Scan(
			&h.ID, &h.Location, &neighborhood, &h.HousingType, &rental, &h.CostPerNight,
			&amenities, &safety, &rating, &dates, &reviews,
			&bedrooms, &bathrooms, &beds,
		); err != nil {
			return nil, fmt.Errorf("scan housing: %w", err)
		}
		h.Neighborhood = neighborhood.String
		h.RentalType = rental.String
		h.Amenities = []string(amenities)
		h.ScheduledDates = []string(dates)
		h.Reviews = []string(reviews)
		h.SafetyRating = rating.Float64
		h.Bedrooms = int(bedrooms.Int64)
		h.Bathrooms = int(bathrooms.Int64)
		h.Beds = int(beds.Int64)
		if safety.Valid {
			h.Safety, _ = models.ParseSafety(safety.String)
		} else {
			h.Safety = SafetyFromRating(h.SafetyRating)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *PostgresSource) loadCuisine(ctx context.Context) ([]models.Cuisine, error) {
	rows, err := s.db.QueryContext(ctx, queryCuisine)
	if err != nil {
		return nil, fmt.Errorf("query cuisine: %w", err)
	}
	defer rows.Close()

	var out []models.Cuisine
	for rows.Next() {
		var (
			c             models.Cuisine
			name, pricing sql.NullString
		)
		if err := rows.Scan(&c.ID, &name, &c.Location, &c.CuisineType, &pricing); err != nil {
			return nil, fmt.Errorf("scan cuisine: %w", err)
		}
		c.Name = name.String
		c.Pricing, _ = models.ParsePricing(pricing.String)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresSource) loadExperiences(ctx context.Context) ([]models.Experience, error) {
	rows, err := s.db.QueryContext(ctx, queryExperience)
	if err != nil {
		return nil, fmt.Errorf("query experiences: %w", err)
	}
	defer rows.Close()

	var out []models.Experience
	for rows.Next() {
		var (
			e                         models.Experience
			company, pricing, keyword sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Location, &e.Experience, &company, &pricing, &keyword); err != nil {
			return nil, fmt.Errorf("scan experience: %w", err)
		}
		e.Company = company.String
		e.Keyword = keyword.String
		e.Pricing, _ = models.ParsePricing(pricing.String)
		out = append(out, e)
	}
	return out, rows.Err()
}
