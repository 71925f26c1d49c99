// internal/catalog/csv.go
package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "travelease/internal/common/errors"
	"travelease/internal/common/logger"
	"travelease/internal/models"
)

// CSVSource loads listings from per-category CSV exports. An empty path
// yields an empty category.
type CSVSource struct {
	HousingPath    string
	CuisinePath    string
	ExperiencePath string
	// DefaultLocation fills rows without a location column, as in the
	// single-city housing exports.
	DefaultLocation string

	logger logger.Logger
}

// NewCSVSource creates a CSV-backed source.
func NewCSVSource(housingPath, cuisinePath, experiencePath string, log logger.Logger) *CSVSource {
	return &CSVSource{
		HousingPath:     housingPath,
		CuisinePath:     cuisinePath,
		ExperiencePath:  experiencePath,
		DefaultLocation: boston,
		logger:          log.With(map[string]interface{}{"component": "catalog-csv"}),
	}
}

func (s *CSVSource) Name() string { return "csv" }

func (s *CSVSource) Load(ctx context.Context) (*Store, error) {
	var (
		housing     []models.Housing
		cuisine     []models.Cuisine
		experiences []models.Experience
	)

	if err := s.readFile(s.HousingPath, func(r io.Reader) (err error) {
		housing, err = ReadHousingCSV(r, s.DefaultLocation)
		return err
	}); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.readFile(s.CuisinePath, func(r io.Reader) (err error) {
		cuisine, err = ReadCuisineCSV(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := s.readFile(s.ExperiencePath, func(r io.Reader) (err error) {
		experiences, err = ReadExperienceCSV(r)
		return err
	}); err != nil {
		return nil, err
	}

	s.logger.Info("Loaded CSV catalog", map[string]interface{}{
		"housing":     len(housing),
		"cuisine":     len(cuisine),
		"experiences": len(experiences),
	})

	store, err := NewStore(housing, cuisine, experiences)
	if err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(s.Name(), err)
	}
	return store, nil
}

func (s *CSVSource) readFile(path string, read func(io.Reader) error) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return apperrors.NewCatalogLoadFailedError(s.Name(), err)
	}
	defer f.Close()

	if err := read(f); err != nil {
		return apperrors.NewCatalogLoadFailedError(s.Name(), fmt.Errorf("%s: %w", path, err))
	}
	return nil
}

// ReadHousingCSV parses a housing export. Amenities are ", "-separated,
// reviews and scheduled dates ";"-separated. When no safety column exists the
// level is derived from safety_rating.
func ReadHousingCSV(r io.Reader, defaultLocation string) ([]models.Housing, error) {
	rows, cols, err := readAll(r)
	if err != nil {
		return nil, err
	}

	out := make([]models.Housing, 0, len(rows))
	for i, rec := range rows {
		h := models.Housing{
			ID:             column(rec, cols, "id"),
			Location:       column(rec, cols, "location", "city"),
			Neighborhood:   column(rec, cols, "neighborhood"),
			HousingType:    column(rec, cols, "housing_type", "property_type"),
			RentalType:     column(rec, cols, "rental_type", "room_type"),
			Amenities:      splitList(column(rec, cols, "amenities"), ","),
			ScheduledDates: splitList(column(rec, cols, "scheduled_dates", "dates"), ";"),
			Reviews:        splitList(column(rec, cols, "reviews"), ";"),
		}
		if h.ID == "" {
			h.ID = fmt.Sprintf("%s%d", models.HousingIDPrefix, i+1)
		}
		if h.Location == "" {
			h.Location = defaultLocation
		}

		if h.CostPerNight, err = parseFloat(column(rec, cols, "cost_per_night", "price")); err != nil {
			return nil, fmt.Errorf("row %d cost_per_night: %w", i+1, err)
		}
		if h.SafetyRating, err = parseFloat(column(rec, cols, "safety_rating")); err != nil {
			return nil, fmt.Errorf("row %d safety_rating: %w", i+1, err)
		}
		h.Bedrooms = parseInt(column(rec, cols, "bedrooms"))
		h.Bathrooms = parseInt(column(rec, cols, "bathrooms"))
		h.Beds = parseInt(column(rec, cols, "beds"))

		if raw := column(rec, cols, "safety", "safety_level"); raw != "" {
			h.Safety, _ = models.ParseSafety(raw)
		} else {
			h.Safety = SafetyFromRating(h.SafetyRating)
		}
		out = append(out, h)
	}
	return out, nil
}

// ReadCuisineCSV parses a cuisine export.
func ReadCuisineCSV(r io.Reader) ([]models.Cuisine, error) {
	rows, cols, err := readAll(r)
	if err != nil {
		return nil, err
	}

	out := make([]models.Cuisine, 0, len(rows))
	for i, rec := range rows {
		c := models.Cuisine{
			ID:          column(rec, cols, "id"),
			Name:        column(rec, cols, "name", "restaurant_name"),
			Location:    column(rec, cols, "location", "city"),
			CuisineType: column(rec, cols, "cuisine_type", "cuisine"),
		}
		if c.ID == "" {
			c.ID = fmt.Sprintf("%s%d", models.CuisineIDPrefix, i+1)
		}
		c.Pricing, _ = models.ParsePricing(column(rec, cols, "pricing", "price"))
		out = append(out, c)
	}
	return out, nil
}

// ReadExperienceCSV parses an experiences export. A missing Keyword column is
// filled in by NewStore.
func ReadExperienceCSV(r io.Reader) ([]models.Experience, error) {
	rows, cols, err := readAll(r)
	if err != nil {
		return nil, err
	}

	out := make([]models.Experience, 0, len(rows))
	for i, rec := range rows {
		e := models.Experience{
			ID:         column(rec, cols, "id"),
			Location:   column(rec, cols, "location", "city"),
			Experience: column(rec, cols, "experience", "experience_description", "description"),
			Company:    column(rec, cols, "company", "company_name"),
			Keyword:    column(rec, cols, "keyword"),
		}
		if e.ID == "" {
			e.ID = fmt.Sprintf("%s%d", models.ExperienceIDPrefix, i+1)
		}
		e.Pricing, _ = models.ParsePricing(column(rec, cols, "pricing", "price"))
		out = append(out, e)
	}
	return out, nil
}

// SafetyFromRating buckets a 0-5 rating: 4.5 and up is High, 4.0 and up is
// Medium, anything else rated is Low. Unrated stays unset.
func SafetyFromRating(rating float64) models.Safety {
	switch {
	case rating <= 0:
		return ""
	case rating >= 4.5:
		return models.SafetyHigh
	case rating >= 4.0:
		return models.SafetyMedium
	default:
		return models.SafetyLow
	}
}

func readAll(r io.Reader) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, map[string]int{}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, headerIndex(header), nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

// column returns the first non-empty value among the named columns.
func column(rec []string, cols map[string]int, names ...string) string {
	for _, name := range names {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			continue
		}
		if v := strings.TrimSpace(rec[i]); v != "" {
			return v
		}
	}
	return ""
}

func splitList(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.TrimPrefix(s, "$"), 64)
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
