package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

const phoneColumns = `
	id, brand, model, price_inr,
	COALESCE(display_size, 0), COALESCE(display_type, ''), COALESCE(display_resolution, ''),
	COALESCE(refresh_rate, 0), COALESCE(processor, ''), COALESCE(ram_gb, 0), COALESCE(storage_gb, 0),
	COALESCE(rear_camera, ''), COALESCE(front_camera, ''),
	COALESCE(battery_mah, 0), COALESCE(fast_charging_w, 0), COALESCE(wireless_charging, false),
	COALESCE(os, ''), COALESCE(launch_year, 0),
	COALESCE(features, ''), COALESCE(highlights, ''), COALESCE(image_url, ''), created_at`

// SearchFilters constrains a catalog search. Zero values mean "no
// constraint"; feature filtering matches any of the given tags.
type SearchFilters struct {
	Brand      string
	MinPrice   int
	MaxPrice   int
	MinRAM     int
	MinBattery int
	Features   []string
	SearchText string
}

func scanPhone(row interface{ Scan(...interface{}) error }) (Phone, error) {
	var (
		p           Phone
		featuresRaw string
	)
	err := row.Scan(
		&p.ID, &p.Brand, &p.Model, &p.PriceINR,
		&p.DisplaySize, &p.DisplayType, &p.DisplayResolution,
		&p.RefreshRate, &p.Processor, &p.RAMGB, &p.StorageGB,
		&p.RearCamera, &p.FrontCamera,
		&p.BatteryMAh, &p.FastChargingW, &p.WirelessCharging,
		&p.OS, &p.LaunchYear,
		&featuresRaw, &p.Highlights, &p.ImageURL, &p.CreatedAt,
	)
	if err != nil {
		return Phone{}, err
	}
	p.Features = unmarshalFeatures(featuresRaw)
	return p, nil
}

func (db *DB) queryPhones(ctx context.Context, query string, args ...interface{}) ([]Phone, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query phones: %w", err)
	}
	defer rows.Close()

	var phones []Phone
	for rows.Next() {
		p, err := scanPhone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan phone: %w", err)
		}
		phones = append(phones, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating phones: %w", err)
	}
	return phones, nil
}

// GetPhone retrieves a phone by ID
func (db *DB) GetPhone(ctx context.Context, id int) (*Phone, error) {
	query := `SELECT ` + phoneColumns + ` FROM phones WHERE id = $1`

	p, err := scanPhone(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get phone: %w", err)
	}
	return &p, nil
}

// GetPhones retrieves phones matching the given IDs, preserving the
// requested order where possible
func (db *DB) GetPhones(ctx context.Context, ids []int) ([]Phone, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + phoneColumns + ` FROM phones WHERE id = ANY($1)`
	phones, err := db.queryPhones(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}

	// Reorder to match the requested ID sequence
	byID := make(map[int]Phone, len(phones))
	for _, p := range phones {
		byID[p.ID] = p
	}
	ordered := make([]Phone, 0, len(phones))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// ListPhones returns catalog entries with pagination
func (db *DB) ListPhones(ctx context.Context, limit, offset int) ([]Phone, error) {
	query := `SELECT ` + phoneColumns + ` FROM phones ORDER BY id LIMIT $1 OFFSET $2`
	return db.queryPhones(ctx, query, limit, offset)
}

// SearchPhones runs a filtered catalog search ordered by price descending.
// Feature filtering is applied in memory after the SQL filters, matching
// any requested tag against the stored feature list.
func (db *DB) SearchPhones(ctx context.Context, f SearchFilters, limit int) ([]Phone, error) {
	var (
		conditions []string
		args       []interface{}
	)

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Brand != "" {
		conditions = append(conditions, "brand ILIKE "+arg("%"+f.Brand+"%"))
	}
	if f.MinPrice > 0 {
		conditions = append(conditions, "price_inr >= "+arg(f.MinPrice))
	}
	if f.MaxPrice > 0 {
		conditions = append(conditions, "price_inr <= "+arg(f.MaxPrice))
	}
	if f.MinRAM > 0 {
		conditions = append(conditions, "ram_gb >= "+arg(f.MinRAM))
	}
	if f.MinBattery > 0 {
		conditions = append(conditions, "battery_mah >= "+arg(f.MinBattery))
	}
	if f.SearchText != "" {
		pattern := "%" + f.SearchText + "%"
		conditions = append(conditions, fmt.Sprintf(
			"(brand ILIKE %s OR model ILIKE %s OR processor ILIKE %s OR highlights ILIKE %s)",
			arg(pattern), arg(pattern), arg(pattern), arg(pattern)))
	}

	query := `SELECT ` + phoneColumns + ` FROM phones`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY price_inr DESC LIMIT " + arg(limit)

	phones, err := db.queryPhones(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	if len(f.Features) > 0 {
		phones = filterByFeatures(phones, f.Features)
	}
	return phones, nil
}

func filterByFeatures(phones []Phone, wanted []string) []Phone {
	var filtered []Phone
	for _, p := range phones {
		if len(p.Features) == 0 {
			continue
		}
		for _, w := range wanted {
			if phoneHasFeature(p, w) {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered
}

func phoneHasFeature(p Phone, feature string) bool {
	needle := strings.ToLower(feature)
	for _, f := range p.Features {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// GetPhonesByBrand returns phones for a brand, price descending
func (db *DB) GetPhonesByBrand(ctx context.Context, brand string, limit int) ([]Phone, error) {
	query := `SELECT ` + phoneColumns + ` FROM phones
		WHERE brand ILIKE $1
		ORDER BY price_inr DESC LIMIT $2`
	return db.queryPhones(ctx, query, "%"+brand+"%", limit)
}

// GetPhonesByPriceRange returns phones within a price band, price descending
func (db *DB) GetPhonesByPriceRange(ctx context.Context, minPrice, maxPrice, limit int) ([]Phone, error) {
	query := `SELECT ` + phoneColumns + ` FROM phones
		WHERE price_inr >= $1 AND price_inr <= $2
		ORDER BY price_inr DESC LIMIT $3`
	return db.queryPhones(ctx, query, minPrice, maxPrice, limit)
}

// GetGamingPhones returns phones suitable for gaming: high refresh rate
// with at least 8GB of RAM
func (db *DB) GetGamingPhones(ctx context.Context, limit int) ([]Phone, error) {
	query := `SELECT ` + phoneColumns + ` FROM phones
		WHERE refresh_rate >= 120 AND ram_gb >= 8
		ORDER BY refresh_rate DESC LIMIT $1`
	return db.queryPhones(ctx, query, limit)
}

// GetCameraPhones returns phones whose highlights call out camera strength
func (db *DB) GetCameraPhones(ctx context.Context, limit int) ([]Phone, error) {
	query := `SELECT ` + phoneColumns + ` FROM phones
		WHERE highlights ILIKE '%camera%'
		   OR highlights ILIKE '%photo%'
		   OR highlights ILIKE '%leica%'
		   OR highlights ILIKE '%zeiss%'
		   OR highlights ILIKE '%hasselblad%'
		ORDER BY price_inr DESC LIMIT $1`
	return db.queryPhones(ctx, query, limit)
}

// GetBatteryPhones returns phones with large batteries, capacity descending
func (db *DB) GetBatteryPhones(ctx context.Context, minBattery, limit int) ([]Phone, error) {
	query := `SELECT ` + phoneColumns + ` FROM phones
		WHERE battery_mah >= $1
		ORDER BY battery_mah DESC LIMIT $2`
	return db.queryPhones(ctx, query, minBattery, limit)
}

// GetFlagshipPhones returns premium phones, price descending
func (db *DB) GetFlagshipPhones(ctx context.Context, minPrice, limit int) ([]Phone, error) {
	query := `SELECT ` + phoneColumns + ` FROM phones
		WHERE price_inr >= $1
		ORDER BY price_inr DESC LIMIT $2`
	return db.queryPhones(ctx, query, minPrice, limit)
}

// CreatePhone inserts a catalog entry and fills in its ID and timestamp
func (db *DB) CreatePhone(ctx context.Context, p *Phone) error {
	featuresRaw, err := marshalFeatures(p.Features)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO phones (
			brand, model, price_inr, display_size, display_type, display_resolution,
			refresh_rate, processor, ram_gb, storage_gb, rear_camera, front_camera,
			battery_mah, fast_charging_w, wireless_charging, os, launch_year,
			features, highlights, image_url
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		RETURNING id, created_at
	`

	err = db.QueryRowContext(ctx, query,
		p.Brand, p.Model, p.PriceINR, p.DisplaySize, p.DisplayType, p.DisplayResolution,
		p.RefreshRate, p.Processor, p.RAMGB, p.StorageGB, p.RearCamera, p.FrontCamera,
		p.BatteryMAh, p.FastChargingW, p.WirelessCharging, p.OS, p.LaunchYear,
		featuresRaw, p.Highlights, p.ImageURL,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create phone: %w", err)
	}
	return nil
}

// CountPhones returns the catalog size
func (db *DB) CountPhones(ctx context.Context) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM phones`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count phones: %w", err)
	}
	return count, nil
}
