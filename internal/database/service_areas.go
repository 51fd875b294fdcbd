package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cleanhive/internal/models"
)

// areaGeometry is the JSON blob persisted in service_areas.geometry.
type areaGeometry struct {
	Points   []models.GeoPoint `json:"points,omitempty"`
	Center   models.GeoPoint   `json:"center,omitempty"`
	RadiusKM float64           `json:"radius_km,omitempty"`
}

func (db *DB) CreateServiceArea(ctx context.Context, area *models.ServiceArea) error {
	geom, err := json.Marshal(areaGeometry{Points: area.Points, Center: area.Center, RadiusKM: area.RadiusKM})
	if err != nil {
		return fmt.Errorf("failed to encode area geometry: %w", err)
	}
	zips, err := json.Marshal(area.ZipCodes)
	if err != nil {
		return fmt.Errorf("failed to encode area zip codes: %w", err)
	}

	now := time.Now()
	query := `INSERT INTO service_areas (name, kind, geometry, zip_codes, is_active, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query, area.Name, area.Kind, string(geom), string(zips), area.IsActive, now, now)
	if err != nil {
		return fmt.Errorf("failed to create service area: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	area.ID = id
	area.CreatedAt = now
	area.UpdatedAt = now
	return nil
}

func scanServiceArea(row rowScanner) (*models.ServiceArea, error) {
	var (
		a        models.ServiceArea
		geomStr  string
		zipsStr  sql.NullString
	)
	err := row.Scan(&a.ID, &a.Name, &a.Kind, &geomStr, &zipsStr, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	var geom areaGeometry
	if err := json.Unmarshal([]byte(geomStr), &geom); err != nil {
		return nil, fmt.Errorf("failed to parse area geometry: %w", err)
	}
	a.Points = geom.Points
	a.Center = geom.Center
	a.RadiusKM = geom.RadiusKM

	if zipsStr.Valid && zipsStr.String != "" {
		if err := json.Unmarshal([]byte(zipsStr.String), &a.ZipCodes); err != nil {
			return nil, fmt.Errorf("failed to parse area zip codes: %w", err)
		}
	}
	return &a, nil
}

const areaColumns = `id, name, kind, geometry, zip_codes, is_active, created_at, updated_at`

func (db *DB) GetServiceArea(ctx context.Context, id int64) (*models.ServiceArea, error) {
	row := db.QueryRowContext(ctx, `SELECT `+areaColumns+` FROM service_areas WHERE id = ?`, id)
	area, err := scanServiceArea(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service area: %w", err)
	}
	return area, nil
}

func (db *DB) ListServiceAreas(ctx context.Context, activeOnly bool) ([]*models.ServiceArea, error) {
	query := `SELECT ` + areaColumns + ` FROM service_areas`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name ASC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list service areas: %w", err)
	}
	defer rows.Close()

	var areas []*models.ServiceArea
	for rows.Next() {
		a, err := scanServiceArea(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service area: %w", err)
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}

func (db *DB) SetServiceAreaActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE service_areas SET is_active = ?, updated_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update service area: %w", err)
	}
	return nil
}
