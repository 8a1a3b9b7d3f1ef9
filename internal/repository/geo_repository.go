package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/isaackcz/Edsight-sub000/internal/geo"
	"github.com/isaackcz/Edsight-sub000/internal/models"
)

var ErrGeoNotFound = errors.New("geographic node not found")

// GeoRepository handles geographic hierarchy database operations
type GeoRepository struct {
	db *sql.DB
}

// NewGeoRepository creates a new geographic repository
func NewGeoRepository(db *sql.DB) *GeoRepository {
	return &GeoRepository{db: db}
}

// LoadTree reads the whole hierarchy and builds an in-memory tree. The
// hierarchy is small and changes rarely, so a full load per snapshot is fine.
func (r *GeoRepository) LoadTree() (*geo.Tree, error) {
	regions, err := r.ListRegions()
	if err != nil {
		return nil, err
	}

	divisions, err := r.ListDivisions(nil)
	if err != nil {
		return nil, err
	}

	districts, err := r.ListDistricts(nil)
	if err != nil {
		return nil, err
	}

	units, err := r.ListUnits(nil)
	if err != nil {
		return nil, err
	}

	tree, err := geo.NewTree(regions, divisions, districts, units)
	if err != nil {
		return nil, fmt.Errorf("failed to build geographic tree: %w", err)
	}

	return tree, nil
}

// ListRegions retrieves all regions
func (r *GeoRepository) ListRegions() ([]models.Region, error) {
	query := `SELECT id, name, created_at FROM regions ORDER BY id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get regions: %w", err)
	}
	defer rows.Close()

	var regions []models.Region
	for rows.Next() {
		var region models.Region
		if err := rows.Scan(&region.ID, &region.Name, &region.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions = append(regions, region)
	}

	return regions, nil
}

// ListDivisions retrieves divisions, optionally filtered by region
func (r *GeoRepository) ListDivisions(regionID *uint) ([]models.Division, error) {
	query := `SELECT id, region_id, name, created_at FROM divisions`
	args := []interface{}{}

	if regionID != nil {
		query += ` WHERE region_id = $1`
		args = append(args, *regionID)
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get divisions: %w", err)
	}
	defer rows.Close()

	var divisions []models.Division
	for rows.Next() {
		var division models.Division
		if err := rows.Scan(&division.ID, &division.RegionID, &division.Name, &division.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan division: %w", err)
		}
		divisions = append(divisions, division)
	}

	return divisions, nil
}

// ListDistricts retrieves districts, optionally filtered by division
func (r *GeoRepository) ListDistricts(divisionID *uint) ([]models.District, error) {
	query := `SELECT id, division_id, name, created_at FROM districts`
	args := []interface{}{}

	if divisionID != nil {
		query += ` WHERE division_id = $1`
		args = append(args, *divisionID)
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get districts: %w", err)
	}
	defer rows.Close()

	var districts []models.District
	for rows.Next() {
		var district models.District
		if err := rows.Scan(&district.ID, &district.DivisionID, &district.Name, &district.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan district: %w", err)
		}
		districts = append(districts, district)
	}

	return districts, nil
}

// ListUnits retrieves units, optionally filtered by district
func (r *GeoRepository) ListUnits(districtID *uint) ([]models.Unit, error) {
	query := `SELECT id, district_id, name, created_at FROM units`
	args := []interface{}{}

	if districtID != nil {
		query += ` WHERE district_id = $1`
		args = append(args, *districtID)
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get units: %w", err)
	}
	defer rows.Close()

	var units []models.Unit
	for rows.Next() {
		var unit models.Unit
		if err := rows.Scan(&unit.ID, &unit.DistrictID, &unit.Name, &unit.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, unit)
	}

	return units, nil
}

// CreateRegion inserts a region
func (r *GeoRepository) CreateRegion(region *models.Region) error {
	query := `INSERT INTO regions (name, created_at) VALUES ($1, $2) RETURNING id`

	now := time.Now()
	if err := r.db.QueryRow(query, region.Name, now).Scan(&region.ID); err != nil {
		return fmt.Errorf("failed to create region: %w", err)
	}

	region.CreatedAt = now
	return nil
}

// CreateDivision inserts a division under a region
func (r *GeoRepository) CreateDivision(division *models.Division) error {
	query := `INSERT INTO divisions (region_id, name, created_at) VALUES ($1, $2, $3) RETURNING id`

	now := time.Now()
	if err := r.db.QueryRow(query, division.RegionID, division.Name, now).Scan(&division.ID); err != nil {
		return fmt.Errorf("failed to create division: %w", err)
	}

	division.CreatedAt = now
	return nil
}

// CreateDistrict inserts a district under a division
func (r *GeoRepository) CreateDistrict(district *models.District) error {
	query := `INSERT INTO districts (division_id, name, created_at) VALUES ($1, $2, $3) RETURNING id`

	now := time.Now()
	if err := r.db.QueryRow(query, district.DivisionID, district.Name, now).Scan(&district.ID); err != nil {
		return fmt.Errorf("failed to create district: %w", err)
	}

	district.CreatedAt = now
	return nil
}

// CreateUnit inserts a unit under a district
func (r *GeoRepository) CreateUnit(unit *models.Unit) error {
	query := `INSERT INTO units (district_id, name, created_at) VALUES ($1, $2, $3) RETURNING id`

	now := time.Now()
	if err := r.db.QueryRow(query, unit.DistrictID, unit.Name, now).Scan(&unit.ID); err != nil {
		return fmt.Errorf("failed to create unit: %w", err)
	}

	unit.CreatedAt = now
	return nil
}
