package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/isaackcz/Edsight-sub000/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// Fixtures holds test data: a small two-region hierarchy, one admin per
// level anchored inside the first region, and an active period.
type Fixtures struct {
	DB *sql.DB

	RegionA   *models.Region
	RegionB   *models.Region
	DivisionA *models.Division
	DistrictA *models.District
	UnitA     *models.Unit
	UnitB     *models.Unit // lives under RegionB

	NationwideAdmin *models.Admin
	RegionAdmin     *models.Admin
	DivisionAdmin   *models.Admin
	DistrictAdmin   *models.Admin
	UnitAdmin       *models.Admin

	Period *models.Period
}

// SetupFixtures creates test data
func SetupFixtures(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()

	fixtures := &Fixtures{
		DB: db,
	}

	fixtures.RegionA = createRegion(t, db, "Region A")
	fixtures.RegionB = createRegion(t, db, "Region B")
	fixtures.DivisionA = createDivision(t, db, fixtures.RegionA.ID, "Division A")
	fixtures.DistrictA = createDistrict(t, db, fixtures.DivisionA.ID, "District A")
	fixtures.UnitA = createUnit(t, db, fixtures.DistrictA.ID, "Unit A")

	divisionB := createDivision(t, db, fixtures.RegionB.ID, "Division B")
	districtB := createDistrict(t, db, divisionB.ID, "District B")
	fixtures.UnitB = createUnit(t, db, districtB.ID, "Unit B")

	fixtures.NationwideAdmin = CreateAdmin(t, db, "nationwide@test.com", models.LevelNationwide, nil, nil, nil, nil)
	fixtures.RegionAdmin = CreateAdmin(t, db, "region@test.com", models.LevelRegion, &fixtures.RegionA.ID, nil, nil, nil)
	fixtures.DivisionAdmin = CreateAdmin(t, db, "division@test.com", models.LevelDivision, &fixtures.RegionA.ID, &fixtures.DivisionA.ID, nil, nil)
	fixtures.DistrictAdmin = CreateAdmin(t, db, "district@test.com", models.LevelDistrict, &fixtures.RegionA.ID, &fixtures.DivisionA.ID, &fixtures.DistrictA.ID, nil)
	fixtures.UnitAdmin = CreateAdmin(t, db, "unit@test.com", models.LevelUnit, &fixtures.RegionA.ID, &fixtures.DivisionA.ID, &fixtures.DistrictA.ID, &fixtures.UnitA.ID)

	fixtures.Period = createPeriod(t, db, "Test Period", true)

	return fixtures
}

func createRegion(t *testing.T, db *sql.DB, name string) *models.Region {
	t.Helper()

	var region models.Region
	err := db.QueryRow(
		"INSERT INTO regions (name) VALUES ($1) RETURNING id, name, created_at",
		name,
	).Scan(&region.ID, &region.Name, &region.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create region %s: %v", name, err)
	}

	return &region
}

func createDivision(t *testing.T, db *sql.DB, regionID uint, name string) *models.Division {
	t.Helper()

	var division models.Division
	err := db.QueryRow(
		"INSERT INTO divisions (region_id, name) VALUES ($1, $2) RETURNING id, region_id, name, created_at",
		regionID, name,
	).Scan(&division.ID, &division.RegionID, &division.Name, &division.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create division %s: %v", name, err)
	}

	return &division
}

func createDistrict(t *testing.T, db *sql.DB, divisionID uint, name string) *models.District {
	t.Helper()

	var district models.District
	err := db.QueryRow(
		"INSERT INTO districts (division_id, name) VALUES ($1, $2) RETURNING id, division_id, name, created_at",
		divisionID, name,
	).Scan(&district.ID, &district.DivisionID, &district.Name, &district.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create district %s: %v", name, err)
	}

	return &district
}

func createUnit(t *testing.T, db *sql.DB, districtID uint, name string) *models.Unit {
	t.Helper()

	var unit models.Unit
	err := db.QueryRow(
		"INSERT INTO units (district_id, name) VALUES ($1, $2) RETURNING id, district_id, name, created_at",
		districtID, name,
	).Scan(&unit.ID, &unit.DistrictID, &unit.Name, &unit.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create unit %s: %v", name, err)
	}

	return &unit
}

// CreateAdmin creates an active admin anchored at the given hierarchy node
func CreateAdmin(t *testing.T, db *sql.DB, email string, level models.Level, regionID, divisionID, districtID, unitID *uint) *models.Admin {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	admin := &models.Admin{
		Email:      email,
		FullName:   "Test Admin",
		Level:      level,
		LevelName:  level.String(),
		RegionID:   regionID,
		DivisionID: divisionID,
		DistrictID: districtID,
		UnitID:     unitID,
		Status:     models.AdminActive,
	}

	err = db.QueryRow(`
		INSERT INTO admins (email, password_hash, full_name, level, region_id, division_id, district_id, unit_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, email, string(hashedPassword), admin.FullName, admin.LevelName,
		regionID, divisionID, districtID, unitID, admin.Status).Scan(
		&admin.ID, &admin.CreatedAt, &admin.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create admin %s: %v", email, err)
	}

	return admin
}

func createPeriod(t *testing.T, db *sql.DB, name string, active bool) *models.Period {
	t.Helper()

	startsAt := time.Now().Add(-24 * time.Hour)
	endsAt := time.Now().Add(30 * 24 * time.Hour)

	var period models.Period
	err := db.QueryRow(`
		INSERT INTO periods (name, starts_at, ends_at, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, starts_at, ends_at, is_active, created_at, updated_at
	`, name, startsAt, endsAt, active).Scan(
		&period.ID, &period.Name, &period.StartsAt, &period.EndsAt,
		&period.IsActive, &period.CreatedAt, &period.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create period %s: %v", name, err)
	}

	return &period
}

// CreateSubmission creates a submission in a given workflow state
func (f *Fixtures) CreateSubmission(t *testing.T, unitID uint, status models.SubmissionStatus, level models.Level) *models.Submission {
	t.Helper()

	var submission models.Submission
	submission.UnitID = unitID
	submission.PeriodID = f.Period.ID
	submission.Status = status
	submission.CurrentLevel = level
	submission.LevelName = level.String()

	err := f.DB.QueryRow(`
		INSERT INTO submissions (unit_id, period_id, status, current_level)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, unitID, f.Period.ID, status, level.String()).Scan(
		&submission.ID, &submission.CreatedAt, &submission.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create submission: %v", err)
	}

	return &submission
}

// AddRequiredQuestion registers a question as mandatory for completion
func (f *Fixtures) AddRequiredQuestion(t *testing.T, questionID uint, subQuestionID *uint) {
	t.Helper()

	_, err := f.DB.Exec(
		"INSERT INTO required_questions (question_id, sub_question_id) VALUES ($1, $2)",
		questionID, subQuestionID,
	)
	if err != nil {
		t.Fatalf("Failed to add required question %d: %v", questionID, err)
	}
}
