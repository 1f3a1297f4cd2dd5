package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	m "JobQuest-backend/internal/model"
	"JobQuest-backend/internal/utilities"
)

var testDBInstance *DBinstanceStruct
var teardown func(context.Context, ...testcontainers.TerminateOption) error

// Exported seeded records for controller tests
var (
	TestAdminUser m.User
	TestEmployer1 m.User
	TestEmployer2 m.User
	TestUser1     m.User
	TestUser2     m.User
	TestCompany1  m.Company
	TestCompany2  m.Company

	// Shared plain password for every seeded user
	TestSeedPassword = "SeedPass123!"

	TestJob1 m.Job
	TestJob2 m.Job
	TestJob3 m.Job
)

// GetTestDB starts a PostgreSQL test container and returns a teardown function,
// the DB instance, and any error encountered during setup.
func GetTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, *DBinstanceStruct, error) {

	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	config := &DBConfig{
		useConstr: true,
		Constr:    fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
	}

	db, err := NewDBInstance(config)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	if err := seedTestData(db); err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = dbContainer.Terminate

	return dbContainer.Terminate, db, nil
}

// seedTestData inserts sample users, companies and jobs if the database is
// still empty.
func seedTestData(db *DBinstanceStruct) error {
	var userCount int64
	if err := db.Model(&m.User{}).Count(&userCount).Error; err != nil {
		return err
	}

	// Ignore admin user that got created during NewDBInstance
	if userCount > 1 {
		return loadTestData(db)
	}

	userSpecs := []struct {
		username string
		email    string
		role     string
	}{
		{"seeker_1", "seeker1@example.com", m.RoleUser},
		{"seeker_2", "seeker2@example.com", m.RoleUser},
		{"employer_1", "employer1@example.com", m.RoleEmployer},
		{"employer_2", "employer2@example.com", m.RoleEmployer},
		{"admin_user", "admin@example.com", m.RoleAdmin},
	}

	hashedPwd, errHash := utilities.HashPassword(TestSeedPassword)
	if errHash != nil {
		return errHash
	}

	users := make([]m.User, 0, len(userSpecs))
	for _, s := range userSpecs {
		users = append(users, m.User{
			ID:       uuid.New(),
			Username: s.username,
			Email:    s.email,
			Role:     s.role,
			Password: hashedPwd,
			Active:   true,
		})
	}

	if err := db.Create(&users).Error; err != nil {
		return err
	}

	for _, u := range users {
		switch u.Username {
		case "seeker_1":
			TestUser1 = u
		case "seeker_2":
			TestUser2 = u
		case "employer_1":
			TestEmployer1 = u
		case "employer_2":
			TestEmployer2 = u
		case "admin_user":
			TestAdminUser = u
		}
	}

	companies := []m.Company{
		{
			Name:    "TechNova",
			OwnerID: TestEmployer1.ID,
			EditableCompanyProfile: m.EditableCompanyProfile{
				Description: "Innovative platform solutions",
				Industry:    "Software",
				Location:    "Berlin",
				Size:        m.SizeMedium,
			},
			Verified: true,
			Active:   true,
		},
		{
			Name:    "DataForge",
			OwnerID: TestEmployer2.ID,
			EditableCompanyProfile: m.EditableCompanyProfile{
				Description: "Data analytics consulting",
				Industry:    "Consulting",
				Location:    "Amsterdam",
				Size:        m.SizeLarge,
			},
			Verified: false,
			Active:   true,
		},
	}
	if err := db.Create(&companies).Error; err != nil {
		return err
	}

	TestCompany1 = companies[0]
	TestCompany2 = companies[1]

	var jobCount int64
	if err := db.Model(&m.Job{}).Count(&jobCount).Error; err != nil {
		return err
	}
	if jobCount == 0 {
		deadline1 := time.Now().AddDate(0, 1, 0)
		deadline2 := time.Now().AddDate(0, 2, 0)

		jobs := []m.Job{
			{
				CompanyID:   &TestCompany1.ID,
				CompanyName: TestCompany1.Name,
				PostedByID:  TestEmployer1.ID,
				Status:      m.JobStatusActive,
				EditableJobInfo: m.EditableJobInfo{
					Title:           "Backend Engineer",
					Description:     "Work on Go microservices and database layers.",
					Requirements:    pq.StringArray{"Go basics", "SQL familiarity"},
					Skills:          pq.StringArray{"go", "postgres"},
					Tags:            pq.StringArray{"go", "backend", "api"},
					Location:        "Berlin",
					JobType:         "full_time",
					ExperienceLevel: "mid",
					Category:        "engineering",
					Salary:          m.SalaryRange{Min: 55000, Max: 75000, Currency: "EUR", Period: "year"},
					Deadline:        &deadline1,
				},
			},
			{
				CompanyID:   &TestCompany1.ID,
				CompanyName: TestCompany1.Name,
				PostedByID:  TestEmployer1.ID,
				Status:      m.JobStatusActive,
				EditableJobInfo: m.EditableJobInfo{
					Title:           "Frontend Developer",
					Description:     "Build the component library in React.",
					Requirements:    pq.StringArray{"JS/TS fundamentals"},
					Skills:          pq.StringArray{"react", "typescript"},
					Tags:            pq.StringArray{"react", "typescript", "ui"},
					Location:        "Remote",
					Remote:          true,
					JobType:         "full_time",
					ExperienceLevel: "junior",
					Category:        "engineering",
					Salary:          m.SalaryRange{Min: 45000, Max: 60000, Currency: "EUR", Period: "year"},
					Deadline:        &deadline2,
				},
			},
			{
				CompanyID:   &TestCompany2.ID,
				CompanyName: TestCompany2.Name,
				PostedByID:  TestEmployer2.ID,
				Status:      m.JobStatusDraft,
				EditableJobInfo: m.EditableJobInfo{
					Title:           "Data Analyst",
					Description:     "Support data cleansing and dashboard creation.",
					Requirements:    pq.StringArray{"SQL", "basic statistics"},
					Skills:          pq.StringArray{"sql", "python"},
					Tags:            pq.StringArray{"data", "sql", "analytics"},
					Location:        "Amsterdam",
					JobType:         "contract",
					ExperienceLevel: "junior",
					Category:        "data",
				},
			},
		}

		if err := db.Create(&jobs).Error; err != nil {
			return err
		}
		TestJob1 = jobs[0]
		TestJob2 = jobs[1]
		TestJob3 = jobs[2]
	}

	return nil
}

// loadTestData populates exported variables when records already exist.
func loadTestData(db *DBinstanceStruct) error {
	var users []m.User
	if err := db.Where("username IN ?", []string{
		"seeker_1", "seeker_2", "employer_1", "employer_2", "admin_user",
	}).Find(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		switch u.Username {
		case "seeker_1":
			TestUser1 = u
		case "seeker_2":
			TestUser2 = u
		case "employer_1":
			TestEmployer1 = u
		case "employer_2":
			TestEmployer2 = u
		case "admin_user":
			TestAdminUser = u
		}
	}

	_ = db.First(&TestCompany1, "name = ?", "TechNova").Error
	_ = db.First(&TestCompany2, "name = ?", "DataForge").Error

	var jobs []m.Job
	if err := db.Order("id ASC").Limit(3).Find(&jobs).Error; err == nil {
		if len(jobs) > 0 {
			TestJob1 = jobs[0]
		}
		if len(jobs) > 1 {
			TestJob2 = jobs[1]
		}
		if len(jobs) > 2 {
			TestJob3 = jobs[2]
		}
	}

	return nil
}
