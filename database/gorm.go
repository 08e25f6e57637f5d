package database

import (
	"fmt"
	"log"
	"time"

	"github.com/langroom/api/config"
	"github.com/langroom/api/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GORMStore struct {
	db *gorm.DB
}

// StartGORM initializes a GORM connection to PostgreSQL
func StartGORM() (*GORMStore, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	// Build DSN (Data Source Name)
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		getEnv.DB_HOST,
		getEnv.DB_USER_NAME,
		getEnv.DB_PASSWORD,
		getEnv.DB_NAME,
		getEnv.DB_PORT,
		getEnv.DB_SSL_MODE,
	)

	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Info)
	if getEnv.GO_ENV == "production" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	// Open GORM connection. TranslateError surfaces unique-constraint
	// violations as gorm.ErrDuplicatedKey so the services can map them to
	// Conflict without driver-specific error matching.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		log.Println("Unable to connect to PostgreSQL with GORM:", err)
		return nil, err
	}

	// Get underlying *sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Successfully connected to PostgreSQL Database with GORM.")

	return &GORMStore{db: db}, nil
}

// Init runs the AutoMigrate to create/update tables
func (s *GORMStore) Init() error {
	log.Println("Running GORM AutoMigrate for all models...")

	err := s.db.AutoMigrate(
		// Users and auth
		&model.User{},
		&model.PasswordResetToken{},
		&model.JWTTokenBlacklist{},

		// Courses and enrollment
		&model.Course{},
		&model.Enrollment{},
		&model.CourseNote{},

		// Teaching content
		&model.Resource{},
		&model.Assignment{},

		// Student progress
		&model.Progress{},
		&model.VocabularyProgress{},

		// Student files
		&model.StudentDocument{},

		// Background job logs
		&model.CronJobLog{},
	)

	if err != nil {
		log.Println("Error running AutoMigrate:", err)
		return err
	}

	log.Println("GORM AutoMigrate completed successfully!")
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	log.Println("Closing GORM PostgreSQL connection...")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the GORM DB instance for use in handlers and services
func (s *GORMStore) GetDB() interface{} {
	return s.db
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// GetOverviewStats delegates the dashboard aggregates to the raw SQL in report.go
func (s *GORMStore) GetOverviewStats() (*OverviewStats, error) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, err
	}
	return (&PostgreSQLStore{db: sqlDB}).GetOverviewStats()
}

// GetCourseStats delegates the per-course aggregates to the raw SQL in report.go
func (s *GORMStore) GetCourseStats(courseID uint) (*CourseStats, error) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, err
	}
	return (&PostgreSQLStore{db: sqlDB}).GetCourseStats(courseID)
}
