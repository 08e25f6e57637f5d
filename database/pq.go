package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/langroom/api/config"
	_ "github.com/lib/pq"
)

// Storage defines the interface that all database implementations must satisfy
type Storage interface {
	// Lifecycle methods
	Init() error
	Close() error
	HealthCheck() error

	// GORM DB access
	GetDB() interface{} // Returns *gorm.DB for GORMStore, *sql.DB for PostgreSQLStore

	// Reporting queries (see report.go)
	GetOverviewStats() (*OverviewStats, error)
	GetCourseStats(courseID uint) (*CourseStats, error)
}

// PostgreSQLStore is a plain database/sql store. It backs the reporting
// queries, which are raw SQL joins that gain nothing from the ORM.
type PostgreSQLStore struct {
	db *sql.DB
}

// Start opens a raw lib/pq connection to PostgreSQL
func Start() (*PostgreSQLStore, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	connectStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv.DB_HOST, getEnv.DB_PORT, getEnv.DB_USER_NAME, getEnv.DB_PASSWORD, getEnv.DB_NAME, getEnv.DB_SSL_MODE,
	)

	db, err := sql.Open("postgres", connectStr)
	if err != nil {
		fmt.Println("Unable to start PostgreSQL database.")
		return nil, err
	}

	log.Println("Successfully connected to PostgreSQL Database.")
	return &PostgreSQLStore{
		db: db,
	}, nil
}

// Init is a no-op for the raw store; schema migration is owned by the GORM store
func (s *PostgreSQLStore) Init() error {
	return nil
}

func (s *PostgreSQLStore) Close() error {
	log.Println("Closing PostgreSQL Database.")
	return s.db.Close()
}

// HealthCheck verifies the database connection is alive
func (s *PostgreSQLStore) HealthCheck() error {
	return s.db.Ping()
}

// GetDB returns the raw *sql.DB
func (s *PostgreSQLStore) GetDB() interface{} {
	return s.db
}
