package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// RunDB wraps the raw database/sql connection used for the hand-managed
// assessment_runs table. Kept separate from the GORM handle so the
// insert-only audit path never contends with ORM pooling behavior.
type RunDB struct {
	conn *sql.DB
}

// RunDBConfig holds configuration for the raw connection
type RunDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// NewRunDB creates the raw database connection for audit writes
func NewRunDB(cfg RunDBConfig) (*RunDB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName,
	)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Small pool: the audit path is low-volume, one insert per assessment
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)
	conn.SetConnMaxIdleTime(2 * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Audit database connection established")

	return &RunDB{conn: conn}, nil
}

// Close closes the raw database connection
func (db *RunDB) Close() error {
	if db.conn != nil {
		log.Println("📡 Closing audit database connection...")
		return db.conn.Close()
	}
	return nil
}

// Ping checks if the raw database connection is alive
func (db *RunDB) Ping() error {
	return db.conn.Ping()
}

// Conn returns the underlying sql.DB connection
func (db *RunDB) Conn() *sql.DB {
	return db.conn
}
