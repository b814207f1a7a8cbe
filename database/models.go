// Package database provides database connection management for the finsight
// personal-finance platform.
//
// This package includes:
//   - Database connection management using GORM and PostgreSQL
//   - A secondary raw database/sql handle for the hand-managed
//     assessment_runs audit table
//   - Per-concern repositories (transactions, goals, accounts, runs) behind
//     a single FinanceRepository facade
//
// Data Models:
//
//	All data models (UserProfile, Transaction, SavingsGoal, etc.) are defined
//	in the models_pkg package to avoid circular import dependencies.
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	models "finsight/database/models_pkg"
)

// Database holds the GORM database connection and provides access to the
// underlying DB instance. It serves as the central connection point for all
// GORM-managed operations in the application.
type Database struct {
	db *gorm.DB
}

// DB returns the underlying GORM database instance for direct access when needed.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Connect establishes database connection using GORM
func Connect(host string, port int, dbname, user, password string) (*Database, error) {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		host, port, dbname, user, password)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Silent logging for production
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Database{db: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ============================================================================
// Model Type Aliases
// ============================================================================

// Type aliases so callers can keep importing models from the database package
// directly instead of reaching into models_pkg.

type UserProfile = models.UserProfile
type Account = models.Account
type Transaction = models.Transaction
type SavingsGoal = models.SavingsGoal
type BaselineProfile = models.BaselineProfile
type AssessmentRun = models.AssessmentRun
