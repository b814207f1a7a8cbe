package transactions

import (
	"fmt"
	"time"

	models "finsight/database/models_pkg"

	"gorm.io/gorm"
)

// Repository handles database operations for transactions
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new transaction repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetRecentByUser retrieves all transactions for a user since the given time,
// oldest first. The feasibility engine buckets these into calendar months.
func (r *Repository) GetRecentByUser(userID int64, since time.Time) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := r.db.Where("user_id = ? AND timestamp >= ?", userID, since).
		Order("timestamp ASC").
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("GetRecentByUser: %w", err)
	}
	return txns, nil
}

// CountByUser returns how many transactions a user has since the given time
func (r *Repository) CountByUser(userID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Transaction{}).
		Where("user_id = ? AND timestamp >= ?", userID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("CountByUser: %w", err)
	}
	return count, nil
}

// Create persists a single transaction (used by fixtures and the import surface)
func (r *Repository) Create(txn *models.Transaction) error {
	if err := r.db.Create(txn).Error; err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}
