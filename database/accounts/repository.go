package accounts

import (
	"fmt"

	models "finsight/database/models_pkg"

	"gorm.io/gorm"
)

// Repository handles database operations for accounts, user profiles and
// baseline expense profiles. These are the read-only inputs of the
// feasibility engine's aggregation stage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new account repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// TotalLiquidBalance returns the summed current balance across all of a
// user's accounts. Zero when the user has no accounts.
func (r *Repository) TotalLiquidBalance(userID int64) (float64, error) {
	var total float64
	err := r.db.Model(&models.Account{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(current_balance), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("TotalLiquidBalance: %w", err)
	}
	return total, nil
}

// GetProfile retrieves a user profile. Returns (nil, nil) when absent.
func (r *Repository) GetProfile(userID int64) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.Where("id = ?", userID).First(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("GetProfile: %w", err)
	}
	return &profile, nil
}

// GetBaselineProfile retrieves the stored fallback expense profile for a
// user. Returns (nil, nil) when none exists; the engine then degrades to
// zero averages with a low-confidence flag.
func (r *Repository) GetBaselineProfile(userID int64) (*models.BaselineProfile, error) {
	var baseline models.BaselineProfile
	err := r.db.Where("user_id = ?", userID).First(&baseline).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("GetBaselineProfile: %w", err)
	}
	return &baseline, nil
}
