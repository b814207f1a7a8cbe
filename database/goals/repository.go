package goals

import (
	"fmt"

	models "finsight/database/models_pkg"

	"gorm.io/gorm"
)

// Repository handles database operations for savings goals
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new goal repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a goal by id. Returns (nil, nil) when the goal does not exist.
func (r *Repository) GetByID(id int64) (*models.SavingsGoal, error) {
	var goal models.SavingsGoal
	err := r.db.Where("id = ?", id).First(&goal).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return &goal, nil
}

// GetActiveByUser retrieves all ACTIVE goals for a user ordered by priority
// (high first), then id for a stable order within a tier.
func (r *Repository) GetActiveByUser(userID int64) ([]models.SavingsGoal, error) {
	var list []models.SavingsGoal
	err := r.db.Where("user_id = ? AND status = ?", userID, "ACTIVE").
		Order("priority ASC, id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("GetActiveByUser: %w", err)
	}
	return list, nil
}

// GetUserIDsWithActiveGoals lists distinct users owning at least one ACTIVE
// goal. Used by the background refresher to sweep assessments.
func (r *Repository) GetUserIDsWithActiveGoals() ([]int64, error) {
	var ids []int64
	err := r.db.Model(&models.SavingsGoal{}).
		Where("status = ?", "ACTIVE").
		Distinct("user_id").
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("GetUserIDsWithActiveGoals: %w", err)
	}
	return ids, nil
}

// UpdateAssessment writes the three engine-owned fields back onto the goal.
// Concurrent assessments of the same goal race here; last writer wins, and
// the fields are recomputed on every run so a lost write heals on the next one.
func (r *Repository) UpdateAssessment(id int64, score float64, note, healthTag string) error {
	err := r.db.Model(&models.SavingsGoal{}).Where("id = ?", id).Updates(map[string]interface{}{
		"feasibility_score": score,
		"feasibility_note":  note,
		"health_tag":        healthTag,
	}).Error
	if err != nil {
		return fmt.Errorf("UpdateAssessment: %w", err)
	}
	return nil
}

// UpdateCurrentAmount sets the saved amount on a goal
func (r *Repository) UpdateCurrentAmount(id int64, amount float64) error {
	err := r.db.Model(&models.SavingsGoal{}).Where("id = ?", id).
		Update("current_amount", amount).Error
	if err != nil {
		return fmt.Errorf("UpdateCurrentAmount: %w", err)
	}
	return nil
}

// Create persists a goal (used by fixtures and the goal CRUD surface)
func (r *Repository) Create(goal *models.SavingsGoal) error {
	if err := r.db.Create(goal).Error; err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}
