package database

import (
	"fmt"
	"time"

	"finsight/database/accounts"
	"finsight/database/goals"
	"finsight/database/runs"
	"finsight/database/transactions"
)

// FinanceRepository is the facade over all per-concern repositories. The
// feasibility engine and the API layer depend on this type (or on narrow
// interfaces it satisfies) rather than on GORM directly.
type FinanceRepository struct {
	db    *Database
	runDB *RunDB

	txns     *transactions.Repository
	goals    *goals.Repository
	accounts *accounts.Repository
	runs     *runs.Repository
}

// NewFinanceRepository creates the repository facade over both database handles
func NewFinanceRepository(db *Database, runDB *RunDB) *FinanceRepository {
	return &FinanceRepository{
		db:       db,
		runDB:    runDB,
		txns:     transactions.NewRepository(db.DB()),
		goals:    goals.NewRepository(db.DB()),
		accounts: accounts.NewRepository(db.DB()),
		runs:     runs.NewRepository(runDB.Conn()),
	}
}

// InitSchema performs auto-migration for the GORM-managed tables and manual
// DDL for the audit table.
func (r *FinanceRepository) InitSchema() error {
	fmt.Println("🔄 Starting database schema initialization...")

	err := r.db.db.AutoMigrate(
		&UserProfile{},
		&Account{},
		&Transaction{},
		&SavingsGoal{},
		&BaselineProfile{},
		// &AssessmentRun{}, // Managed manually below, insert-only audit table
	)
	if err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	if err := r.runs.InitSchema(); err != nil {
		return err
	}

	fmt.Println("✅ Database schema ready")
	return nil
}

// ============================================================================
// Transactions
// ============================================================================

// GetRecentTransactions returns a user's transactions since the given time, oldest first
func (r *FinanceRepository) GetRecentTransactions(userID int64, since time.Time) ([]Transaction, error) {
	return r.txns.GetRecentByUser(userID, since)
}

// CountTransactions returns how many transactions a user has since the given time
func (r *FinanceRepository) CountTransactions(userID int64, since time.Time) (int64, error) {
	return r.txns.CountByUser(userID, since)
}

// CreateTransaction persists a transaction
func (r *FinanceRepository) CreateTransaction(txn *Transaction) error {
	return r.txns.Create(txn)
}

// ============================================================================
// Goals
// ============================================================================

// GetGoal retrieves a goal by id, returning ErrGoalNotFound when absent
func (r *FinanceRepository) GetGoal(id int64) (*SavingsGoal, error) {
	goal, err := r.goals.GetByID(id)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, fmt.Errorf("GetGoal %d: %w", id, ErrGoalNotFound)
	}
	return goal, nil
}

// GetActiveGoals retrieves all ACTIVE goals for a user ordered by priority
func (r *FinanceRepository) GetActiveGoals(userID int64) ([]SavingsGoal, error) {
	return r.goals.GetActiveByUser(userID)
}

// GetUserIDsWithActiveGoals lists users owning at least one ACTIVE goal
func (r *FinanceRepository) GetUserIDsWithActiveGoals() ([]int64, error) {
	return r.goals.GetUserIDsWithActiveGoals()
}

// UpdateGoalAssessment writes the engine-owned fields back onto a goal
func (r *FinanceRepository) UpdateGoalAssessment(id int64, score float64, note, healthTag string) error {
	return r.goals.UpdateAssessment(id, score, note, healthTag)
}

// UpdateGoalCurrentAmount sets the saved amount on a goal
func (r *FinanceRepository) UpdateGoalCurrentAmount(id int64, amount float64) error {
	return r.goals.UpdateCurrentAmount(id, amount)
}

// CreateGoal persists a goal
func (r *FinanceRepository) CreateGoal(goal *SavingsGoal) error {
	return r.goals.Create(goal)
}

// ============================================================================
// Accounts & Profiles
// ============================================================================

// TotalLiquidBalance sums current balances across a user's accounts
func (r *FinanceRepository) TotalLiquidBalance(userID int64) (float64, error) {
	return r.accounts.TotalLiquidBalance(userID)
}

// GetUserProfile retrieves a user profile, returning ErrUserNotFound when absent
func (r *FinanceRepository) GetUserProfile(userID int64) (*UserProfile, error) {
	profile, err := r.accounts.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("GetUserProfile %d: %w", userID, ErrUserNotFound)
	}
	return profile, nil
}

// GetBaselineProfile retrieves the stored fallback expense profile, nil when none exists
func (r *FinanceRepository) GetBaselineProfile(userID int64) (*BaselineProfile, error) {
	return r.accounts.GetBaselineProfile(userID)
}

// ============================================================================
// Assessment Runs (audit log)
// ============================================================================

// InsertAssessmentRun appends one audit record for an engine run
func (r *FinanceRepository) InsertAssessmentRun(run *AssessmentRun) error {
	return r.runs.Insert(run)
}

// GetRecentRuns retrieves the most recent audit records for a goal
func (r *FinanceRepository) GetRecentRuns(goalID int64, limit int) ([]AssessmentRun, error) {
	return r.runs.GetRecentByGoal(goalID, limit)
}
