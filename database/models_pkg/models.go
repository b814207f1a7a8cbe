package models

import "time"

// UserProfile represents a platform user with declared income details.
// The declared monthly income is the anchor the feasibility engine falls
// back to whenever transaction history is too sparse to trust.
//
// Key Fields:
//   - MonthlyIncome: self-declared gross monthly income
//   - IncomeType: income classification (SALARIED, BUSINESS, FREELANCE, MIXED)
//     used to derive the income-stability factor applied by the engine
type UserProfile struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	MonthlyIncome float64   `gorm:"type:decimal(15,2);not null" json:"monthly_income"`
	IncomeType    string    `gorm:"size:20;default:SALARIED" json:"income_type"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for UserProfile
func (UserProfile) TableName() string {
	return "user_profiles"
}

// Account represents a single liquid account (bank, wallet) owned by a user.
// The engine only reads the summed current balance per user to derive the
// liquidity buffer.
type Account struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         int64     `gorm:"index;not null" json:"user_id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	AccountType    string    `gorm:"size:20;default:SAVINGS" json:"account_type"` // SAVINGS, CURRENT, WALLET
	CurrentBalance float64   `gorm:"type:decimal(15,2);not null" json:"current_balance"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "accounts"
}

// Transaction represents one categorized ledger entry.
// Categorization itself happens upstream; the engine consumes the category
// label as-is and only distinguishes debit from credit.
//
// Key Fields:
//   - Timestamp: when the transaction occurred (indexed for window queries)
//   - TxType: DEBIT or CREDIT direction
//   - Category: upstream category label (e.g. dining, rent, salary)
//   - IsRecurring: flagged upstream for repeating entries (EMIs, subscriptions)
type Transaction struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"index;not null" json:"user_id"`
	Timestamp   time.Time `gorm:"index;not null" json:"timestamp"`
	Amount      float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	TxType      string    `gorm:"size:10;not null" json:"tx_type"` // DEBIT, CREDIT
	Category    string    `gorm:"size:50;index" json:"category"`
	Description string    `gorm:"size:255" json:"description,omitempty"`
	IsRecurring bool      `gorm:"default:false" json:"is_recurring"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}

// SavingsGoal represents a savings goal with a target amount and deadline.
// The last three assessment fields are the only ones the feasibility engine
// mutates; everything else is owned by the goal CRUD surface.
//
// Key Fields:
//   - Priority: 1=high, 2=medium, 3=low; drives pool allocation across goals
//   - Status: ACTIVE, PAUSED, ACHIEVED
//   - FeasibilityScore: achievement probability in [0,1] from the last run
//   - FeasibilityNote: human-readable assessment summary (capped ~2000 chars)
//   - HealthTag: On Track / Tight / Behind / At Risk
type SavingsGoal struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64     `gorm:"index;not null" json:"user_id"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	GoalType      string    `gorm:"size:30" json:"goal_type"` // EMERGENCY, PURCHASE, TRAVEL, EDUCATION, OTHER
	TargetAmount  float64   `gorm:"type:decimal(15,2);not null" json:"target_amount"`
	CurrentAmount float64   `gorm:"type:decimal(15,2);default:0" json:"current_amount"`
	Deadline      time.Time `gorm:"not null" json:"deadline"`
	Priority      int       `gorm:"default:2" json:"priority"`
	Status        string    `gorm:"size:15;index;default:ACTIVE" json:"status"`

	FeasibilityScore float64 `gorm:"type:decimal(5,4);default:0" json:"feasibility_score"`
	FeasibilityNote  string  `gorm:"size:2000" json:"feasibility_note,omitempty"`
	HealthTag        string  `gorm:"size:20" json:"health_tag,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for SavingsGoal
func (SavingsGoal) TableName() string {
	return "savings_goals"
}

// BaselineProfile holds a stored fallback expense profile for a user, used
// when transaction history cannot produce a trustworthy expense average
// (fresh accounts, long gaps). Maintained by the onboarding flow.
type BaselineProfile struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           int64     `gorm:"uniqueIndex;not null" json:"user_id"`
	MonthlyExpense   float64   `gorm:"type:decimal(15,2);not null" json:"monthly_expense"`
	EssentialExpense float64   `gorm:"type:decimal(15,2);not null" json:"essential_expense"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for BaselineProfile
func (BaselineProfile) TableName() string {
	return "baseline_profiles"
}

// AssessmentRun is one append-only audit record of a feasibility engine run.
// The table is hand-managed (raw SQL, insert-only) rather than GORM-migrated;
// rows are never updated after creation.
type AssessmentRun struct {
	ID            string    `json:"id"` // uuid
	GoalID        int64     `json:"goal_id"`
	UserID        int64     `json:"user_id"`
	EngineName    string    `json:"engine_name"`
	EngineVersion string    `json:"engine_version"`
	Probability   float64   `json:"probability"`
	Confidence    float64   `json:"confidence"`
	HealthTag     string    `json:"health_tag"`
	LatencyMs     int64     `json:"latency_ms"`
	CreatedAt     time.Time `json:"created_at"`
}
