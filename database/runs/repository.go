package runs

import (
	"database/sql"
	"fmt"
	"time"

	models "finsight/database/models_pkg"

	"github.com/google/uuid"
)

// Repository handles the append-only assessment_runs audit table over a raw
// database/sql connection. Rows are inserted once per engine run and never
// updated or deleted.
type Repository struct {
	conn *sql.DB
}

// NewRepository creates a new run-log repository
func NewRepository(conn *sql.DB) *Repository {
	return &Repository{conn: conn}
}

// InitSchema creates the assessment_runs table if it does not exist.
// The table is managed manually; it is deliberately excluded from GORM
// AutoMigrate so the ORM can never rewrite an audit column.
func (r *Repository) InitSchema() error {
	_, err := r.conn.Exec(`
		CREATE TABLE IF NOT EXISTS assessment_runs (
			id UUID PRIMARY KEY,
			goal_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			engine_name VARCHAR(50) NOT NULL,
			engine_version VARCHAR(20) NOT NULL,
			probability DOUBLE PRECISION NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			health_tag VARCHAR(20) NOT NULL,
			latency_ms BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create assessment_runs table: %w", err)
	}

	_, err = r.conn.Exec(`
		CREATE INDEX IF NOT EXISTS idx_assessment_runs_goal
		ON assessment_runs (goal_id, created_at DESC)
	`)
	if err != nil {
		return fmt.Errorf("failed to create assessment_runs index: %w", err)
	}

	return nil
}

// Insert appends one run record. Fills in the id and timestamp when the
// caller left them empty.
func (r *Repository) Insert(run *models.AssessmentRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := r.conn.Exec(`
		INSERT INTO assessment_runs
			(id, goal_id, user_id, engine_name, engine_version, probability, confidence, health_tag, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		run.ID, run.GoalID, run.UserID, run.EngineName, run.EngineVersion,
		run.Probability, run.Confidence, run.HealthTag, run.LatencyMs, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	return nil
}

// GetRecentByGoal retrieves the most recent run records for a goal
func (r *Repository) GetRecentByGoal(goalID int64, limit int) ([]models.AssessmentRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.conn.Query(`
		SELECT id, goal_id, user_id, engine_name, engine_version, probability, confidence, health_tag, latency_ms, created_at
		FROM assessment_runs
		WHERE goal_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, goalID, limit)
	if err != nil {
		return nil, fmt.Errorf("GetRecentByGoal: %w", err)
	}
	defer rows.Close()

	var list []models.AssessmentRun
	for rows.Next() {
		var run models.AssessmentRun
		if err := rows.Scan(
			&run.ID, &run.GoalID, &run.UserID, &run.EngineName, &run.EngineVersion,
			&run.Probability, &run.Confidence, &run.HealthTag, &run.LatencyMs, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("GetRecentByGoal scan: %w", err)
		}
		list = append(list, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetRecentByGoal rows: %w", err)
	}
	return list, nil
}
