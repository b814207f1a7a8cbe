package app

import (
	"log"
	"time"

	"finsight/database"
	"finsight/engine"
)

// AssessmentRefresher periodically re-assesses every active goal so stored
// feasibility scores never go stale even when nobody calls the API.
type AssessmentRefresher struct {
	eng      *engine.Engine
	repo     *database.FinanceRepository
	interval time.Duration
	done     chan bool
}

// NewAssessmentRefresher creates a new assessment refresher
func NewAssessmentRefresher(eng *engine.Engine, repo *database.FinanceRepository, interval time.Duration) *AssessmentRefresher {
	return &AssessmentRefresher{
		eng:      eng,
		repo:     repo,
		interval: interval,
		done:     make(chan bool),
	}
}

// Start begins the refresh loop
func (ar *AssessmentRefresher) Start() {
	log.Printf("🔄 Assessment Refresher started (every %v)", ar.interval)

	ticker := time.NewTicker(ar.interval)
	defer ticker.Stop()

	// Initial sweep
	ar.refreshAll()

	for {
		select {
		case <-ticker.C:
			ar.refreshAll()
		case <-ar.done:
			log.Println("🔄 Assessment Refresher stopped")
			return
		}
	}
}

// Stop stops the refresh loop
func (ar *AssessmentRefresher) Stop() {
	ar.done <- true
}

// refreshAll sweeps every user with active goals and re-runs their assessments
func (ar *AssessmentRefresher) refreshAll() {
	start := time.Now()
	userIDs, err := ar.repo.GetUserIDsWithActiveGoals()
	if err != nil {
		log.Printf("⚠️  Assessment sweep failed to list users: %v", err)
		return
	}

	goals := 0
	failures := 0
	for _, userID := range userIDs {
		items, err := ar.eng.AssessBulk(userID)
		if err != nil {
			log.Printf("⚠️  Assessment sweep failed for user %d: %v", userID, err)
			failures++
			continue
		}
		goals += len(items)
	}

	log.Printf("📊 Assessment sweep done: %d users, %d goals, %d failed users in %v",
		len(userIDs), goals, failures, time.Since(start))
}
