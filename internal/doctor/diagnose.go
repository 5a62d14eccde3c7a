// Package doctor runs self-diagnostics: configuration sanity, the local
// SQLite database, and triple store reachability. It reports findings
// instead of failing fast so one broken dependency does not hide another.
package doctor

import (
	"context"
	"fmt"

	"leolani/internal/brain"
	"leolani/internal/config"
	"leolani/internal/storage"
)

// CheckResult is the outcome of a single diagnostic check.
type CheckResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "pass", "warn", "fail"
	Message string `json:"message"`
}

// Diagnostics bundles all check results.
type Diagnostics struct {
	Checks  []CheckResult `json:"checks"`
	Healthy bool          `json:"healthy"`
}

// Runner runs the diagnostic checks against live collaborators.
type Runner struct {
	cfg   *config.Config
	db    *storage.DB
	store *brain.Client
}

func NewRunner(cfg *config.Config, db *storage.DB, store *brain.Client) *Runner {
	return &Runner{cfg: cfg, db: db, store: store}
}

// RunAll executes every check and aggregates the verdict.
func (r *Runner) RunAll(ctx context.Context) Diagnostics {
	var d Diagnostics
	d.Checks = append(d.Checks, r.checkConfig())
	d.Checks = append(d.Checks, r.checkDatabase())
	d.Checks = append(d.Checks, r.checkStore(ctx))

	d.Healthy = true
	for _, c := range d.Checks {
		if c.Status == "fail" {
			d.Healthy = false
		}
	}
	return d
}

func (r *Runner) checkConfig() CheckResult {
	if err := r.cfg.Validate(); err != nil {
		return CheckResult{Name: "configuration", Status: "fail", Message: err.Error()}
	}
	return CheckResult{Name: "configuration", Status: "pass",
		Message: fmt.Sprintf("store %s, robot %q", r.cfg.StoreURL, r.cfg.RobotName)}
}

func (r *Runner) checkDatabase() CheckResult {
	if err := r.db.Conn().Ping(); err != nil {
		return CheckResult{Name: "database", Status: "fail",
			Message: fmt.Sprintf("cannot connect: %v", err)}
	}
	var people, turns int
	if err := r.db.Conn().QueryRow("SELECT COUNT(*) FROM roster").Scan(&people); err != nil {
		return CheckResult{Name: "database", Status: "fail",
			Message: fmt.Sprintf("roster table unreadable: %v", err)}
	}
	if err := r.db.Conn().QueryRow("SELECT COUNT(*) FROM utterances").Scan(&turns); err != nil {
		return CheckResult{Name: "database", Status: "fail",
			Message: fmt.Sprintf("utterances table unreadable: %v", err)}
	}
	status := "pass"
	msg := fmt.Sprintf("%d people on the roster, %d turns logged", people, turns)
	if people == 0 {
		status = "warn"
		msg += " (empty roster: run meet first)"
	}
	return CheckResult{Name: "database", Status: status, Message: msg}
}

func (r *Runner) checkStore(ctx context.Context) CheckResult {
	if _, err := r.store.Select(ctx, "SELECT ?s WHERE { ?s ?p ?o } LIMIT 1"); err != nil {
		return CheckResult{Name: "triple_store", Status: "fail",
			Message: fmt.Sprintf("unreachable: %v", err)}
	}
	return CheckResult{Name: "triple_store", Status: "pass", Message: "answering queries"}
}
