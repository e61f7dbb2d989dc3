package monitoring

import (
	"database/sql"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Maintenance runs periodic database upkeep: a VACUUM plus a row-count
// snapshot logged for operational visibility.
type Maintenance struct {
	db       *sql.DB
	schedule cron.Schedule
	nextRun  time.Time
	ticker   *time.Ticker
	done     chan bool
}

// NewMaintenance creates a Maintenance worker from a standard 5-field cron
// expression.
func NewMaintenance(db *sql.DB, cronExpr string) (*Maintenance, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Maintenance{
		db:       db,
		schedule: schedule,
		nextRun:  schedule.Next(time.Now()),
		done:     make(chan bool),
	}, nil
}

// Run starts the maintenance loop.
func (m *Maintenance) Run() {
	log.Info().Time("next_run", m.nextRun).Msg("Starting background maintenance worker...")
	m.ticker = time.NewTicker(1 * time.Minute)
	defer m.ticker.Stop()

	for {
		select {
		case <-m.done:
			log.Info().Msg("Stopping background maintenance worker.")
			return
		case <-m.ticker.C:
			now := time.Now()
			if now.After(m.nextRun) {
				m.runOnce()
				m.nextRun = m.schedule.Next(now)
			}
		}
	}
}

// Stop halts the maintenance loop.
func (m *Maintenance) Stop() {
	m.done <- true
}

func (m *Maintenance) runOnce() {
	started := time.Now()

	if _, err := m.db.Exec("VACUUM"); err != nil {
		log.Error().Err(err).Msg("Maintenance: VACUUM failed")
		return
	}

	var userCount, todoCount int64
	if err := m.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&userCount); err != nil {
		log.Error().Err(err).Msg("Maintenance: failed to count users")
		return
	}
	if err := m.db.QueryRow("SELECT COUNT(*) FROM todos").Scan(&todoCount); err != nil {
		log.Error().Err(err).Msg("Maintenance: failed to count todos")
		return
	}

	log.Info().
		Int64("users", userCount).
		Int64("todos", todoCount).
		Dur("took", time.Since(started)).
		Msg("Maintenance: database upkeep complete")
}
