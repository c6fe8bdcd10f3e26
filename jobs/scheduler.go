package jobs

import (
	"context"
	"time"

	"github.com/colearn-app/colearn-api/arena"
	"github.com/colearn-app/colearn-api/db"
	"github.com/colearn-app/colearn-api/utils"
	"github.com/robfig/cron/v3"
)

const staleInviteAge = 30 * 24 * time.Hour

// Scheduler runs periodic maintenance: keeping the arena leaderboard
// in sync with the profile table and purging invites nobody answered.
type Scheduler struct {
	cron        *cron.Cron
	database    *db.DB
	leaderboard *arena.Leaderboard
}

func NewScheduler(database *db.DB, leaderboard *arena.Leaderboard) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		database:    database,
		leaderboard: leaderboard,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.rebuildLeaderboard); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 3 * * *", s.purgeStaleInvites); err != nil {
		return err
	}

	s.cron.Start()
	utils.LogJobs("Scheduler started: hourly leaderboard rebuild, nightly invite cleanup")
	return nil
}

func (s *Scheduler) Stop() {
	utils.LogShutdown("Stopping scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) rebuildLeaderboard() {
	profiles, err := s.database.AllArenaProfiles()
	if err != nil {
		utils.LogError("Leaderboard rebuild: loading profiles failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.leaderboard.Rebuild(ctx, profiles); err != nil {
		utils.LogError("Leaderboard rebuild failed: %v", err)
		return
	}
	utils.LogJobs("Leaderboard rebuilt: %d profiles", len(profiles))
}

func (s *Scheduler) purgeStaleInvites() {
	n, err := s.database.DeleteStaleInvites(time.Now().Add(-staleInviteAge))
	if err != nil {
		utils.LogError("Invite cleanup failed: %v", err)
		return
	}
	if n > 0 {
		utils.LogJobs("Invite cleanup: removed %d stale invites", n)
	}
}
