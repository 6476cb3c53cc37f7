package app

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sebuszqo/HomeBudget/internal/auth"
	"github.com/sebuszqo/HomeBudget/internal/log"
)

// StartSessionCleanup sweeps expired 2FA challenge tokens every interval.
// The caller stops the returned scheduler on shutdown.
func StartSessionCleanup(sessions auth.SessionManagerInterface, interval time.Duration, logger *log.Logger) (*cron.Cron, error) {
	if interval < time.Second {
		return nil, fmt.Errorf("session cleanup interval %s is below one second", interval)
	}
	logger = logger.WithComponent(log.ComponentCron)

	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		if removed := sessions.RemoveExpired(); removed > 0 {
			logger.Debug("expired session tokens removed", log.FieldCount, removed)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule session cleanup: %w", err)
	}
	c.Start()

	logger.Info("session cleanup scheduled", "interval", interval.String())
	return c, nil
}
