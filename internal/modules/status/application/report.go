package application

import (
	"time"

	"github.com/maestro-bot/maestro/internal/modules/status/domain"
)

// Reporter produces health reports relative to the process start.
type Reporter struct {
	version   string
	startedAt time.Time
}

// NewReporter creates a Reporter. startedAt is usually the module init time.
func NewReporter(version string, startedAt time.Time) *Reporter {
	return &Reporter{
		version:   version,
		startedAt: startedAt,
	}
}

// Execute builds a report with the current guild count.
func (r *Reporter) Execute(guilds int) *domain.Report {
	return domain.NewReport(r.version, r.startedAt, guilds)
}
