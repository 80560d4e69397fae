package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/blog-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// EventPruner periodically deletes audit events older than the retention window.
type EventPruner struct {
	eventSvc  services.EventServiceProvider
	retention time.Duration
	cron      *cron.Cron
	now       func() time.Time
}

// NewEventPruner creates a pruner that runs on the given standard cron expression.
func NewEventPruner(eventSvc services.EventServiceProvider, spec string, retention time.Duration) (*EventPruner, error) {
	p := &EventPruner{
		eventSvc:  eventSvc,
		retention: retention,
		cron:      cron.New(),
		now:       time.Now,
	}
	if _, err := p.cron.AddFunc(spec, func() { p.PruneOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", spec, err)
	}
	return p, nil
}

// Start runs the schedule in the background.
func (p *EventPruner) Start() {
	log.Info().Dur("retention", p.retention).Msg("Starting background event pruner...")
	p.cron.Start()
}

// Stop halts the schedule and waits for a running prune to finish.
func (p *EventPruner) Stop() {
	<-p.cron.Stop().Done()
	log.Info().Msg("Stopped background event pruner.")
}

// PruneOnce deletes expired events and returns how many were removed.
func (p *EventPruner) PruneOnce(ctx context.Context) int64 {
	cutoff := p.now().Add(-p.retention)
	n, err := p.eventSvc.PruneEvents(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Time("cutoff", cutoff).Msg("Failed to prune events")
		return 0
	}
	if n > 0 {
		log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("Pruned old events")
	}
	return n
}
