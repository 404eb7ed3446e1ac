package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/numtrack/numtrack/internal/derive"
	"github.com/numtrack/numtrack/internal/models"
	"github.com/numtrack/numtrack/pkg/logger"
)

const systemActor = "system"

// Sweeper flips Non-RTS numbers whose scheduled date has arrived. It is
// the only writer of automatic status transitions; manual edits go
// through InventoryService.
type Sweeper struct {
	numbers    NumberStore
	activities ActivityStore
	events     EventPublisher
	metrics    *MetricsCollector
	logger     logger.Logger
	interval   time.Duration
	now        func() time.Time
}

func NewSweeper(
	numbers NumberStore,
	activities ActivityStore,
	events EventPublisher,
	metrics *MetricsCollector,
	log logger.Logger,
	interval time.Duration,
) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Sweeper{
		numbers:    numbers,
		activities: activities,
		events:     events,
		metrics:    metrics,
		logger:     log,
		interval:   interval,
		now:        time.Now,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting RTS sweeper",
		logger.Field{Key: "interval", Value: s.interval.String()})

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("RTS sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx, s.now()); err != nil {
				s.logger.Error("Sweep failed", logger.Field{Key: "error", Value: err.Error()})
			}
		}
	}
}

// Sweep applies due transitions and returns how many numbers flipped.
// A sweep where nothing is due leaves no trace in the activity log.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	started := time.Now()
	defer func() {
		s.metrics.RecordSweepDuration(time.Since(started).Seconds())
	}()

	scheduled, err := s.numbers.FindScheduled(ctx)
	if err != nil {
		return 0, err
	}

	flipped := 0
	for _, number := range scheduled {
		next, changed := derive.EvaluateRTSTransition(*number, now)
		if !changed {
			continue
		}

		fields := bson.M{
			"status":   next.Status,
			"rts_date": nil,
		}
		if err := s.numbers.UpdateFields(ctx, number.ID, fields); err != nil {
			s.logger.Error("Failed to flip number to RTS",
				logger.Field{Key: "mobile", Value: number.Mobile},
				logger.Field{Key: "error", Value: err.Error()})
			continue
		}

		activity := &models.Activity{
			Actor:       systemActor,
			Action:      "Auto RTS",
			Description: fmt.Sprintf("%s reached its scheduled date and is now RTS", number.Mobile),
		}
		if err := s.activities.Create(ctx, activity); err != nil {
			s.logger.Warn("Failed to record sweep activity",
				logger.Field{Key: "mobile", Value: number.Mobile})
		}

		s.metrics.IncrementRTSTransition()
		if s.events != nil {
			if err := s.events.PublishEvent("number.rts.auto", map[string]interface{}{
				"mobile": number.Mobile,
			}); err != nil {
				s.logger.Warn("Failed to publish sweep event",
					logger.Field{Key: "mobile", Value: number.Mobile})
			}
		}

		flipped++
	}

	if flipped > 0 {
		s.logger.Info("Sweep flipped numbers to RTS",
			logger.Field{Key: "count", Value: flipped})
	}

	return flipped, nil
}
