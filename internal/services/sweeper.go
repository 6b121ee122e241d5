// Package services – Sweeper
//
// This file implements the optional background sweep that cancels pending
// tokens nobody checked in for. It runs on a cron schedule and uses the same
// conditional status update as every other transition, so a citizen checking
// in at the last moment always wins over the sweep.
package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/janseva/go-queue-backend/internal/domain"
	"github.com/janseva/go-queue-backend/internal/events"
	"github.com/janseva/go-queue-backend/internal/repo"
)

// sweepBatch bounds the number of tokens expired per run.
const sweepBatch = 200

// Sweeper expires stale pending tokens to cancelled.
type Sweeper struct {
	DB        *gorm.DB
	Publisher events.Publisher
	// TTL is how long a pending token may sit unclaimed.
	TTL time.Duration

	cron *cron.Cron
}

// NewSweeper constructs a Sweeper with a no-op publisher.
func NewSweeper(db *gorm.DB, ttl time.Duration) *Sweeper {
	return &Sweeper{DB: db, Publisher: events.Nop{}, TTL: ttl}
}

// SweepOnce cancels pending tokens older than TTL and returns how many it
// expired. Tokens whose status moved between the read and the conditional
// update are simply left alone.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.TTL)
	stale, err := repo.ListStalePending(ctx, s.DB, cutoff, sweepBatch)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, tok := range stale {
		n, err := repo.UpdateTokenStatus(ctx, s.DB, tok.ID, domain.StatusPending, domain.StatusCancelled, nil)
		if err != nil {
			return expired, err
		}
		if n == 0 {
			continue // checked in or cancelled meanwhile
		}
		expired++
		s.Publisher.Publish(events.Event{
			OfficeID:    tok.OfficeID,
			TokenID:     tok.ID,
			TokenNumber: tok.TokenNumber,
			OldStatus:   domain.StatusPending,
			NewStatus:   domain.StatusCancelled,
			At:          time.Now().UTC(),
		})
	}
	return expired, nil
}

// Start schedules the sweep with the given cron spec (e.g. "*/5 * * * *").
func (s *Sweeper) Start(spec string) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := s.SweepOnce(ctx)
		if err != nil {
			log.Error().Err(err).Msg("pending-token sweep failed")
			return
		}
		if n > 0 {
			log.Info().Int("expired", n).Msg("pending-token sweep")
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule, waiting for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}
