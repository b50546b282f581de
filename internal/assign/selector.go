// Package assign picks the next unclaimed bank record for a caller.
package assign

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bankverify/callsheet/internal/model"
	"github.com/bankverify/callsheet/internal/repository"
)

// ErrNoAvailability means every record in the snapshot is already claimed.
// It is a legitimate terminal state for the round, not a fault.
var ErrNoAvailability = errors.New("no unassigned bank records available")

// Selector chooses unclaimed records and claims them for an identity.
type Selector struct {
	repo   repository.BankRepository
	logger *zap.Logger

	// rng is not safe for concurrent use; one selector serves every
	// caller session.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewSelector creates a selector with its own time-seeded random source.
func NewSelector(repo repository.BankRepository, logger *zap.Logger) *Selector {
	return &Selector{
		repo:   repo,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger,
	}
}

// NewSelectorWithRand creates a selector using the supplied random source.
func NewSelectorWithRand(repo repository.BankRepository, rng *rand.Rand, logger *zap.Logger) *Selector {
	return &Selector{repo: repo, rng: rng, logger: logger}
}

// SelectNext filters records to the unclaimed subset, picks one uniformly at
// random, and claims it for identity via a full-record overwrite. The record
// is returned as fetched, with its pre-claim field values.
//
// Two callers racing the same snapshot can claim the same record; the store
// resolves by last write wins and neither caller is told. That weakness is
// part of the modeled system and deliberately not patched over here.
//
// A failed claim write does not withhold the record: it comes back alongside
// the transport error so the caller can still present it (optimistic
// presentation, matching the store's eventual-consistency behavior). Callers
// must therefore check the record before the error.
func (s *Selector) SelectNext(ctx context.Context, records []model.BankRecord, identity string) (*model.BankRecord, error) {
	available := make([]model.BankRecord, 0, len(records))
	for _, rec := range records {
		if rec.Available() {
			available = append(available, rec)
		}
	}

	if len(available) == 0 {
		return nil, ErrNoAvailability
	}

	s.rngMu.Lock()
	chosen := available[s.rng.Intn(len(available))]
	s.rngMu.Unlock()

	if err := s.repo.UpdateByID(ctx, chosen.ID, chosen.Claimed(identity)); err != nil {
		s.logger.Warn("claim write failed, presenting record anyway",
			zap.Int64("id", chosen.ID),
			zap.String("identity", identity),
			zap.Error(err))
		return &chosen, err
	}

	s.logger.Info("claimed bank record",
		zap.Int64("id", chosen.ID),
		zap.String("identity", identity))
	return &chosen, nil
}
