// Package session drives the caller workflow: obtain a record, collect the
// outcome, write it back, advance to the next record.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bankverify/callsheet/internal/assign"
	"github.com/bankverify/callsheet/internal/form"
	"github.com/bankverify/callsheet/internal/model"
	"github.com/bankverify/callsheet/internal/repository"
)

// State is where a caller's session currently sits. Submitting and
// cancelling are transient and show up as the busy flag rather than as
// observable states.
type State string

const (
	StateAwaitingAssignment State = "awaiting_assignment"
	StatePresenting         State = "presenting"
)

var (
	// ErrBusy means a store call for this session is still in flight. The
	// caller retries after it settles; in-flight calls are never aborted.
	ErrBusy = errors.New("operation already in progress")

	// ErrNoCurrentRecord means submit or cancel was requested with no
	// record presented.
	ErrNoCurrentRecord = errors.New("no bank record is currently presented")
)

// Session is one caller's sequential workflow timeline. All store calls are
// user-triggered and serialized by the busy flag; the only concurrency in
// the system is other callers racing the same spreadsheet rows, which the
// store resolves by last write wins.
type Session struct {
	identity      string
	repo          repository.BankRepository
	selector      *assign.Selector
	settlingDelay time.Duration
	logger        *zap.Logger

	mu      sync.Mutex
	state   State
	current *model.BankRecord
	busy    bool
}

// begin marks the session busy for the duration of a store call and hands
// back a copy of the presented record. The lock is only held around state
// reads and writes, never across the wire.
func (s *Session) begin(want State) (model.BankRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return model.BankRecord{}, ErrBusy
	}
	if s.state != want || s.current == nil {
		return model.BankRecord{}, ErrNoCurrentRecord
	}
	s.busy = true
	return *s.current, nil
}

func (s *Session) end() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// NewSession creates a session for a caller who has already chosen a name.
// settlingDelay is waited after a successful cancel write to let the store's
// propagation lag pass before the next fetch.
func NewSession(identity string, repo repository.BankRepository, selector *assign.Selector, settlingDelay time.Duration, logger *zap.Logger) *Session {
	return &Session{
		identity:      identity,
		repo:          repo,
		selector:      selector,
		settlingDelay: settlingDelay,
		logger:        logger,
		state:         StateAwaitingAssignment,
	}
}

// Identity returns the caller name this session belongs to.
func (s *Session) Identity() string { return s.identity }

// State returns the session's observable state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns a copy of the presented record, or nil outside Presenting.
func (s *Session) Current() *model.BankRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	rec := *s.current
	return &rec
}

// Next fetches a fresh snapshot and claims the next available record.
//
// While a record is already presented, Next simply returns it again so a
// page reload does not claim a second record. Otherwise: ErrNoAvailability
// leaves the session awaiting assignment as a retryable terminal state for
// the round, and a fetch transport failure does the same with a manual
// retry. A claim-write failure is soft: the record is presented anyway and
// the error returned beside it.
func (s *Session) Next(ctx context.Context) (*model.BankRecord, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	if s.state == StatePresenting && s.current != nil {
		rec := *s.current
		s.mu.Unlock()
		return &rec, nil
	}
	s.busy = true
	s.mu.Unlock()
	defer s.end()

	records, err := s.repo.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := s.selector.SelectNext(ctx, records, s.identity)
	if rec == nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = rec
	s.state = StatePresenting
	out := *rec
	s.mu.Unlock()
	return &out, err
}

// Submit validates the draft, merges it onto the presented record, and
// writes the merged record back. A validation failure surfaces without any
// store call; a transport failure retains the record and draft so nothing is
// lost across a manual retry. On success the record is discarded and the
// session awaits its next assignment.
func (s *Session) Submit(ctx context.Context, draft model.FormDraft) error {
	if err := form.Validate(draft); err != nil {
		return err
	}

	held, err := s.begin(StatePresenting)
	if err != nil {
		return err
	}
	defer s.end()

	// The held record carries its pre-claim field values, so the caller's
	// claim is re-applied here; a completed record must never read as
	// available again.
	merged := draft.MergeInto(held).Claimed(s.identity)
	if err := s.repo.UpdateByID(ctx, merged.ID, merged); err != nil {
		s.logger.Warn("submit write failed, record retained",
			zap.Int64("id", merged.ID),
			zap.Error(err))
		return err
	}

	s.logger.Info("outcome submitted",
		zap.Int64("id", merged.ID),
		zap.String("identity", s.identity),
		zap.String("phoneResponse", string(merged.PhoneResponse)))

	s.mu.Lock()
	s.current = nil
	s.state = StateAwaitingAssignment
	s.mu.Unlock()
	return nil
}

// Cancel releases the presented record: assignment and every outcome field
// are written back empty, the settling delay is waited out, and the session
// returns to awaiting assignment. On a transport failure the original record
// stays presented.
func (s *Session) Cancel(ctx context.Context) error {
	held, err := s.begin(StatePresenting)
	if err != nil {
		return err
	}
	defer s.end()

	released := held.Released()
	if err := s.repo.UpdateByID(ctx, released.ID, released); err != nil {
		s.logger.Warn("cancel write failed, record retained",
			zap.Int64("id", released.ID),
			zap.Error(err))
		return err
	}

	// The store acknowledges writes before they are visible to the next
	// fetch; wait out the lag so the released record is not immediately
	// re-claimed with stale fields.
	if s.settlingDelay > 0 {
		select {
		case <-time.After(s.settlingDelay):
		case <-ctx.Done():
		}
	}

	s.logger.Info("record released",
		zap.Int64("id", released.ID),
		zap.String("identity", s.identity))

	s.mu.Lock()
	s.current = nil
	s.state = StateAwaitingAssignment
	s.mu.Unlock()
	return nil
}
