package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bankverify/callsheet/internal/model"
)

// ErrNotFound is returned when an update addresses a record id the store
// does not know.
var ErrNotFound = errors.New("bank record not found")

// TransportError wraps any network, HTTP or decode failure while talking to
// the spreadsheet store. Callers surface it and offer a manual retry; the
// repository itself never retries.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("sheet %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("sheet %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is (or wraps) a store transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// BankRepository defines the operations this system performs against the
// external spreadsheet-backed record store.
//
// UpdateByID is a full-record overwrite: the store replaces the addressed row
// with the supplied record wholesale, not field by field. Callers must merge
// their changes onto the full previously-fetched record before calling, and
// concurrent writers resolve by last write wins. That is the store's
// documented contract; no locking exists and none is simulated here.
type BankRepository interface {
	FetchAll(ctx context.Context) ([]model.BankRecord, error)
	UpdateByID(ctx context.Context, id int64, rec model.BankRecord) error
}
