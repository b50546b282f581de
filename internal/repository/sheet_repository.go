package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bankverify/callsheet/internal/model"
)

// SheetRepository implements BankRepository against the hosted spreadsheet
// HTTP API: GET {base} lists every row, PUT {base}/{id} overwrites one.
type SheetRepository struct {
	baseURL    string
	httpClient *http.Client
}

// NewSheetRepository creates a repository for the given sheet base URL.
// A non-positive timeout falls back to 30s.
func NewSheetRepository(baseURL string, timeout time.Duration) *SheetRepository {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SheetRepository{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type banksEnvelope struct {
	Banks []model.BankRecord `json:"banks"`
}

type bankEnvelope struct {
	Bank model.BankRecord `json:"bank"`
}

// FetchAll retrieves every bank record in the sheet as one snapshot.
func (r *SheetRepository) FetchAll(ctx context.Context) ([]model.BankRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL, nil)
	if err != nil {
		return nil, &TransportError{Op: "fetch", Err: err}
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{Op: "fetch", StatusCode: resp.StatusCode}
	}

	var envelope banksEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &TransportError{Op: "fetch", Err: fmt.Errorf("decode response: %w", err)}
	}

	return envelope.Banks, nil
}

// UpdateByID overwrites the row matching id with rec. The record must be the
// full merged object; the store keeps exactly what it is sent.
func (r *SheetRepository) UpdateByID(ctx context.Context, id int64, rec model.BankRecord) error {
	body, err := json.Marshal(bankEnvelope{Bank: rec})
	if err != nil {
		return &TransportError{Op: "update", Err: fmt.Errorf("encode request: %w", err)}
	}

	url := fmt.Sprintf("%s/%d", r.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Op: "update", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: "update", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &TransportError{Op: "update", StatusCode: resp.StatusCode}
	}

	return nil
}
