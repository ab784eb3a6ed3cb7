// Package ingest orchestrates a full season ingestion: fetch, normalize,
// assemble, snapshot. One run produces one snapshot or fails whole;
// partial seasons are never persisted.
package ingest

import (
	"fmt"
	"time"

	"github.com/lshi/nbadaily/internal/upstream"
)

// Run states published to the status stream.
const (
	StatusRunning = "running"
	StatusOK      = "ok"
	StatusFailed  = "failed"
)

// TableStatus records the outcome of one table-kind batch.
type TableStatus struct {
	Kind  upstream.TableKind `json:"kind"`
	Rows  int                `json:"rows"`
	Error string             `json:"error,omitempty"`
}

// Report summarizes one ingestion run, per table-kind batch.
type Report struct {
	Season     string        `json:"season"`
	Status     string        `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at,omitempty"`
	Tables     []TableStatus `json:"tables"`
	Error      string        `json:"error,omitempty"`
}

// record accumulates batch outcomes per table kind: many fetches of the
// same kind fold into one status line.
func (r *Report) record(kind upstream.TableKind, rows int, err error) {
	for i := range r.Tables {
		if r.Tables[i].Kind == kind {
			r.Tables[i].Rows += rows
			if err != nil {
				r.Tables[i].Error = err.Error()
			}
			return
		}
	}
	ts := TableStatus{Kind: kind, Rows: rows}
	if err != nil {
		ts.Error = err.Error()
	}
	r.Tables = append(r.Tables, ts)
}

// BatchError wraps a fatal failure of one table-kind batch. Transport
// failures surface here only after retries are exhausted; schema and
// integrity failures surface immediately.
type BatchError struct {
	Kind upstream.TableKind
	Err  error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %s: %v", e.Kind, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
