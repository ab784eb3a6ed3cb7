package ingest

import (
	"errors"
	"testing"

	"github.com/lshi/nbadaily/internal/upstream"
)

func TestReportRecordAggregatesByKind(t *testing.T) {
	r := &Report{}
	r.record(upstream.KindLineScore, 2, nil)
	r.record(upstream.KindLineScore, 2, nil)
	r.record(upstream.KindBoxScoreSummary, 1, nil)

	if len(r.Tables) != 2 {
		t.Fatalf("got %d table statuses, want 2", len(r.Tables))
	}
	if r.Tables[0].Kind != upstream.KindLineScore || r.Tables[0].Rows != 4 {
		t.Errorf("line score status = %+v, want 4 rows", r.Tables[0])
	}
}

func TestReportRecordKeepsError(t *testing.T) {
	r := &Report{}
	r.record(upstream.KindStandings, 15, nil)
	r.record(upstream.KindStandings, 0, errors.New("required column W missing"))

	if r.Tables[0].Error == "" {
		t.Error("batch error must surface in the status")
	}
}

func TestBatchErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &BatchError{Kind: upstream.KindTeamList, Err: inner}
	if !errors.Is(err, inner) {
		t.Error("BatchError should unwrap to its cause")
	}
	if err.Error() == "" {
		t.Error("empty error string")
	}
}
