package upstream_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lshi/nbadaily/internal/upstream"
)

func envelope(name string, headers string, rows string) string {
	return `{"resultSets":[{"name":"` + name + `","headers":` + headers + `,"rowSet":` + rows + `}]}`
}

func TestClientRetriesTransportErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(envelope("TeamYears", `["TEAM_ID"]`, `[[1610612737]]`)))
	}))
	defer srv.Close()

	client := upstream.NewClient(srv.URL,
		upstream.WithPacing(time.Millisecond),
		upstream.WithMaxRetries(3),
	)

	table, err := client.TeamList(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestClientExhaustsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := upstream.NewClient(srv.URL,
		upstream.WithPacing(time.Millisecond),
		upstream.WithMaxRetries(2),
	)

	_, err := client.TeamList(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var te *upstream.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want TransportError in chain", err)
	}
	if te.Status != http.StatusTooManyRequests {
		t.Errorf("Status = %d, want 429", te.Status)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}

func TestClientDoesNotRetryDecodeErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte("<html>rate limited</html>"))
	}))
	defer srv.Close()

	client := upstream.NewClient(srv.URL,
		upstream.WithPacing(time.Millisecond),
		upstream.WithMaxRetries(3),
	)

	if _, err := client.TeamList(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server saw %d calls, want 1 (decode errors are fatal)", got)
	}
}

func TestClientPacesEndpointFamily(t *testing.T) {
	var stamps []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stamps = append(stamps, time.Now())
		w.Write([]byte(envelope("TeamYears", `["TEAM_ID"]`, `[[1]]`)))
	}))
	defer srv.Close()

	pacing := 50 * time.Millisecond
	client := upstream.NewClient(srv.URL, upstream.WithPacing(pacing), upstream.WithMaxRetries(1))

	ctx := context.Background()
	if _, err := client.TeamList(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.TeamList(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stamps) != 2 {
		t.Fatalf("server saw %d calls, want 2", len(stamps))
	}
	if gap := stamps[1].Sub(stamps[0]); gap < pacing {
		t.Errorf("second call after %v, want at least %v", gap, pacing)
	}
}

func TestClientCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(envelope("TeamYears", `["TEAM_ID"]`, `[[1]]`)))
	}))
	defer srv.Close()

	client := upstream.NewClient(srv.URL, upstream.WithPacing(time.Hour), upstream.WithMaxRetries(1))

	ctx := context.Background()
	if _, err := client.TeamList(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Second call must wait an hour for pacing; cancel instead.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := client.TeamList(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}
