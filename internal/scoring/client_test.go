package scoring

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/verte-zerg/typesprint/internal/model"
	"github.com/verte-zerg/typesprint/internal/store"
)

func TestClientSaveScore(t *testing.T) {
	var got model.ScoreRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/save_score" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected json content type")
		}
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"max_wpm": 88}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	resp, err := c.SaveScore(context.Background(), model.ScoreRequest{WPM: 42, Accuracy: 80, Mode: "30"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if resp.MaxWPM == nil || *resp.MaxWPM != 88 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if got != (model.ScoreRequest{WPM: 42, Accuracy: 80, Mode: "30"}) {
		t.Fatalf("unexpected request body %+v", got)
	}
}

func TestClientSaveScoreErrors(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		body      string
		malformed bool
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, false},
		{"bad request", http.StatusBadRequest, `{"error":"Invalid Request"}`, false},
		{"not json", http.StatusOK, `<html>`, true},
		{"missing max_wpm", http.StatusOK, `{"message":"Guest User"}`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).SaveScore(context.Background(), model.ScoreRequest{Mode: "30"})
			if err == nil {
				t.Fatalf("expected error")
			}
			if errors.Is(err, ErrMalformedResponse) != tc.malformed {
				t.Fatalf("unexpected malformed classification: %v", err)
			}
		})
	}
}

func TestClientTimeoutIsPerClient(t *testing.T) {
	short := NewClient("http://localhost:1", WithTimeout(50*time.Millisecond))
	plain := NewClient("http://localhost:1")
	if short.http.Timeout != 50*time.Millisecond {
		t.Fatalf("expected 50ms timeout, got %s", short.http.Timeout)
	}
	if plain.http.Timeout != DefaultTimeout {
		t.Fatalf("expected default timeout, got %s", plain.http.Timeout)
	}
	if short.http == plain.http {
		t.Fatalf("expected clients not to share an http.Client")
	}

	ignored := NewClient("http://localhost:1", WithTimeout(0))
	if ignored.http.Timeout != DefaultTimeout {
		t.Fatalf("expected non-positive timeout to be ignored, got %s", ignored.http.Timeout)
	}
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, WithTimeout(time.Second)).SaveScore(context.Background(), model.ScoreRequest{Mode: "30"})
	if err == nil {
		t.Fatalf("expected connection error")
	}
}

func TestClientAgainstServer(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = st.Close() }()

	s := NewServer(st, WithLogger(slog.New(slog.DiscardHandler)))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		_ = s.Serve(ln)
	}()
	defer func() { _ = s.Shutdown(time.Second) }()

	c := NewClient("http://"+ln.Addr().String(), WithTimeout(2*time.Second))
	ctx := context.Background()

	first, err := c.SaveScore(ctx, model.ScoreRequest{WPM: 61, Accuracy: 97, Mode: "60"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := c.SaveScore(ctx, model.ScoreRequest{WPM: 50, Accuracy: 99, Mode: "60"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if *first.MaxWPM != 61 || *second.MaxWPM != 61 {
		t.Fatalf("expected best 61, got %d and %d", *first.MaxWPM, *second.MaxWPM)
	}

	bests, err := c.Bests(ctx)
	if err != nil {
		t.Fatalf("bests: %v", err)
	}
	if len(bests) != 1 || bests[0].Mode != "60" || bests[0].MaxWPM != 61 || bests[0].Accuracy != 97 {
		t.Fatalf("unexpected bests %+v", bests)
	}
}
