package stats

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/typesprint/internal/model"
	"github.com/verte-zerg/typesprint/internal/store"
)

type staticSource struct {
	bests []model.Best
	err   error
}

func (s staticSource) Bests(context.Context) ([]model.Best, error) {
	return s.bests, s.err
}

func TestBuildReportOrdersByWPM(t *testing.T) {
	src := staticSource{bests: []model.Best{
		{Mode: "endless", MaxWPM: 9},
		{Mode: "60", MaxWPM: 70},
		{Mode: "30", MaxWPM: 55},
		{Mode: "15", MaxWPM: 55},
	}}
	report, err := BuildReport(context.Background(), src)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	got := make([]string, 0, len(report.Bests))
	for _, b := range report.Bests {
		got = append(got, b.Mode)
	}
	if strings.Join(got, ",") != "60,15,30,endless" {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestBuildReportWrapsError(t *testing.T) {
	cause := errors.New("connection refused")
	_, err := BuildReport(context.Background(), staticSource{err: cause})
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestBuildReportFromStore(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()
	if _, _, err := st.RecordScore(ctx, "30", 40, 90); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, _, err := st.RecordScore(ctx, "15", 62, 97); err != nil {
		t.Fatalf("record: %v", err)
	}

	report, err := BuildReport(ctx, st)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Bests) != 2 || report.Bests[0].Mode != "15" {
		t.Fatalf("unexpected bests: %+v", report.Bests)
	}
}

func TestRenderBests(t *testing.T) {
	updated := time.Date(2026, 1, 2, 3, 4, 0, 0, time.Local)
	bests := []model.Best{
		{Mode: "60", MaxWPM: 70, Accuracy: 91, UpdatedAt: updated},
		{Mode: "endless", MaxWPM: 9, Accuracy: 100},
	}
	var buf bytes.Buffer
	if err := RenderBests(&buf, bests); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "Mode") || !strings.Contains(lines[0], "Max WPM") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "60s") || !strings.HasSuffix(lines[1], "2026-01-02 03:04") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "endless") || !strings.HasSuffix(lines[2], "100%  -") {
		t.Fatalf("unexpected second row %q", lines[2])
	}
}

func TestRenderBestsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderBests(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "No scores recorded yet.\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
