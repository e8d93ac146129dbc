// Package stats renders best-score reports.
package stats

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/verte-zerg/typesprint/internal/model"
)

const updatedLayout = "2006-01-02 15:04"

// BestsSource lists per-mode bests. Both the local store and the scoring
// client implement it.
type BestsSource interface {
	Bests(ctx context.Context) ([]model.Best, error)
}

// Report contains precomputed data for bests rendering.
type Report struct {
	Bests []model.Best
}

// BuildReport loads bests from src, highest WPM first.
func BuildReport(ctx context.Context, src BestsSource) (Report, error) {
	bests, err := src.Bests(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load bests: %w", err)
	}
	sorted := append([]model.Best(nil), bests...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].MaxWPM == sorted[j].MaxWPM {
			return sorted[i].Mode < sorted[j].Mode
		}
		return sorted[i].MaxWPM > sorted[j].MaxWPM
	})
	return Report{Bests: sorted}, nil
}

// RenderBests writes an aligned table of bests to w.
func RenderBests(w io.Writer, bests []model.Best) error {
	if len(bests) == 0 {
		if _, err := fmt.Fprintln(w, "No scores recorded yet."); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	headers := []string{"Mode", "Max WPM", "Accuracy", "Updated"}
	rows := make([][]string, 0, len(bests))
	for _, b := range bests {
		updated := "-"
		if !b.UpdatedAt.IsZero() {
			updated = b.UpdatedAt.Local().Format(updatedLayout)
		}
		rows = append(rows, []string{
			modeLabel(b.Mode),
			strconv.Itoa(b.MaxWPM),
			strconv.Itoa(b.Accuracy) + "%",
			updated,
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func modeLabel(token string) string {
	mode, err := model.ParseMode(token)
	if err != nil {
		return token
	}
	if mode.Finite() {
		return mode.String() + "s"
	}
	return mode.String()
}
