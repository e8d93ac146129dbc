package evaluator

import "testing"

func TestEvaluateClassifiesPositions(t *testing.T) {
	target := []rune("abc d")
	cases := []struct {
		typed string
		want  []CharState
	}{
		{"", []CharState{Unset, Unset, Unset, Unset, Unset}},
		{"a", []CharState{Correct, Unset, Unset, Unset, Unset}},
		{"axc", []CharState{Correct, Incorrect, Correct, Unset, Unset}},
		{"abc\nd", []CharState{Correct, Correct, Correct, Correct, Correct}},
		{"abc dEXTRA", []CharState{Correct, Correct, Correct, Correct, Correct}},
		{"zzzzz", []CharState{Incorrect, Incorrect, Incorrect, Incorrect, Incorrect}},
	}
	for _, tc := range cases {
		got := Evaluate(target, []rune(tc.typed))
		if len(got) != len(target) {
			t.Fatalf("expected %d states for %q, got %d", len(target), tc.typed, len(got))
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Fatalf("typed %q: expected %s at %d, got %s", tc.typed, tc.want[i], i, got[i])
			}
		}
	}
}

func TestEvaluateReflectsDeletions(t *testing.T) {
	target := []rune("ab")
	first := Evaluate(target, []rune("ax"))
	if first[1] != Incorrect {
		t.Fatalf("expected incorrect before deletion")
	}
	second := Evaluate(target, []rune("a"))
	if second[1] != Unset {
		t.Fatalf("expected unset after deletion, got %s", second[1])
	}
}

func TestLiveWPM(t *testing.T) {
	cases := []struct {
		correct int
		seconds float64
		want    int
	}{
		{0, 0, 0},
		{5, 60, 1},
		{5, 0, 60},
		{50, 30, 20},
		{12, 60, 2},
		{13, 60, 3},
	}
	for _, tc := range cases {
		if got := LiveWPM(tc.correct, tc.seconds); got != tc.want {
			t.Fatalf("LiveWPM(%d, %v): expected %d, got %d", tc.correct, tc.seconds, tc.want, got)
		}
	}
}

func TestAccuracy(t *testing.T) {
	if got := Accuracy(0, 0); got != 0 {
		t.Fatalf("expected 0 for empty input, got %d", got)
	}
	if got := Accuracy(3, 3); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
	if got := Accuracy(2, 3); got != 67 {
		t.Fatalf("expected 67, got %d", got)
	}
	states := Evaluate([]rune("a b"), []rune("xyz"))
	if got := Accuracy(CountCorrect(states), 3); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	// The shared space still matches.
	states = Evaluate([]rune("a b"), []rune("x y"))
	if got := Accuracy(CountCorrect(states), 3); got != 33 {
		t.Fatalf("expected 33, got %d", got)
	}
}
