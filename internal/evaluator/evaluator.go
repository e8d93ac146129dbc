// Package evaluator compares typed input against the target text.
package evaluator

import "math"

// CharsPerWord is the standard word length used for WPM.
const CharsPerWord = 5

// CharState classifies one target position.
type CharState int

const (
	// Unset means nothing has been typed at this position.
	Unset CharState = iota
	// Correct means the typed rune matches the target.
	Correct
	// Incorrect means the typed rune differs from the target.
	Incorrect
)

func (s CharState) String() string {
	switch s {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "unset"
	}
}

// Evaluate classifies every target position from the current snapshots. A typed
// newline is compared as a space; typed runes past the target are ignored.
func Evaluate(target, typed []rune) []CharState {
	states := make([]CharState, len(target))
	for i, want := range target {
		if i >= len(typed) {
			states[i] = Unset
			continue
		}
		got := typed[i]
		if got == '\n' {
			got = ' '
		}
		if got == want {
			states[i] = Correct
		} else {
			states[i] = Incorrect
		}
	}
	return states
}

// CountCorrect returns the number of Correct positions.
func CountCorrect(states []CharState) int {
	n := 0
	for _, s := range states {
		if s == Correct {
			n++
		}
	}
	return n
}

// LiveWPM converts correct characters over elapsed seconds to words per minute.
// Zero elapsed time is treated as one second.
func LiveWPM(correct int, secondsElapsed float64) int {
	minutes := secondsElapsed / 60
	if secondsElapsed == 0 {
		minutes = 1.0 / 60
	}
	return int(math.Round((float64(correct) / CharsPerWord) / minutes))
}

// Accuracy returns correct/typed as a rounded percentage, or 0 when nothing was typed.
func Accuracy(correct, typedLen int) int {
	if typedLen <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(typedLen) * 100))
}
