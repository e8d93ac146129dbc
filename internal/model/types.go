// Package model defines shared data structures.
package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Mode is a timer configuration: a number of seconds, or Endless.
type Mode int

// Endless never counts down; the session only ends on restart or mode change.
const Endless Mode = -1

// DefaultMode is selected when nothing else is configured.
const DefaultMode Mode = 30

const endlessToken = "endless"

// ErrUnknownMode is returned when a mode token cannot be parsed.
var ErrUnknownMode = errors.New("unknown mode")

// Modes lists the selectable modes in display order.
var Modes = []Mode{15, 30, 60, 120, Endless}

// ParseMode parses a mode token such as "30" or "endless".
func ParseMode(token string) (Mode, error) {
	token = strings.TrimSpace(strings.ToLower(token))
	if token == endlessToken {
		return Endless, nil
	}
	seconds, err := strconv.Atoi(token)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, token)
	}
	mode := Mode(seconds)
	if !mode.Known() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, token)
	}
	return mode, nil
}

// Known reports whether the mode is one of the selectable modes.
func (m Mode) Known() bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// Finite reports whether the mode counts down.
func (m Mode) Finite() bool {
	return m != Endless
}

// Seconds returns the countdown length; zero for Endless.
func (m Mode) Seconds() int {
	if !m.Finite() {
		return 0
	}
	return int(m)
}

// String returns the mode token.
func (m Mode) String() string {
	if !m.Finite() {
		return endlessToken
	}
	return strconv.Itoa(int(m))
}

// Config defines practice settings.
type Config struct {
	DictPath     string
	Words        int
	Mode         Mode
	ScoreURL     string
	ScoreTimeout time.Duration
	Offline      bool
	LogLevel     string
}

// SessionResult is the outcome shown at the end of a session.
type SessionResult struct {
	FinalWPM int
	Accuracy int
	MaxWPM   int
}

// ScoreRequest is the body of POST /api/save_score.
type ScoreRequest struct {
	WPM      int    `json:"wpm"`
	Accuracy int    `json:"accuracy"`
	Mode     string `json:"mode"`
}

// ScoreResponse is the reply of POST /api/save_score.
type ScoreResponse struct {
	MaxWPM  *int   `json:"max_wpm"`
	Message string `json:"message,omitempty"`
}

// Best is the highest recorded WPM for a mode.
type Best struct {
	Mode      string    `json:"mode"`
	MaxWPM    int       `json:"max_wpm"`
	Accuracy  int       `json:"accuracy"`
	UpdatedAt time.Time `json:"updated_at"`
}
