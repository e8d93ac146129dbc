// Package sampler builds target text from a dictionary.
package sampler

import (
	"math/rand"
	"strings"
	"time"
)

// DefaultWords is the number of words drawn per session.
const DefaultWords = 250

// TextSink holds the text a sample is written into.
type TextSink interface {
	Text() string
	SetText(text string)
}

// Buffer is an in-memory TextSink.
type Buffer struct {
	text string
}

// Text implements TextSink.
func (b *Buffer) Text() string { return b.text }

// SetText implements TextSink.
func (b *Buffer) SetText(text string) { b.text = text }

// Sampler draws random words without replacement.
type Sampler struct {
	rnd *rand.Rand
}

// New returns a Sampler seeded with the current time.
func New() *Sampler {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Sampler with a fixed seed.
func NewSeeded(seed int64) *Sampler {
	return &Sampler{rnd: rand.New(rand.NewSource(seed))}
}

// Sample shuffles a copy of dictionary, takes the first count words and appends
// them to sink, space separated. The selected words are returned.
func (s *Sampler) Sample(dictionary []string, count int, sink TextSink) []string {
	if count <= 0 || len(dictionary) == 0 {
		return []string{}
	}
	shuffled := make([]string, len(dictionary))
	copy(shuffled, dictionary)
	s.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if count > len(shuffled) {
		count = len(shuffled)
	}
	selected := shuffled[:count]

	joined := strings.Join(selected, " ")
	if sink != nil {
		current := strings.TrimSpace(sink.Text())
		if current != "" {
			sink.SetText(current + " " + joined)
		} else {
			sink.SetText(joined)
		}
	}
	return selected
}
