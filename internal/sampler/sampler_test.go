package sampler

import (
	"strings"
	"testing"
)

func TestSampleReturnsDistinctDictionaryWords(t *testing.T) {
	dict := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot"}
	known := map[string]bool{}
	for _, w := range dict {
		known[w] = true
	}

	s := NewSeeded(1)
	for count := 0; count <= len(dict)+2; count++ {
		words := s.Sample(dict, count, &Buffer{})
		want := count
		if want > len(dict) {
			want = len(dict)
		}
		if len(words) != want {
			t.Fatalf("expected %d words for count %d, got %d", want, count, len(words))
		}
		seen := map[string]bool{}
		for _, w := range words {
			if !known[w] {
				t.Fatalf("unexpected word %q", w)
			}
			if seen[w] {
				t.Fatalf("duplicate word %q in %v", w, words)
			}
			seen[w] = true
		}
	}
}

func TestSampleDoesNotMutateDictionary(t *testing.T) {
	dict := []string{"a", "b", "c", "d"}
	NewSeeded(7).Sample(dict, 4, &Buffer{})
	if strings.Join(dict, "") != "abcd" {
		t.Fatalf("dictionary was reordered: %v", dict)
	}
}

func TestSampleTwoWordDictionary(t *testing.T) {
	buf := &Buffer{}
	New().Sample([]string{"a", "b"}, DefaultWords, buf)
	if buf.Text() != "a b" && buf.Text() != "b a" {
		t.Fatalf("unexpected text %q", buf.Text())
	}
}

func TestSampleAppendsToExistingText(t *testing.T) {
	buf := &Buffer{}
	buf.SetText("  first  ")
	words := NewSeeded(3).Sample([]string{"x"}, 1, buf)
	if len(words) != 1 {
		t.Fatalf("expected one word, got %v", words)
	}
	if buf.Text() != "first x" {
		t.Fatalf("expected appended text, got %q", buf.Text())
	}
}

func TestSampleEmptyDictionary(t *testing.T) {
	buf := &Buffer{}
	buf.SetText("keep")
	words := New().Sample(nil, 10, buf)
	if len(words) != 0 {
		t.Fatalf("expected no words, got %v", words)
	}
	if buf.Text() != "keep" {
		t.Fatalf("expected sink untouched, got %q", buf.Text())
	}
}

func TestSampleIsRoughlyUniform(t *testing.T) {
	dict := []string{"a", "b", "c"}
	s := NewSeeded(42)
	firsts := map[string]int{}
	const rounds = 3000
	for i := 0; i < rounds; i++ {
		words := s.Sample(dict, 1, nil)
		firsts[words[0]]++
	}
	for _, w := range dict {
		if firsts[w] < rounds/3-200 || firsts[w] > rounds/3+200 {
			t.Fatalf("skewed draw for %q: %v", w, firsts)
		}
	}
}
