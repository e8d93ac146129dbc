package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typesprint/internal/evaluator"
)

const wrongSpace = '•'

type styledRune struct {
	s       string
	width   int
	isSpace bool
	cursor  bool
}

func buildStyledRunes(targetRunes []rune, states []evaluator.CharState, cursorIndex int) []styledRune {
	words := findWords(targetRunes)
	currentWord := wordForCursor(words, cursorIndex)

	out := make([]styledRune, 0, len(targetRunes))
	for i, target := range targetRunes {
		displayed := target
		state := evaluator.Unset
		if i < len(states) {
			state = states[i]
		}
		style := pendingStyle
		switch state {
		case evaluator.Correct:
			style = correctStyle
		case evaluator.Incorrect:
			if target == ' ' {
				displayed = wrongSpace
			}
			style = incorrectStyle
		default:
			if target != ' ' && currentWord != nil && i >= currentWord.start && i < currentWord.end {
				style = currentWordStyle
			}
		}
		isCursor := i == cursorIndex
		if isCursor {
			style = style.Underline(true)
		}
		out = append(out, styledRune{
			s:       style.Render(string(displayed)),
			width:   runewidth.RuneWidth(displayed),
			isSpace: target == ' ',
			cursor:  isCursor,
		})
	}
	return out
}

type wordRange struct {
	start int
	end   int
}

func findWords(targetRunes []rune) []wordRange {
	words := []wordRange{}
	start := -1
	for i, r := range targetRunes {
		if r == ' ' {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(targetRunes)})
	}
	return words
}

func wordForCursor(words []wordRange, cursorIndex int) *wordRange {
	if len(words) == 0 || cursorIndex < 0 {
		return nil
	}
	for i, w := range words {
		if cursorIndex < w.end {
			return &words[i]
		}
	}
	return nil
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapLines breaks runes at spaces so no line exceeds width, not counting a
// trailing space.
func wrapLines(runes []styledRune, width int) [][]styledRune {
	if width <= 0 {
		return [][]styledRune{runes}
	}
	lines := [][]styledRune{}
	line := make([]styledRune, 0, width+1)
	lineWidth := 0
	lastSpaceIdx := -1

	for _, item := range runes {
		if lineWidth+item.width > width && !item.isSpace && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				lines = append(lines, line[:lastSpaceIdx+1])
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
			} else {
				lines = append(lines, line)
				line = []styledRune{}
			}
			lineWidth = lineWidthOf(line)
			lastSpaceIdx = lastSpaceIndex(line)
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}
	return lines
}

// visibleWindow returns the [start, end) range of at most n lines that keeps
// the cursor on the second line once typing has moved past the first.
func visibleWindow(lines [][]styledRune, n int) (int, int) {
	if n <= 0 || len(lines) <= n {
		return 0, len(lines)
	}
	cursorLine := len(lines) - 1
	for i, line := range lines {
		if hasCursor(line) {
			cursorLine = i
			break
		}
	}
	start := cursorLine - 1
	if start > len(lines)-n {
		start = len(lines) - n
	}
	if start < 0 {
		start = 0
	}
	return start, start + n
}

func renderLines(lines [][]styledRune) string {
	rendered := make([]string, 0, len(lines))
	for _, line := range lines {
		rendered = append(rendered, renderStyledRunes(line))
	}
	return strings.Join(rendered, "\n")
}

func hasCursor(line []styledRune) bool {
	for _, item := range line {
		if item.cursor {
			return true
		}
	}
	return false
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
