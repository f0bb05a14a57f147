package pdfgen

import (
	"strings"
)

// Page geometry in millimetres, measured from the top-left corner of A4.
const (
	PageWidth   = 210.0
	PageHeight  = 297.0
	WrapWidth   = 180.0
	TopY        = 20.0
	BottomLimit = PageHeight - TopY
	LeftX       = 10.0
	CenterX     = 105.0
	RightX      = 200.0
)

// LineGap is added to the font size to get the line step, in millimetres.
const LineGap = 2.0

// Measure returns the width of s in millimetres for the current style.
type Measure func(s string) float64

// Placed is one line positioned on a page.
// X is the left edge of the text and Y its baseline.
type Placed struct {
	Page int
	X, Y float64
	Text string
}

// Anchor returns the x coordinate alignment is measured from.
func Anchor(a Align) float64 {
	switch a {
	case AlignCenter:
		return CenterX
	case AlignRight:
		return RightX
	default:
		return LeftX
	}
}

// Layout wraps the text and positions every line.
// Lines are size+LineGap apart; a line whose baseline would pass
// BottomLimit starts a new page at TopY.
func Layout(text string, st Style, measure Measure) []Placed {
	lines := Wrap(text, WrapWidth, measure)
	step := st.Size + LineGap
	anchor := Anchor(st.Align)

	placed := make([]Placed, 0, len(lines))
	page, y := 0, TopY
	for i, line := range lines {
		if i > 0 {
			y += step
			if y > BottomLimit {
				page++
				y = TopY
			}
		}
		x := anchor
		switch st.Align {
		case AlignCenter:
			x = anchor - measure(line)/2
		case AlignRight:
			x = anchor - measure(line)
		}
		placed = append(placed, Placed{Page: page, X: x, Y: y, Text: line})
	}
	return placed
}

// Wrap breaks text into lines no wider than width.
// Explicit newlines always break. Words are packed greedily; a word wider
// than width on its own is split between runes.
func Wrap(text string, width float64, measure Measure) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph(para, width, measure)...)
	}
	return lines
}

func wrapParagraph(para string, width float64, measure Measure) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var cur string
	for _, word := range words {
		if cur != "" {
			if candidate := cur + " " + word; measure(candidate) <= width {
				cur = candidate
				continue
			}
			lines = append(lines, cur)
			cur = ""
		}
		if measure(word) <= width {
			cur = word
			continue
		}
		pieces := splitWord(word, width, measure)
		lines = append(lines, pieces[:len(pieces)-1]...)
		cur = pieces[len(pieces)-1]
	}
	return append(lines, cur)
}

// splitWord cuts word into pieces that fit width. Each piece holds at
// least one rune.
func splitWord(word string, width float64, measure Measure) []string {
	var pieces []string
	runes := []rune(word)
	start := 0
	for start < len(runes) {
		end := start + 1
		for end < len(runes) && measure(string(runes[start:end+1])) <= width {
			end++
		}
		pieces = append(pieces, string(runes[start:end]))
		start = end
	}
	return pieces
}
