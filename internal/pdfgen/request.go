// Package pdfgen turns a styled text request into a downloadable PDF.
package pdfgen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Filename is the name offered for the generated document.
const Filename = "generated.pdf"

// DefaultSize is used when the requested size is missing or not positive.
const DefaultSize = 16

// PreviewPlaceholder is shown by the live preview when the text is empty.
const PreviewPlaceholder = "Font Preview"

// Face is one entry of the font table.
type Face struct {
	Key string `json:"key"`
	// CSS is the family used by the browser preview.
	CSS string `json:"css"`
	// PDF is the standard font family drawn into the document.
	PDF string `json:"pdf"`
}

// Faces is the font table in menu order.
var Faces = []Face{
	{Key: "Font1", CSS: "Times New Roman", PDF: "times"},
	{Key: "Font2", CSS: "Courier New", PDF: "courier"},
	{Key: "Font3", CSS: "Arial", PDF: "helvetica"},
}

// DefaultFace is the fallback for unknown keys.
var DefaultFace = Faces[2]

// LookupFace returns the face for key, or DefaultFace.
func LookupFace(key string) Face {
	for _, f := range Faces {
		if f.Key == key {
			return f
		}
	}
	return DefaultFace
}

// Align is the horizontal alignment of each line.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// ParseAlign maps unknown values to AlignLeft.
func ParseAlign(s string) Align {
	switch Align(strings.ToLower(strings.TrimSpace(s))) {
	case AlignCenter:
		return AlignCenter
	case AlignRight:
		return AlignRight
	default:
		return AlignLeft
	}
}

// RGB is a text color with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// Black is the default text color.
var Black = RGB{}

// ParseHexColor parses "#rrggbb" (the leading # is optional).
func ParseHexColor(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid color: %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color: %q", s)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Hex formats the color as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseSize reads the leading decimal digits of s.
// Anything without a positive leading integer yields DefaultSize.
func ParseSize(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && unicode.IsDigit(rune(s[end])) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n <= 0 {
		return DefaultSize
	}
	return n
}

// Request describes the document to generate.
type Request struct {
	Text  string
	Font  string
	Size  int
	Color string
	Align string
}

// Style is a normalized request.
type Style struct {
	Face  Face
	Size  float64
	Color RGB
	Align Align
}

// Style normalizes the request: unknown fonts fall back to DefaultFace,
// invalid sizes to DefaultSize, invalid colors to black and unknown
// alignments to left.
func (r Request) Style() Style {
	st := Style{
		Face:  LookupFace(r.Font),
		Size:  float64(r.Size),
		Color: Black,
		Align: ParseAlign(r.Align),
	}
	if r.Size <= 0 {
		st.Size = DefaultSize
	}
	if c, err := ParseHexColor(r.Color); err == nil {
		st.Color = c
	}
	return st
}

// PreviewText returns what the live preview shows for text.
func PreviewText(text string) string {
	if text == "" {
		return PreviewPlaceholder
	}
	return text
}
