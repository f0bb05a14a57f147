package pdfgen_test

import (
	"bytes"
	"fmt"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"sharedtodo/internal/pdfgen"
)

// twoPerRune measures every rune as 2mm wide.
func twoPerRune(s string) float64 {
	return 2 * float64(utf8.RuneCountInString(s))
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{""}},
		{"fits", "aa bb", []string{"aa bb"}},
		{"greedy", "aa bb cc", []string{"aa bb", "cc"}},
		{"newlines", "a\n\nb", []string{"a", "", "b"}},
		{"crlf", "a\r\nb", []string{"a", "b"}},
		{"collapses spaces", "aa    bb", []string{"aa bb"}},
		{"long word", "abcdefghijkl", []string{"abcde", "fghij", "kl"}},
		{"long word then short", "abcdefghijkl xy", []string{"abcde", "fghij", "kl xy"}},
		{"runes", "ééééééé", []string{"ééééé", "éé"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pdfgen.Wrap(tt.text, 10, twoPerRune)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("wrap mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLayout_Alignment(t *testing.T) {
	tests := []struct {
		align pdfgen.Align
		wantX float64
	}{
		{pdfgen.AlignLeft, 10},
		{pdfgen.AlignCenter, 103},
		{pdfgen.AlignRight, 196},
	}
	for _, tt := range tests {
		st := pdfgen.Style{Size: 16, Align: tt.align}
		got := pdfgen.Layout("ab", st, twoPerRune)
		want := []pdfgen.Placed{{Page: 0, X: tt.wantX, Y: 20, Text: "ab"}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s: layout mismatch (-want +got):\n%s", tt.align, diff)
		}
	}
}

func TestLayout_LineSpacing(t *testing.T) {
	st := pdfgen.Style{Size: 12, Align: pdfgen.AlignLeft}
	got := pdfgen.Layout("one\ntwo\nthree", st, twoPerRune)
	for i, p := range got {
		if want := 20 + float64(i)*14; p.Y != want {
			t.Errorf("line %d: expected y %.1f, got %.1f", i, want, p.Y)
		}
	}
}

func TestLayout_Paginates(t *testing.T) {
	var text bytes.Buffer
	for i := 0; i < 16; i++ {
		fmt.Fprintf(&text, "l%d\n", i)
	}
	st := pdfgen.Style{Size: 16, Align: pdfgen.AlignLeft}
	got := pdfgen.Layout(text.String(), st, twoPerRune)

	// 20, 38, ... 272 fit on the first page; the 16th line starts page two.
	if got[14].Page != 0 || got[14].Y != 272 {
		t.Errorf("expected line 15 on page 0 at y 272, got %+v", got[14])
	}
	if got[15].Page != 1 || got[15].Y != 20 {
		t.Errorf("expected line 16 on page 1 at y 20, got %+v", got[15])
	}
}

func TestRequestStyle(t *testing.T) {
	tests := []struct {
		name string
		req  pdfgen.Request
		want pdfgen.Style
	}{
		{
			name: "explicit",
			req:  pdfgen.Request{Font: "Font2", Size: 20, Color: "#ff8000", Align: "right"},
			want: pdfgen.Style{Face: pdfgen.Faces[1], Size: 20, Color: pdfgen.RGB{R: 255, G: 128}, Align: pdfgen.AlignRight},
		},
		{
			name: "defaults",
			req:  pdfgen.Request{Font: "Comic Sans", Size: 0, Color: "red", Align: "justify"},
			want: pdfgen.Style{Face: pdfgen.DefaultFace, Size: 16, Color: pdfgen.Black, Align: pdfgen.AlignLeft},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.req.Style()); diff != "" {
				t.Errorf("style mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLookupFace(t *testing.T) {
	if f := pdfgen.LookupFace("Font1"); f.PDF != "times" || f.CSS != "Times New Roman" {
		t.Errorf("unexpected Font1: %+v", f)
	}
	if f := pdfgen.LookupFace("nope"); f.PDF != "helvetica" {
		t.Errorf("expected helvetica fallback, got %+v", f)
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int{
		"12":   12,
		" 18 ": 18,
		"12px": 12,
		"":     16,
		"0":    16,
		"-5":   16,
		"big":  16,
	}
	for in, want := range tests {
		if got := pdfgen.ParseSize(in); got != want {
			t.Errorf("ParseSize(%q): expected %d, got %d", in, want, got)
		}
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := pdfgen.ParseHexColor("#1a2B3c")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c != (pdfgen.RGB{R: 0x1a, G: 0x2b, B: 0x3c}) {
		t.Errorf("unexpected color %+v", c)
	}
	if c.Hex() != "#1a2b3c" {
		t.Errorf("expected #1a2b3c, got %s", c.Hex())
	}
	for _, bad := range []string{"", "red", "#12345", "#gggggg"} {
		if _, err := pdfgen.ParseHexColor(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestPreviewText(t *testing.T) {
	if got := pdfgen.PreviewText(""); got != "Font Preview" {
		t.Errorf("expected placeholder, got %q", got)
	}
	if got := pdfgen.PreviewText("hi"); got != "hi" {
		t.Errorf("expected hi, got %q", got)
	}
}

type shown struct {
	Page int
	X, Y float64
	Text string
}

type fakeCanvas struct {
	page  int
	shown []shown
}

func (c *fakeCanvas) Measure(s string) float64 { return twoPerRune(s) }
func (c *fakeCanvas) NewPage() error           { c.page++; return nil }
func (c *fakeCanvas) Close() error             { return nil }
func (c *fakeCanvas) Show(x, y float64, s string) error {
	c.shown = append(c.shown, shown{Page: c.page, X: x, Y: y, Text: s})
	return nil
}

func TestTypeset(t *testing.T) {
	c := &fakeCanvas{}
	st := pdfgen.Style{Size: 16, Align: pdfgen.AlignCenter}
	if err := pdfgen.Typeset("hello\n\nworld", st, c); err != nil {
		t.Fatalf("typeset: %v", err)
	}
	want := []shown{
		{Page: 0, X: 100, Y: 20, Text: "hello"},
		{Page: 0, X: 100, Y: 56, Text: "world"},
	}
	if diff := cmp.Diff(want, c.shown); diff != "" {
		t.Errorf("shown mismatch (-want +got):\n%s", diff)
	}
}

func TestTypeset_NewPages(t *testing.T) {
	c := &fakeCanvas{}
	var text bytes.Buffer
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&text, "line %d\n", i)
	}
	if err := pdfgen.Typeset(text.String(), pdfgen.Style{Size: 16}, c); err != nil {
		t.Fatalf("typeset: %v", err)
	}
	if c.page != 2 {
		t.Errorf("expected two page breaks, got %d", c.page)
	}
	if last := c.shown[len(c.shown)-1]; last.Page != 2 || last.Text != "line 39" {
		t.Errorf("unexpected last line %+v", last)
	}
}

func TestGenerate(t *testing.T) {
	var buf bytes.Buffer
	req := pdfgen.Request{Text: "Hello, PDF", Font: "Font1", Size: 18, Color: "#336699", Align: "center"}
	if err := pdfgen.Generate(&buf, req); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("expected PDF header, got %q", buf.Bytes()[:min(buf.Len(), 16)])
	}
}

func TestGenerate_EveryFace(t *testing.T) {
	faces := append([]pdfgen.Face{}, pdfgen.Faces...)
	for _, face := range append(faces, pdfgen.Face{Key: "Font9"}) {
		t.Run(face.Key, func(t *testing.T) {
			var buf bytes.Buffer
			req := pdfgen.Request{Text: "The quick brown fox", Font: face.Key, Size: 12}
			if err := pdfgen.Generate(&buf, req); err != nil {
				t.Fatalf("generate: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
				t.Errorf("expected PDF header for %s", face.Key)
			}
		})
	}
}
