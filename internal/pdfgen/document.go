package pdfgen

import (
	"io"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/font"
	"seehuhn.de/go/pdf/font/standard"
	"seehuhn.de/go/pdf/graphics/color"
)

const ptPerMM = 72 / 25.4

// standardFonts maps font table families to the built-in PDF fonts.
var standardFonts = map[string]standard.Font{
	"times":     standard.TimesRoman,
	"courier":   standard.Courier,
	"helvetica": standard.Helvetica,
}

// pdfDocument is a Canvas writing an A4 document with seehuhn.de/go/pdf.
type pdfDocument struct {
	doc   *document.MultiPage
	page  *document.Page
	font  font.Layouter
	size  float64
	color color.Color
}

func newDocument(w io.Writer, st Style) (*pdfDocument, error) {
	std, ok := standardFonts[st.Face.PDF]
	if !ok {
		std = standard.Helvetica
	}
	f := std.New()

	doc, err := document.WriteMultiPage(w, document.A4, pdf.V1_7, nil)
	if err != nil {
		return nil, err
	}
	d := &pdfDocument{
		doc:  doc,
		font: f,
		size: st.Size,
		color: color.DeviceRGB(
			float64(st.Color.R)/255,
			float64(st.Color.G)/255,
			float64(st.Color.B)/255,
		),
	}
	d.addPage()
	return d, nil
}

func (d *pdfDocument) addPage() {
	d.page = d.doc.AddPage()
	d.page.TextSetFont(d.font, d.size)
	d.page.SetFillColor(d.color)
}

func (d *pdfDocument) Measure(s string) float64 {
	return d.page.TextLayout(nil, s).TotalWidth() / ptPerMM
}

func (d *pdfDocument) NewPage() error {
	if err := d.page.Close(); err != nil {
		return err
	}
	d.addPage()
	return nil
}

func (d *pdfDocument) Show(x, y float64, s string) error {
	d.page.TextBegin()
	d.page.TextFirstLine(x*ptPerMM, (PageHeight-y)*ptPerMM)
	d.page.TextShow(s)
	d.page.TextEnd()
	return d.page.Err
}

func (d *pdfDocument) Close() error {
	if d.page != nil {
		if err := d.page.Close(); err != nil {
			return err
		}
		d.page = nil
	}
	return d.doc.Close()
}
