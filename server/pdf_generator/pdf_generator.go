package pdfgenerator

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/qjs/madlibgen_gemma/server/madlib"
)

type Config struct {
	PageSize   string
	MarginsMM  float64
	FontFamily string
}

// DefaultConfig is what the daemon and CLI use unless overridden.
var DefaultConfig = Config{
	PageSize:   "A4",
	MarginsMM:  15,
	FontFamily: "Helvetica",
}

type PDFGenerator struct {
	cfg Config
}

func NewPDFGenerator(cfg Config) *PDFGenerator {
	return &PDFGenerator{cfg}
}

var reBlank = regexp.MustCompile(`\{(noun|verb|adjective)_\d+\}`)

// Render writes a two-page PDF: page one is a blank worksheet (placeholders
// shown as labelled blanks for filling in on paper), page two the completed
// story.
func (p *PDFGenerator) Render(ctx context.Context, c madlib.Completed, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	title := cases.Title(language.English).String(c.Topic)

	pdf := fpdf.New("P", "mm", p.cfg.PageSize, "")
	pdf.SetMargins(p.cfg.MarginsMM, p.cfg.MarginsMM, p.cfg.MarginsMM)
	pdf.SetTitle(fmt.Sprintf("Madlib: %s", title), false)

	// ---------- worksheet ----------
	pdf.AddPage()
	pdf.SetFont(p.cfg.FontFamily, "B", 22)
	pdf.CellFormat(0, 15, fmt.Sprintf("Madlib: %s", title), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont(p.cfg.FontFamily, "", 14)
	worksheet := reBlank.ReplaceAllStringFunc(c.Text, func(tok string) string {
		kind := reBlank.FindStringSubmatch(tok)[1]
		return fmt.Sprintf("__________ (%s)", kind)
	})
	pdf.MultiCell(0, 8, worksheet, "", "L", false)

	// ---------- completed story ----------
	pdf.AddPage()
	pdf.SetFont(p.cfg.FontFamily, "B", 22)
	pdf.CellFormat(0, 15, fmt.Sprintf("%s - Completed", title), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont(p.cfg.FontFamily, "", 14)
	pdf.MultiCell(0, 8, c.FilledText, "", "L", false)

	pdf.Ln(6)
	pdf.SetFont(p.cfg.FontFamily, "I", 10)
	for _, s := range c.Slots {
		pdf.MultiCell(0, 5, fmt.Sprintf("%s: %s", s.Placeholder(), s.Value), "", "L", false)
	}

	return pdf.Output(w)
}

// GeneratePDF renders to a file path, for the CLI's --pdf flag.
func (p *PDFGenerator) GeneratePDF(ctx context.Context, c madlib.Completed, outputFilePath string) error {
	f, err := os.Create(outputFilePath)
	if err != nil {
		return err
	}
	if err := p.Render(ctx, c, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
