package ocr

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/audity/constants"
)

// extractPDF reads the text layer page by page. Pages without a text layer
// (scanned pages) contribute nothing and are not an error.
func (e *Extractor) extractPDF(path string) (res Result, err error) {
	res = Result{SourceType: constants.PDF, Method: "pdf-text"}

	// the pdf decoder panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = &UnreadableError{Path: path, Format: constants.PDF, Cause: fmt.Errorf("decoder panic: %v", r)}
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return res, &UnreadableError{Path: path, Format: constants.PDF, Cause: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("failed to close pdf", "path", path, "error", cerr)
		}
	}()

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		text, perr := pageText(reader.Page(i))
		if perr != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", i, perr))
			continue
		}
		if text == "" {
			e.logger.Debug("pdf page has no text layer", "path", path, "page", i)
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	res.Text = b.String()
	res.Pages = pages
	return res, nil
}

// pageText renders one page top to bottom, one output line per baseline.
// Glyph positions come from the full text-state interpreter, so both absolute
// (Tm) and relative (Td, TD, T*) positioning land on the right line.
func pageText(p pdf.Page) (text string, err error) {
	if p.V.IsNull() || p.V.Key("Contents").IsNull() {
		return "", nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("content stream: %v", r)
		}
	}()

	byLine := map[int64][]pdf.Text{}
	for _, g := range p.Content().Text {
		if g.S == "\n" {
			continue
		}
		y := int64(math.Round(g.Y))
		byLine[y] = append(byLine[y], g)
	}
	ys := make([]int64, 0, len(byLine))
	for y := range byLine {
		ys = append(ys, y)
	}
	sort.Slice(ys, func(i, j int) bool { return ys[i] > ys[j] })

	lines := make([]string, 0, len(ys))
	for _, y := range ys {
		if line := strings.TrimSpace(joinGlyphs(byLine[y])); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// joinGlyphs orders a line's glyphs left to right, keeping stream order for
// glyphs at the same x (fonts without width tables), and inserts a space
// where two runs are visibly apart.
func joinGlyphs(glyphs []pdf.Text) string {
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].X < glyphs[j].X })
	var b strings.Builder
	for i, g := range glyphs {
		if i > 0 {
			prev := glyphs[i-1]
			gap := g.X - (prev.X + prev.W)
			if prev.W > 0 && gap > g.FontSize*0.25 && !strings.HasSuffix(prev.S, " ") && g.S != " " {
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
	}
	return b.String()
}
