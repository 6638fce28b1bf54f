// Package testutil builds small fixture documents for tests.
package testutil

import (
	"bytes"
	"fmt"
	"strings"
)

// BuildPDF returns a minimal single-font PDF with one page per entry in pages.
// Each page entry is a list of text lines drawn top to bottom. A nil entry
// produces a page with no content stream (no text layer).
func BuildPDF(pages [][]string) []byte {
	// 1: catalog, 2: pages tree, 3: font, then (page, content) pairs.
	kids := make([]string, 0, len(pages))
	next := 4
	var pageObjs []string
	for _, lines := range pages {
		pageID := next
		next++
		kids = append(kids, fmt.Sprintf("%d 0 R", pageID))
		if lines == nil {
			pageObjs = append(pageObjs,
				"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> >>")
			continue
		}
		contentID := next
		next++
		pageObjs = append(pageObjs, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", contentID))
		var stream strings.Builder
		y := 720
		for _, line := range lines {
			// absolute Tm positioning keeps each line on its own text row
			fmt.Fprintf(&stream, "BT /F1 12 Tf 1 0 0 1 72 %d Tm (%s) Tj ET\n", y, escape(line))
			y -= 20
		}
		s := stream.String()
		pageObjs = append(pageObjs, fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(s), s))
	}

	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	objs = append(objs, pageObjs...)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// BillLines renders the label layout a bill document carries.
func BillLines(id, company, date, total string) []string {
	return []string{
		"Unique ID: " + id,
		"Company Name: " + company,
		"Date: " + date,
		"Serial Number: SN1700000000",
		"Products/Services:",
		"Consulting - " + total,
		"Total: " + total,
	}
}
