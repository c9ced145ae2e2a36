// Package pdftest builds minimal valid PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Doc describes a PDF to generate. An empty page entry produces a blank page.
type Doc struct {
	Title string
	Pages []string
}

// Bytes renders doc as a complete single-xref PDF.
func Bytes(t *testing.T, doc Doc) []byte {
	t.Helper()

	type object struct {
		num  int
		body string
	}
	var objects []object

	numPages := len(doc.Pages)
	// Object numbering: 1 catalog, 2 pages, 3 font, then a page/content pair
	// per page, and optionally an Info dictionary last.
	kids := make([]string, numPages)
	for i := range doc.Pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+i*2)
	}

	objects = append(objects,
		object{1, "<< /Type /Catalog /Pages 2 0 R >>"},
		object{2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
			strings.Join(kids, " "), numPages)},
		object{3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>"},
	)

	escaper := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)

	for i, text := range doc.Pages {
		pageNum := 4 + i*2
		contentNum := pageNum + 1

		var stream string
		if text != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", escaper.Replace(text))
		}

		objects = append(objects,
			object{pageNum, fmt.Sprintf(
				"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
					"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
				contentNum)},
			object{contentNum, fmt.Sprintf(
				"<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream)},
		)
	}

	infoNum := 0
	if doc.Title != "" {
		infoNum = 4 + numPages*2
		objects = append(objects, object{infoNum,
			fmt.Sprintf("<< /Title (%s) >>", escaper.Replace(doc.Title))})
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make(map[int]int)
	for _, obj := range objects {
		offsets[obj.num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", obj.num, obj.body)
	}

	xrefOffset := buf.Len()
	size := len(objects) + 1
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", size)
	for i := 1; i < size; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}

	trailer := fmt.Sprintf("<< /Size %d /Root 1 0 R", size)
	if infoNum != 0 {
		trailer += fmt.Sprintf(" /Info %d 0 R", infoNum)
	}
	trailer += " >>"
	fmt.Fprintf(&buf, "trailer\n%s\nstartxref\n%d\n%%%%EOF\n", trailer, xrefOffset)

	return buf.Bytes()
}

// Write renders doc to path.
func Write(t *testing.T, path string, doc Doc) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, Bytes(t, doc), 0o644))
}
