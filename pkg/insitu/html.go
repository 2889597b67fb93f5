package insitu

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxReportBytes caps the decompressed size of the HTML report.
var maxReportBytes int64 = 64 << 20

// ParseZippedHTML reads a zip archive holding an HTML report. The first
// .htm or .html entry is used.
func ParseZippedHTML(r io.ReaderAt, size int64) (*Log, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &ParseError{Format: FormatZippedHTML, Msg: "invalid zip archive", Err: err}
	}

	var report *zip.File
	for _, f := range zr.File {
		ext := strings.ToLower(path.Ext(f.Name))
		if !f.FileInfo().IsDir() && (ext == ".htm" || ext == ".html") {
			report = f
			break
		}
	}
	if report == nil {
		return nil, &ParseError{Format: FormatZippedHTML, Msg: "archive contains no html report"}
	}

	if report.UncompressedSize64 > uint64(maxReportBytes) {
		return nil, reportTooLarge(report.Name)
	}

	rc, err := report.Open()
	if err != nil {
		return nil, &ParseError{Format: FormatZippedHTML, Msg: "open " + report.Name, Err: err}
	}
	defer rc.Close()

	// The header size is not trusted; the read itself is capped too.
	html, err := io.ReadAll(io.LimitReader(rc, maxReportBytes+1))
	if err != nil {
		return nil, &ParseError{Format: FormatZippedHTML, Msg: "read " + report.Name, Err: err}
	}
	if int64(len(html)) > maxReportBytes {
		return nil, reportTooLarge(report.Name)
	}

	doc, err := goquery.NewDocumentFromReader(decodeText(bytes.NewReader(html)))
	if err != nil {
		return nil, &ParseError{Format: FormatZippedHTML, Msg: "invalid html", Err: err}
	}

	var rows []row
	doc.Find("tr").Each(func(i int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, cell.Text())
		})
		rows = append(rows, newRow(i+1, cells))
	})

	return buildLog(FormatZippedHTML, rows)
}

func reportTooLarge(name string) *ParseError {
	return &ParseError{
		Format: FormatZippedHTML,
		Msg:    fmt.Sprintf("%s exceeds %d bytes uncompressed", name, maxReportBytes),
	}
}
