package medicines

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	excelize "github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/medisave/alternatives-api/logging"
)

// readTable reads a tabular dataset file and returns one map per row, keyed
// by the lowercased, trimmed header names. The parser is chosen by file
// extension: .csv or .xlsx (first sheet).
func readTable(path string) ([]map[string]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported dataset file format: %s", path)
	}
}

// readCSV reads a CSV file, detecting the charset and converting to UTF-8.
// Public medicine datasets ship in UTF-8, Windows-1252 or ISO-8859-1
// depending on the export tool.
func readCSV(path string) ([]map[string]string, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("Failed to close dataset file", "error", err)
		}
	}()

	br := bufio.NewReader(file)

	// Peek a bit to detect the encoding
	peek, _ := br.Peek(4096)
	charset := "utf-8"
	if len(peek) > 0 && !utf8.Valid(peek) {
		if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
			charset = strings.ToLower(det.Charset)
		}
	}

	var reader io.Reader = br
	switch charset {
	case "windows-1252", "cp1252":
		reader = transform.NewReader(br, charmap.Windows1252.NewDecoder())
	case "windows-1251", "cp1251":
		reader = transform.NewReader(br, charmap.Windows1251.NewDecoder())
	case "iso-8859-1", "latin1":
		reader = transform.NewReader(br, charmap.ISO8859_1.NewDecoder())
	default:
		// assume UTF-8
	}

	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV %s: %w", path, err)
		}
		rows = append(rows, record)
	}

	return rowsToMaps(rows), nil
}

// readXLSX reads the first sheet of an XLSX workbook.
func readXLSX(path string) ([]map[string]string, error) {
	f, err := excelize.OpenFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("Failed to close dataset workbook", "error", err)
		}
	}()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	return rowsToMaps(rows), nil
}

// rowsToMaps converts header+data rows into row maps keyed by the
// lowercased header, skipping rows that are entirely empty.
func rowsToMaps(rows [][]string) []map[string]string {
	if len(rows) == 0 {
		return nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var out []map[string]string
	for _, record := range rows[1:] {
		row := make(map[string]string, len(headers))
		empty := true
		for i, header := range headers {
			var v string
			if i < len(record) {
				v = record[i]
			}
			if strings.TrimSpace(v) != "" {
				empty = false
			}
			row[header] = v
		}
		if !empty {
			out = append(out, row)
		}
	}
	return out
}
