package rowparser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Mode selects the delimiter dialect.
type Mode string

const (
	ModeCSV Mode = "csv"
	ModeTSV Mode = "tsv"
)

// HeaderScanLimit bounds how many rows are inspected when looking for the header row.
const HeaderScanLimit = 5000

var headerTokens = map[string]struct{}{
	"english_word": {},
	"word":         {},
	"英文":           {},
	"英文單字":         {},
}

// Row is one data row keyed by header label.
type Row map[string]string

// Result is the parsed sheet.
type Result struct {
	Header   []string
	Rows     []Row
	Warnings []string
}

// ModeFromFormat maps a configured format name to a Mode, defaulting to CSV.
func ModeFromFormat(format string) Mode {
	if strings.EqualFold(strings.TrimSpace(format), string(ModeTSV)) {
		return ModeTSV
	}
	return ModeCSV
}

// DetectMode guesses the dialect from the first non-blank line.
func DetectMode(text string) Mode {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Contains(line, "\t") && !strings.Contains(unquoted(line), ",") {
			return ModeTSV
		}
		return ModeCSV
	}
	return ModeCSV
}

func unquoted(line string) string {
	var b strings.Builder
	inQuotes := false
	for _, r := range line {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Parse tokenizes text into header-keyed rows.
func Parse(text string, mode Mode) (*Result, error) {
	text, err := stripBOM(text)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return &Result{}, nil
	}

	var records [][]string
	switch mode {
	case ModeTSV:
		records = splitTSV(text)
	case ModeCSV, "":
		records, err = readCSV(text)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("rowparser: unsupported mode %q", mode)
	}
	return zip(records), nil
}

func stripBOM(text string) (string, error) {
	if !strings.HasPrefix(text, "\ufeff") {
		return text, nil
	}
	decoded, _, err := transform.String(unicode.BOMOverride(unicode.UTF8.NewDecoder()), text)
	if err != nil {
		return "", fmt.Errorf("rowparser: decode byte-order mark: %w", err)
	}
	return decoded, nil
}

func readCSV(text string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("rowparser: read csv: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

func splitTSV(text string) [][]string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	records := make([][]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		records = append(records, strings.Split(line, "\t"))
	}
	return records
}

func zip(records [][]string) *Result {
	res := &Result{}
	if len(records) == 0 {
		return res
	}

	headerAt := findHeader(records)
	if headerAt < 0 {
		headerAt = 0
		res.Warnings = append(res.Warnings, "header row not found; falling back to the first row")
	}

	header := make([]string, len(records[headerAt]))
	for i, cell := range records[headerAt] {
		header[i] = cleanCell(cell)
	}
	res.Header = header

	for _, record := range records[headerAt+1:] {
		if isBlank(record) {
			continue
		}
		row := make(Row, len(header))
		for i, label := range header {
			if label == "" {
				continue
			}
			value := ""
			if i < len(record) {
				value = strings.TrimSpace(record[i])
			}
			row[label] = value
		}
		res.Rows = append(res.Rows, row)
	}
	return res
}

func findHeader(records [][]string) int {
	limit := len(records)
	if limit > HeaderScanLimit {
		limit = HeaderScanLimit
	}
	for i := 0; i < limit; i++ {
		for _, cell := range records[i] {
			if _, ok := headerTokens[strings.ToLower(cleanCell(cell))]; ok {
				return i
			}
		}
	}
	return -1
}

func cleanCell(cell string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(cell), "\ufeff"))
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
