package seed

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Record is one data row of a delimited source, keyed by lowercased header
// name. Line is the 1-indexed source line, for warnings.
type Record struct {
	Line   int
	fields map[string]string
}

// Get returns the raw value for a field, trimmed of surrounding whitespace.
// Missing fields return "".
func (r Record) Get(name string) string {
	return r.fields[strings.ToLower(name)]
}

// ParseRecords parses raw delimited text whose first line is a header row.
// Each subsequent line becomes a Record in input order. Empty lines are
// skipped. A row whose column count does not match the header is an error
// for the whole read; there is no per-field recovery here.
func ParseRecords(data []byte) ([]Record, error) {
	data = sanitizeUTF8(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.LazyQuotes = true
	// FieldsPerRecord defaults to the header's field count, making
	// column-count mismatches a parse error.

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(cleanCell(h))
	}

	var records []Record
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		fields := make(map[string]string, len(header))
		for i, h := range header {
			fields[h] = strings.TrimSpace(row[i])
		}
		line, _ := r.FieldPos(0)
		records = append(records, Record{Line: line, fields: fields})
	}

	return records, nil
}

// cleanCell strips artifacts commonly found in exported headers: a UTF-8
// BOM, surrounding whitespace, and surrounding quotes.
func cleanCell(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return s
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune so
// the csv reader never sees broken encoding.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
