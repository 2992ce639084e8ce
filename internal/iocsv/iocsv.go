// Package iocsv decodes user-supplied CSV payloads into raw rows for
// the import pipeline.
package iocsv

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/verdant/plantimport/pkg/record"
)

// Parse decodes a UTF-8 CSV payload with a header row. Rows come back
// keyed by the verbatim header names; missing trailing cells read as
// empty strings and rows with no content at all are dropped.
//
// Only structural problems return an error (empty payload, missing
// header, malformed quoting); cell-level problems are the validator's
// concern.
func Parse(data []byte) ([]string, []record.RawRow, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")) // UTF-8 BOM

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, EmptyFileError()
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	headers, err := r.Read()
	if err != nil {
		return nil, nil, HeaderError(err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}
	if len(headers) == 0 || allEmpty(headers) {
		return nil, nil, HeaderError(nil)
	}

	var rows []record.RawRow
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, ReadError(err)
		}
		if allEmpty(fields) {
			continue
		}

		row := make(record.RawRow, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(fields) {
				row[h] = fields[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	return headers, rows, nil
}

func allEmpty(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
