package iocsv

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/verdant/plantimport/pkg/errcode"
)

// EmptyFileError creates an error for an empty CSV payload.
func EmptyFileError() error {
	msg := `The uploaded file is empty

<em>How to fix:</em>
  1. Check that the right file was selected
  2. The file needs a header row and at least one data row`

	return &gn.Error{
		Code: errcode.CSVEmptyError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("empty csv payload"),
	}
}

// HeaderError creates an error for a missing or unreadable header
// row.
func HeaderError(err error) error {
	msg := `Cannot read the CSV header row

<em>Possible causes:</em>
  - The first row is empty
  - The file is not valid CSV
  - Wrong character encoding (must be UTF-8)`

	if err == nil {
		err = fmt.Errorf("header row is empty")
	}

	return &gn.Error{
		Code: errcode.CSVHeaderError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("cannot read csv header: %w", err),
	}
}

// ReadError creates an error for a malformed CSV body.
func ReadError(err error) error {
	msg := `Cannot read the CSV file

<em>Possible causes:</em>
  - Unbalanced quotes
  - The file is truncated

<em>How to fix:</em>
  1. Re-export the file from the spreadsheet application
  2. Verify the file opens cleanly in a CSV viewer`

	return &gn.Error{
		Code: errcode.CSVReadError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("cannot read csv: %w", err),
	}
}
