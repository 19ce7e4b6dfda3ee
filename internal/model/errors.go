package model

import (
	"errors"
	"fmt"
	"strings"
)

// DataError reports structurally invalid input: a missing file, missing
// required columns, or an unusable tariff row. It aborts the run.
type DataError struct {
	File    string
	Columns []string // Missing required columns
	Row     int      // Offending data row, 0 when not row specific
	Msg     string
	Err     error
}

func (e *DataError) Error() string {
	var b strings.Builder
	b.WriteString("data error")
	if e.File != "" {
		b.WriteString(" in ")
		b.WriteString(e.File)
	}
	if len(e.Columns) > 0 {
		fmt.Fprintf(&b, ": missing required columns: %s", strings.Join(e.Columns, ", "))
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, ": row %d", e.Row)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DataError) Unwrap() error { return e.Err }

// ParseError reports a single record whose timestamp or numeric field could
// not be parsed. The record is excluded and the run continues.
type ParseError struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
	Err    error  `json:"-"`
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse %s %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LookupError reports a chapter not covered by the tariff table.
// Valuation falls back to the default rate.
type LookupError struct {
	Chapter int
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no tariff band covers chapter %02d", e.Chapter)
}

// ClassificationServiceError reports a failed call to a remote classifier.
// Classification degrades to the unclassified sentinel.
type ClassificationServiceError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *ClassificationServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s classification service: unexpected status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s classification service: %v", e.Service, e.Err)
}

func (e *ClassificationServiceError) Unwrap() error { return e.Err }

// IsFatal reports whether err must abort the run
func IsFatal(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}
