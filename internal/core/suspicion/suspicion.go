// Package suspicion turns one dataset row into the record merged onto a reimbursement
//
// A row is a column → raw value map. document_id and probability are parsed,
// every other non-reserved column is a hypothesis flag kept only when truthy
package suspicion

import (
	"strconv"
	"strings"

	perr "jarbas/internal/platform/errors"
)

// Column names with fixed meaning; everything else is a hypothesis
const (
	ColApplicantID = "applicant_id"
	ColDocumentID  = "document_id"
	ColProbability = "probability"
	ColYear        = "year"
)

// reserved columns never become hypotheses
var reserved = map[string]struct{}{
	ColApplicantID: {},
	ColDocumentID:  {},
	ColProbability: {},
	ColYear:        {},
}

// IsReserved reports whether col is one of the fixed-meaning columns
func IsReserved(col string) bool {
	_, ok := reserved[col]
	return ok
}

// Row is one decoded dataset line
type Row = map[string]string

// Record is the normalized form of a Row
type Record struct {
	// DocumentID is zero when the row has no usable identifier; such records are skipped
	DocumentID int64

	// Probability is nil when the dataset has no probability column
	Probability *float64

	// Suspicions holds only true hypotheses and is nil, never empty, when there are none
	Suspicions map[string]bool
}

// Normalize builds a Record from row. It is pure and safe to call concurrently.
// A malformed document_id is a MalformedIdentifier error, an unparseable
// probability an InvalidArgument error
func Normalize(row Row) (Record, error) {
	var rec Record

	id, err := ParseDocumentID(row[ColDocumentID])
	if err != nil {
		return Record{}, err
	}
	rec.DocumentID = id

	if raw, ok := row[ColProbability]; ok {
		p, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Record{}, perr.WithField(
				perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "invalid probability %q", raw),
				ColProbability,
			)
		}
		rec.Probability = &p
	}

	for col, val := range row {
		if IsReserved(col) || !Truthy(val) {
			continue
		}
		if rec.Suspicions == nil {
			rec.Suspicions = make(map[string]bool)
		}
		rec.Suspicions[col] = true
	}

	return rec, nil
}

// ParseDocumentID parses a document identifier. Blank, nan and none read as 0
// (no identifier). A zero fraction such as "123.0" is accepted since
// dataframe exports write integer columns with missing values that way;
// exponents, hex and any other fraction are malformed
func ParseDocumentID(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "nan", "none":
		return 0, nil
	}

	if whole, frac, ok := strings.Cut(s, "."); ok && frac != "" && strings.Trim(frac, "0") == "" {
		s = whole
	}
	if !isInteger(s) {
		return 0, malformedID(raw, nil)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, malformedID(raw, err)
	}
	return id, nil
}

// isInteger reports whether s is an optional sign followed by decimal digits
func isInteger(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func malformedID(raw string, cause error) error {
	var err error
	if cause != nil {
		err = perr.Wrapf(cause, perr.ErrorCodeMalformedIdentifier, "malformed document_id %q", raw)
	} else {
		err = perr.Newf(perr.ErrorCodeMalformedIdentifier, "malformed document_id %q", raw)
	}
	return perr.WithField(err, ColDocumentID)
}
