package ids

import "github.com/segmentio/ksuid"

// NewSessionID returns an opaque session identifier. A ksuid carries a
// timestamp component plus 128 bits from crypto/rand, so identifiers are
// sortable by creation time and infeasible to guess.
func NewSessionID() string {
	return "ses_" + ksuid.New().String()
}

// NewExportKey returns an object key for an archived export file.
func NewExportKey(extension string) string {
	return "export-" + ksuid.New().String() + "." + extension
}
