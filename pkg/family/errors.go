package family

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// RelatedPersonError reports a violated family-graph contract: a bad gender
// token, a parent of the wrong gender, an ancestor cycle, a missing edge on
// removal, or an inverted depth range.
type RelatedPersonError struct {
	Msg string
}

func (e *RelatedPersonError) Error() string {
	return e.Msg
}

// ErrRecordNotFound is returned when no PERSON.md matches a UUID or prefix.
var ErrRecordNotFound = errors.New("person not found")

// ErrAmbiguousUUID is returned when a UUID prefix matches several persons.
var ErrAmbiguousUUID = errors.New("uuid prefix is ambiguous")

func relatedPersonErrorf(format string, args ...any) error {
	return errors.WithStack(&RelatedPersonError{Msg: fmt.Sprintf(format, args...)})
}

// IsRelatedPersonError reports whether err is or wraps a RelatedPersonError.
func IsRelatedPersonError(err error) bool {
	var rpe *RelatedPersonError
	return errors.As(err, &rpe)
}
