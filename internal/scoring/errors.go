package scoring

import "errors"

// Error kinds reported to API clients.
const (
	KindInvalidInput      = "InvalidInput"
	KindJuryNotFound      = "JuryNotFound"
	KindTeamNotFound      = "TeamNotFound"
	KindCriterionNotFound = "CriterionNotFound"
)

type kindError struct {
	kind    string
	message string
}

func (e *kindError) Error() string { return e.message }

var (
	// ErrInvalidInput indicates the scores payload is not a usable mapping.
	ErrInvalidInput error = &kindError{kind: KindInvalidInput, message: "invalid scores data provided"}
	// ErrJuryNotFound indicates the jury is not part of the event.
	ErrJuryNotFound error = &kindError{kind: KindJuryNotFound, message: "jury not found in active event"}
	// ErrTeamNotFound indicates the team is not among the jury's evaluations.
	ErrTeamNotFound error = &kindError{kind: KindTeamNotFound, message: "team not found in jury evaluations"}
	// ErrCriterionNotFound indicates an unknown criterion key.
	ErrCriterionNotFound error = &kindError{kind: KindCriterionNotFound, message: "evaluation criterion not found"}
)

// KindOf returns the error kind name for engine errors, or an empty string.
func KindOf(err error) string {
	var kerr *kindError
	if errors.As(err, &kerr) {
		return kerr.kind
	}
	return ""
}
