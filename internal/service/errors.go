package service

import "errors"

var (
	// ErrNoActiveEvent indicates that no event is currently accepting evaluations.
	ErrNoActiveEvent = errors.New("no active event found")
	// ErrEventNotFound indicates that the requested event does not exist.
	ErrEventNotFound = errors.New("event not found")
	// ErrCriterionExists indicates a criterion with the same id or name is already configured.
	ErrCriterionExists = errors.New("criterion already exists")
	// ErrTeamExists indicates a team with the same id is already configured.
	ErrTeamExists = errors.New("team already exists")
	// ErrJuryExists indicates a jury with the same id is already configured.
	ErrJuryExists = errors.New("jury already exists")
	// ErrInvalidRoster indicates an imported roster failed schema validation.
	ErrInvalidRoster = errors.New("roster document is invalid")
	// ErrEmptyRoster indicates an event cannot be created without juries and teams.
	ErrEmptyRoster = errors.New("roster has no active juries or teams")
)
