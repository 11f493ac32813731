package service

import "errors"

// Sentinel kinds for pipeline errors.
var (
	ErrNoTeams = errors.New("no teams found in standings payload")
)
