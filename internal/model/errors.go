package model

import "errors"

var (
	ErrMissingRoomID     = errors.New("missing room id")
	ErrGameNotStarted    = errors.New("game not started")
	ErrOracleUnavailable = errors.New("oracle unavailable")

	// ErrRoomNotFound is returned by the room store; the game service
	// reports it as ErrGameNotStarted.
	ErrRoomNotFound = errors.New("room not found")

	ErrEmptyCatalog = errors.New("puzzle catalog is empty")
)
