package room

import "errors"

var (
	// ErrRoomNotFound is returned when a room ID does not exist.
	ErrRoomNotFound = errors.New("room not found")

	// ErrInvalidRoom is returned when a room fails validation.
	ErrInvalidRoom = errors.New("invalid room")
)
