package model

import "time"

type RoomStatus string

const (
	// RoomWaiting is reported for identifiers the store holds no room for.
	RoomWaiting RoomStatus = "waiting"
	RoomPlaying RoomStatus = "playing"
)

// Entry is one judged question in a room's history
type Entry struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Verdict  Verdict   `json:"verdict"`
	AskedAt  time.Time `json:"askedAt"`
}

// Room is a snapshot of one game session. Values handed out by the store are
// copies; mutating them never affects the stored room.
type Room struct {
	ID        string     `json:"roomId"`
	SessionID string     `json:"sessionId"`
	Status    RoomStatus `json:"status"`
	Puzzle    Puzzle     `json:"-"`
	History   []Entry    `json:"history"`
	CreatedAt time.Time  `json:"createdAt"`
}

// StartResult is returned by the start operation
type StartResult struct {
	Puzzle    string  `json:"puzzle"`
	IsNewGame bool    `json:"isNewGame"`
	History   []Entry `json:"history,omitempty"`
	SessionID string  `json:"sessionId"`
}

// AskResult is returned by the ask operation. Skipped is set when the
// question was blank and nothing was judged.
type AskResult struct {
	Answer  string  `json:"answer"`
	Verdict Verdict `json:"verdict,omitempty"`
	Skipped bool    `json:"skipped,omitempty"`
}

// Status is the poll view of a room. History is never nil so it always
// encodes as a JSON array.
type Status struct {
	Status    RoomStatus `json:"status"`
	Puzzle    string     `json:"puzzle,omitempty"`
	SessionID string     `json:"sessionId,omitempty"`
	History   []Entry    `json:"history"`
}
