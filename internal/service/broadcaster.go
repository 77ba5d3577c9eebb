package service

import "turtlesoup/internal/model"

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastStatus(roomID string, status model.Status)
}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastStatus(string, model.Status) {}
