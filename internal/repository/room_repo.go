package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"turtlesoup/internal/model"
)

// PuzzlePicker chooses the puzzle for a newly created room.
type PuzzlePicker interface {
	Random() model.Puzzle
}

// RoomRepo owns every room. All returned rooms are snapshots.
type RoomRepo interface {
	Get(ctx context.Context, id string) (model.Room, bool)
	CreateOrJoin(ctx context.Context, id string, picker PuzzlePicker) (model.Room, bool)
	AppendHistory(ctx context.Context, id string, entry model.Entry) (model.Room, error)
	Len() int
}

type roomState struct {
	mu        sync.RWMutex
	id        string
	sessionID string
	puzzle    model.Puzzle
	history   []model.Entry
	createdAt time.Time
}

// snapshot must be called with s.mu held.
func (s *roomState) snapshot() model.Room {
	history := make([]model.Entry, len(s.history))
	copy(history, s.history)
	return model.Room{
		ID:        s.id,
		SessionID: s.sessionID,
		Status:    model.RoomPlaying,
		Puzzle:    s.puzzle,
		History:   history,
		CreatedAt: s.createdAt,
	}
}

// roomRepo keeps rooms in process memory. The map lock is only held for
// lookups and inserts; each room's history has its own lock so appends
// in one room never wait on another.
type roomRepo struct {
	mu    sync.RWMutex
	rooms map[string]*roomState
	now   func() time.Time
}

// NewRoomRepo creates an empty in-memory room repository
func NewRoomRepo() RoomRepo {
	return &roomRepo{
		rooms: make(map[string]*roomState),
		now:   time.Now,
	}
}

func (r *roomRepo) lookup(id string) (*roomState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.rooms[id]
	return s, ok
}

func (r *roomRepo) Get(ctx context.Context, id string) (model.Room, bool) {
	s, ok := r.lookup(id)
	if !ok {
		return model.Room{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(), true
}

// CreateOrJoin returns the existing room for id, or atomically creates one
// with a freshly picked puzzle. The bool reports whether a room was created.
func (r *roomRepo) CreateOrJoin(ctx context.Context, id string, picker PuzzlePicker) (model.Room, bool) {
	if s, ok := r.lookup(id); ok {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.snapshot(), false
	}

	r.mu.Lock()
	s, ok := r.rooms[id]
	created := !ok
	if created {
		s = &roomState{
			id:        id,
			sessionID: uuid.NewString(),
			puzzle:    picker.Random(),
			history:   []model.Entry{},
			createdAt: r.now(),
		}
		r.rooms[id] = s
	}
	r.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(), created
}

func (r *roomRepo) AppendHistory(ctx context.Context, id string, entry model.Entry) (model.Room, error) {
	s, ok := r.lookup(id)
	if !ok {
		return model.Room{}, model.ErrRoomNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, entry)
	return s.snapshot(), nil
}

func (r *roomRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
