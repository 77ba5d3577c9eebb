package service

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"turtlesoup/internal/model"
)

// --- Oracle ---

type MockOracle struct {
	mock.Mock
}

func (m *MockOracle) Judge(ctx context.Context, puzzle model.Puzzle, question string) (model.Judgment, error) {
	args := m.Called(ctx, puzzle, question)
	return args.Get(0).(model.Judgment), args.Error(1)
}

// --- VerdictCache ---

type MockVerdictCache struct {
	mock.Mock
}

func (m *MockVerdictCache) Get(ctx context.Context, puzzle model.Puzzle, question string) (*model.Judgment, error) {
	args := m.Called(ctx, puzzle, question)
	j, _ := args.Get(0).(*model.Judgment)
	return j, args.Error(1)
}

func (m *MockVerdictCache) Set(ctx context.Context, puzzle model.Puzzle, question string, j model.Judgment) error {
	args := m.Called(ctx, puzzle, question, j)
	return args.Error(0)
}

// --- Broadcaster ---

type recordingBroadcaster struct {
	mu   sync.Mutex
	sent []model.Status
	ids  []string
}

func (b *recordingBroadcaster) BroadcastStatus(roomID string, status model.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ids = append(b.ids, roomID)
	b.sent = append(b.sent, status)
}

func (b *recordingBroadcaster) statuses() []model.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Status(nil), b.sent...)
}

// --- PuzzlePicker ---

type fixedPicker struct {
	puzzle model.Puzzle
}

func (p fixedPicker) Random() model.Puzzle {
	return p.puzzle
}
