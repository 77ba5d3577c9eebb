package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"turtlesoup/internal/model"
	"turtlesoup/internal/repository"
)

// GameService implements start, ask and status on top of the room
// repository and the judgment oracle
type GameService struct {
	rooms       repository.RoomRepo
	puzzles     repository.PuzzlePicker
	oracle      Oracle
	broadcaster Broadcaster
	now         func() time.Time
}

// NewGameService creates a new game service
func NewGameService(rooms repository.RoomRepo, puzzles repository.PuzzlePicker, oracle Oracle) *GameService {
	return &GameService{
		rooms:       rooms,
		puzzles:     puzzles,
		oracle:      oracle,
		broadcaster: noopBroadcaster{},
		now:         time.Now,
	}
}

// SetBroadcaster sets the push channel notified after every committed change
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Start joins the playing room for roomID, creating it with a random
// puzzle if there is none. Joining never changes the puzzle or history.
func (s *GameService) Start(ctx context.Context, roomID string) (*model.StartResult, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return nil, model.ErrMissingRoomID
	}

	room, created := s.rooms.CreateOrJoin(ctx, roomID, s.puzzles)

	res := &model.StartResult{
		Puzzle:    room.Puzzle.Prompt,
		IsNewGame: created,
		SessionID: room.SessionID,
	}
	if created {
		log.Info().Str("room", roomID).Str("session", room.SessionID).Str("puzzle", room.Puzzle.ID).Msg("game started")
		s.broadcaster.BroadcastStatus(roomID, statusOf(room))
	} else {
		res.History = room.History
		log.Debug().Str("room", roomID).Int("history", len(room.History)).Msg("joined game")
	}
	return res, nil
}

// Ask judges question against the room's puzzle and records the result.
// A blank question is skipped without consulting the oracle. History is
// only appended after the oracle returns a verdict.
func (s *GameService) Ask(ctx context.Context, roomID, question string) (*model.AskResult, error) {
	roomID = strings.TrimSpace(roomID)
	room, ok := s.rooms.Get(ctx, roomID)
	if !ok {
		return nil, model.ErrGameNotStarted
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return &model.AskResult{Skipped: true}, nil
	}

	started := s.now()
	j, err := s.oracle.Judge(ctx, room.Puzzle, question)
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("oracle failed")
		return nil, err
	}

	updated, err := s.rooms.AppendHistory(ctx, roomID, model.Entry{
		Question: question,
		Answer:   j.Text,
		Verdict:  j.Verdict,
		AskedAt:  started,
	})
	if errors.Is(err, model.ErrRoomNotFound) {
		return nil, model.ErrGameNotStarted
	}
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("room", roomID).
		Str("verdict", string(j.Verdict)).
		Dur("took", s.now().Sub(started)).
		Msg("question judged")
	s.broadcaster.BroadcastStatus(roomID, statusOf(updated))

	return &model.AskResult{Answer: j.Text, Verdict: j.Verdict}, nil
}

// Status reports the current state of roomID. Unknown rooms are waiting.
func (s *GameService) Status(ctx context.Context, roomID string) model.Status {
	room, ok := s.rooms.Get(ctx, strings.TrimSpace(roomID))
	if !ok {
		return model.Status{Status: model.RoomWaiting, History: []model.Entry{}}
	}
	return statusOf(room)
}

// RoomCount returns the number of rooms in play
func (s *GameService) RoomCount() int {
	return s.rooms.Len()
}

func statusOf(room model.Room) model.Status {
	history := room.History
	if history == nil {
		history = []model.Entry{}
	}
	return model.Status{
		Status:    model.RoomPlaying,
		Puzzle:    room.Puzzle.Prompt,
		SessionID: room.SessionID,
		History:   history,
	}
}
