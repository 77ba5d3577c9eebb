package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"turtlesoup/internal/model"
)

// VerdictCache remembers oracle judgments for identical questions on the
// same puzzle.
type VerdictCache interface {
	Get(ctx context.Context, puzzle model.Puzzle, question string) (*model.Judgment, error)
	Set(ctx context.Context, puzzle model.Puzzle, question string, j model.Judgment) error
}

type verdictCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewVerdictCache creates a Redis backed verdict cache
func NewVerdictCache(client *redis.Client, ttl time.Duration) VerdictCache {
	return &verdictCache{
		client: client,
		ttl:    ttl,
	}
}

// VerdictKey is stable across processes for the same puzzle text and the
// same question modulo case and whitespace.
func VerdictKey(puzzle model.Puzzle, question string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(question), " "))

	h := sha256.New()
	h.Write([]byte(puzzle.Prompt))
	h.Write([]byte{0})
	h.Write([]byte(puzzle.Solution))
	h.Write([]byte{0})
	h.Write([]byte(normalized))
	return fmt.Sprintf("verdict:%s", hex.EncodeToString(h.Sum(nil)))
}

func (c *verdictCache) Get(ctx context.Context, puzzle model.Puzzle, question string) (*model.Judgment, error) {
	data, err := c.client.Get(ctx, VerdictKey(puzzle, question)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var j model.Judgment
	if err := json.Unmarshal([]byte(data), &j); err != nil {
		return nil, err
	}
	if !j.Verdict.Valid() {
		return nil, fmt.Errorf("cached verdict %q is not recognized", j.Verdict)
	}
	return &j, nil
}

func (c *verdictCache) Set(ctx context.Context, puzzle model.Puzzle, question string, j model.Judgment) error {
	data, err := json.Marshal(j)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, VerdictKey(puzzle, question), data, c.ttl).Err()
}
