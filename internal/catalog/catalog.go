// Package catalog holds the immutable list of puzzles rooms are started from.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"turtlesoup/internal/model"
)

//go:embed puzzles.json
var defaultPuzzles []byte

// Lister is any source that can enumerate puzzles, such as repository.PuzzleRepo.
type Lister interface {
	List(ctx context.Context) ([]model.Puzzle, error)
}

// Catalog is safe for concurrent use; it is never mutated after New.
type Catalog struct {
	puzzles []model.Puzzle
	intn    func(n int) int
}

// New validates puzzles and builds a catalog from a private copy of them.
func New(puzzles []model.Puzzle) (*Catalog, error) {
	if len(puzzles) == 0 {
		return nil, model.ErrEmptyCatalog
	}

	own := make([]model.Puzzle, len(puzzles))
	for i, p := range puzzles {
		p.Prompt = strings.TrimSpace(p.Prompt)
		p.Solution = strings.TrimSpace(p.Solution)
		if p.Prompt == "" || p.Solution == "" {
			return nil, fmt.Errorf("puzzle %d: prompt and solution are required", i)
		}
		if p.ID == "" {
			p.ID = fmt.Sprintf("puzzle-%d", i+1)
		}
		own[i] = p
	}

	return &Catalog{puzzles: own, intn: rand.Intn}, nil
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return parse(defaultPuzzles)
}

// LoadFile reads a JSON array of {"id","prompt","solution"} objects.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return parse(data)
}

// Load builds a catalog from an external source.
func Load(ctx context.Context, src Lister) (*Catalog, error) {
	puzzles, err := src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list puzzles: %w", err)
	}
	return New(puzzles)
}

func parse(data []byte) (*Catalog, error) {
	var puzzles []model.Puzzle
	if err := json.Unmarshal(data, &puzzles); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(puzzles)
}

// Random returns a puzzle chosen uniformly at random.
func (c *Catalog) Random() model.Puzzle {
	return c.puzzles[c.intn(len(c.puzzles))]
}

func (c *Catalog) Len() int {
	return len(c.puzzles)
}

// Puzzles returns a copy of every puzzle in catalog order.
func (c *Catalog) Puzzles() []model.Puzzle {
	out := make([]model.Puzzle, len(c.puzzles))
	copy(out, c.puzzles)
	return out
}
