package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"turtlesoup/internal/cache"
	"turtlesoup/internal/model"
)

// CachingOracle serves repeated questions from a VerdictCache. Cache errors
// are logged and skipped; only the wrapped oracle can fail a judgment.
type CachingOracle struct {
	next  Oracle
	cache cache.VerdictCache
}

func NewCachingOracle(next Oracle, c cache.VerdictCache) *CachingOracle {
	return &CachingOracle{next: next, cache: c}
}

func (o *CachingOracle) Judge(ctx context.Context, puzzle model.Puzzle, question string) (model.Judgment, error) {
	cached, err := o.cache.Get(ctx, puzzle, question)
	if err != nil {
		log.Warn().Err(err).Str("puzzle", puzzle.ID).Msg("verdict cache read failed")
	} else if cached != nil {
		return *cached, nil
	}

	j, err := o.next.Judge(ctx, puzzle, question)
	if err != nil {
		return model.Judgment{}, err
	}

	if err := o.cache.Set(ctx, puzzle, question, j); err != nil {
		log.Warn().Err(err).Str("puzzle", puzzle.ID).Msg("verdict cache write failed")
	}
	return j, nil
}
