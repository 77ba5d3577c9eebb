package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"turtlesoup/internal/catalog"
	"turtlesoup/internal/config"
	"turtlesoup/internal/repository"
	"turtlesoup/internal/service"
)

func newSeedCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write the built-in puzzles into the mongodb puzzle collection.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.MongoURI == "" {
				return errors.New("--mongo-uri is required")
			}
			return seed(cmd.Context(), cfg)
		},
	}
}

func seed(ctx context.Context, cfg *config.Config) error {
	builtin, err := catalog.Default()
	if err != nil {
		return err
	}
	puzzles := builtin.Puzzles()

	client, err := connectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	repo := repository.NewPuzzleRepo(client.Database(cfg.MongoDatabase), cfg.MongoCollection)
	n, err := repo.Upsert(ctx, puzzles)
	if err != nil {
		return err
	}

	log.Info().
		Int64("written", n).
		Int("puzzles", len(puzzles)).
		Str("collection", cfg.MongoDatabase+"."+cfg.MongoCollection).
		Msg("seeded puzzles")
	return nil
}

func newModelsCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the gemini models that can judge questions.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cfg.AI.IsEnabled() {
				return errors.New("GEMINI_API_KEY is not set")
			}
			names, err := service.NewGeminiOracle(cfg.AI, nil).ListModels(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
