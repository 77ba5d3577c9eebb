package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turtlesoup/internal/config"
	"turtlesoup/internal/model"
	"turtlesoup/internal/repository"
	"turtlesoup/internal/service"
	"turtlesoup/internal/transport/rest"
)

func TestEnvBinding(t *testing.T) {
	t.Setenv("TURTLESOUP_PORT", "4100")
	t.Setenv("TURTLESOUP_VERDICT_TTL", "5m")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("GEMINI_MODEL", "gemini-test")

	cfg := config.Default()
	cmd := newCmd(cfg)
	cmd.SetArgs([]string{"--port", "4200", "models", "--help"})
	cmd.SetOut(&bytes.Buffer{})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, 4200, cfg.Port, "flags win over the environment")
	assert.Equal(t, 5*time.Minute, cfg.VerdictTTL)
	assert.Equal(t, "secret", cfg.AI.APIKey)
	assert.Equal(t, "gemini-test", cfg.AI.Model)
}

func TestPrefixedGeminiKey(t *testing.T) {
	t.Setenv("TURTLESOUP_GEMINI_API_KEY", "prefixed")

	cfg := config.Default()
	newCmd(cfg)
	assert.Equal(t, "prefixed", cfg.AI.APIKey)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "TURTLESOUP_MONGO_URI", envName("mongo-uri"))
}

type yesOracle struct{}

func (yesOracle) Judge(context.Context, model.Puzzle, string) (model.Judgment, error) {
	return model.Judgment{Verdict: model.VerdictAffirmative, Text: model.DisplayAffirmative}, nil
}

type singlePuzzle struct{}

func (singlePuzzle) Random() model.Puzzle {
	return model.Puzzle{ID: "p", Prompt: "男はなぜ水を頼んだのか？", Solution: "しゃっくり"}
}

func TestPlay(t *testing.T) {
	games := service.NewGameService(repository.NewRoomRepo(), singlePuzzle{}, yesOracle{})
	srv := httptest.NewServer(rest.NewRouter(&rest.Container{GameService: games}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	opts := &playOptions{server: srv.URL, room: "terminal", interval: time.Hour}
	err := play(ctx, opts, strings.NewReader("Was he thirsty?\n\n   \n"), &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Started a new game in room terminal.")
	assert.Contains(t, text, singlePuzzle{}.Random().Prompt)
	assert.Equal(t, 1, strings.Count(text, "Q: Was he thirsty?\nA: はい\n"))
	assert.NotContains(t, text, "しゃっくり")

	st := games.Status(ctx, "terminal")
	require.Len(t, st.History, 1)

	out.Reset()
	err = play(ctx, opts, strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Joined room terminal.")
	assert.Equal(t, 1, strings.Count(out.String(), "Q: Was he thirsty?"))
}
