package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turtlesoup/internal/config"
	"turtlesoup/internal/model"
)

func geminiReply(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	})
	return string(b)
}

func newTestOracle(t *testing.T, handler http.HandlerFunc) *GeminiOracle {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.DefaultAIConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = srv.URL + "/v1beta"
	cfg.Timeout = 500 * time.Millisecond
	return NewGeminiOracle(cfg, nil)
}

func TestGeminiOracleJudge(t *testing.T) {
	var gotPath, gotKey, gotPrompt string
	oracle := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")

		var req geminiRequest
		body, _ := io.ReadAll(r.Body)
		if assert.NoError(t, json.Unmarshal(body, &req)) && assert.Len(t, req.Contents, 1) {
			gotPrompt = req.Contents[0].Parts[0].Text
		}

		io.WriteString(w, geminiReply("いいえ"))
	})

	j, err := oracle.Judge(context.Background(), soup, "Is the man an astronaut?")
	require.NoError(t, err)
	assert.Equal(t, model.Judgment{Verdict: model.VerdictNegative, Text: model.DisplayNegative}, j)

	assert.Equal(t, "/v1beta/models/"+config.DefaultGeminiModel+":generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Contains(t, gotPrompt, soup.Prompt)
	assert.Contains(t, gotPrompt, soup.Solution)
	assert.Contains(t, gotPrompt, "Is the man an astronaut?")
	for _, reply := range []string{model.DisplayAffirmative, model.DisplayNegative, model.DisplayIrrelevant, model.DisplaySolved} {
		assert.Contains(t, gotPrompt, reply)
	}
}

func TestGeminiOracleSolvedKeepsExplanation(t *testing.T) {
	oracle := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, geminiReply("正解！ しゃっくりを止めるためでした。"))
	})

	j, err := oracle.Judge(context.Background(), soup, "しゃっくり？")
	require.NoError(t, err)
	assert.Equal(t, model.VerdictSolved, j.Verdict)
	assert.True(t, strings.HasPrefix(j.Text, model.DisplaySolved))
	assert.Contains(t, j.Text, "しゃっくり")
}

func TestGeminiOracleFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"error":{"code":500,"message":"boom"}}`)
		}},
		{"non json", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			io.WriteString(w, "<html>bad gateway</html>")
		}},
		{"no candidates", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"candidates":[]}`)
		}},
		{"blocked", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"promptFeedback":{"blockReason":"SAFETY"}}`)
		}},
		{"outside verdict set", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, geminiReply("もしかすると、そうかもしれません"))
		}},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := newTestOracle(t, tt.handler)

			j, err := oracle.Judge(context.Background(), soup, "question?")
			assert.ErrorIs(t, err, model.ErrOracleUnavailable)
			assert.Equal(t, model.Judgment{}, j)
		})
	}
}

func TestNewOracleWithoutKeyRefuses(t *testing.T) {
	oracle := NewOracle(config.DefaultAIConfig())

	_, err := oracle.Judge(context.Background(), soup, "question?")
	assert.ErrorIs(t, err, model.ErrOracleUnavailable)
}

func TestGeminiOracleListModels(t *testing.T) {
	oracle := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models", r.URL.Path)
		io.WriteString(w, `{"models":[
			{"name":"models/gemini-2.0-flash","supportedGenerationMethods":["generateContent","countTokens"]},
			{"name":"models/embedding-001","supportedGenerationMethods":["embedContent"]}
		]}`)
	})

	names, err := oracle.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini-2.0-flash"}, names)
}
