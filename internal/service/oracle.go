package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"turtlesoup/internal/config"
	"turtlesoup/internal/model"
)

// Oracle judges a player's question against a puzzle's hidden solution.
// Failures wrap model.ErrOracleUnavailable.
type Oracle interface {
	Judge(ctx context.Context, puzzle model.Puzzle, question string) (model.Judgment, error)
}

// NewOracle returns the Gemini oracle when an API key is configured, and an
// oracle that refuses every question otherwise.
func NewOracle(cfg config.AIConfig) Oracle {
	if !cfg.IsEnabled() {
		return unavailableOracle{}
	}
	return NewGeminiOracle(cfg, nil)
}

type unavailableOracle struct{}

func (unavailableOracle) Judge(context.Context, model.Puzzle, string) (model.Judgment, error) {
	return model.Judgment{}, fmt.Errorf("%w: no GEMINI_API_KEY configured", model.ErrOracleUnavailable)
}

// GeminiOracle judges questions with the Gemini generateContent API
type GeminiOracle struct {
	config config.AIConfig
	client *http.Client
}

// NewGeminiOracle creates a Gemini oracle. A nil client gets one bounded by
// the configured timeout.
func NewGeminiOracle(cfg config.AIConfig, client *http.Client) *GeminiOracle {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &GeminiOracle{
		config: cfg,
		client: client,
	}
}

func (o *GeminiOracle) Judge(ctx context.Context, puzzle model.Puzzle, question string) (model.Judgment, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	reply, err := o.callGemini(ctx, buildJudgePrompt(puzzle, question))
	if err != nil {
		return model.Judgment{}, fmt.Errorf("%w: %v", model.ErrOracleUnavailable, err)
	}

	j, ok := model.ParseVerdict(reply)
	if !ok {
		log.Warn().Str("reply", reply).Msg("oracle reply outside the verdict set")
		return model.Judgment{}, fmt.Errorf("%w: unrecognized reply %q", model.ErrOracleUnavailable, reply)
	}
	return j, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// callGemini makes a request to the Gemini API and returns the text of the
// first candidate
func (o *GeminiOracle) callGemini(ctx context.Context, prompt string) (string, error) {
	var reqBody geminiRequest
	reqBody.Contents = []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}}
	reqBody.GenerationConfig.Temperature = 0
	reqBody.GenerationConfig.MaxOutputTokens = 256

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.config.ModelEndpoint(), bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", o.config.APIKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("gemini returned %s", resp.Status)
		}
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if geminiResp.Error != nil {
			return "", fmt.Errorf("gemini returned %s: %s", resp.Status, geminiResp.Error.Message)
		}
		return "", fmt.Errorf("gemini returned %s", resp.Status)
	}
	if reason := geminiResp.PromptFeedback.BlockReason; reason != "" {
		return "", fmt.Errorf("gemini blocked the prompt: %s", reason)
	}

	if len(geminiResp.Candidates) > 0 {
		var sb strings.Builder
		for _, part := range geminiResp.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			return text, nil
		}
	}

	return "", errors.New("empty response from Gemini")
}

// ListModels returns the models that support generateContent
func (o *GeminiOracle) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.config.ModelsEndpoint(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", o.config.APIKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var list struct {
		Models []struct {
			Name                       string   `json:"name"`
			SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
		} `json:"models"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode model list: %w", err)
	}
	if list.Error != nil {
		return nil, fmt.Errorf("list models: %s", list.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list models: %s", resp.Status)
	}

	var names []string
	for _, m := range list.Models {
		for _, method := range m.SupportedGenerationMethods {
			if method == "generateContent" {
				names = append(names, strings.TrimPrefix(m.Name, "models/"))
				break
			}
		}
	}
	return names, nil
}

// buildJudgePrompt gives the model the puzzle and its solution as context
// the player never sees, and restricts the reply to the four fixed answers.
func buildJudgePrompt(puzzle model.Puzzle, question string) string {
	return fmt.Sprintf(`あなたは「ウミガメのスープ」（水平思考クイズ）のゲームマスターです。

問題: %s
正解: %s

プレイヤーの質問: 「%s」

以下のいずれかで答えてください：
- 「%s」（答えが肯定の場合）
- 「%s」（答えが否定の場合）
- 「%s」（質問が正解と無関係、または前提が間違っている場合）
- 「%s」（プレイヤーが謎を解いた、または核心を突いた場合）

正解した場合以外は、説明を加えないでください。`,
		puzzle.Prompt, puzzle.Solution, question,
		model.DisplayAffirmative, model.DisplayNegative, model.DisplayIrrelevant, model.DisplaySolved)
}
