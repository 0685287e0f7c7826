package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/constants"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/common"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/extract"
)

// OpenAIClient extracts page content via the chat/completions vision path.
type OpenAIClient struct {
	cfg    common.VisionConfig
	http   *http.Client
	logger *slog.Logger
}

func NewOpenAIClient(cfg common.VisionConfig, logger *slog.Logger) *OpenAIClient {
	if cfg.OpenAIBaseURL == "" {
		cfg.OpenAIBaseURL = "https://api.openai.com/v1"
	}
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (c *OpenAIClient) Provider() string { return constants.ProviderOpenAI }

func (c *OpenAIClient) Extract(ctx context.Context, pages [][]byte) (extract.Content, float32, error) {
	rid := requestID(ctx)
	start := time.Now()

	c.logger.Info("vision.extract.start",
		"req_id", rid,
		"provider", c.Provider(),
		"model", c.cfg.OpenAIModel,
		"pages", len(pages),
	)

	parts := []map[string]any{{"type": "text", "text": userPrompt}}
	for _, img := range pages {
		parts = append(parts, map[string]any{
			"type": "image_url",
			"image_url": map[string]any{
				"url": "data:image/png;base64," + base64.StdEncoding.EncodeToString(img),
			},
		})
	}

	body := map[string]any{
		"model":       c.cfg.OpenAIModel,
		"temperature": c.cfg.Temperature,
		"max_tokens":  c.cfg.MaxTokens,
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": parts},
		},
	}

	endpoint := strings.TrimRight(c.cfg.OpenAIBaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.OpenAIKey}
	raw, _, err := SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("vision.extract.http_error",
			"req_id", rid, "provider", c.Provider(), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return extract.Content{}, 0, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return extract.Content{}, 0, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return extract.Content{}, 0, fmt.Errorf("no choices in openai response")
	}

	content, confidence, structured := DecodePayload(cc.Choices[0].Message.Content)
	if !structured {
		c.logger.Warn("vision.extract.unstructured_reply",
			"req_id", rid, "provider", c.Provider(), "text_len", len(content.Text))
	}
	c.logger.Info("vision.extract.ok",
		"req_id", rid,
		"provider", c.Provider(),
		"text_len", len(content.Text),
		"tables", len(content.Tables),
		"images", len(content.Images),
		"confidence", confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, confidence, nil
}
