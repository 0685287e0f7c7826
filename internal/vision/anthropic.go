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

const anthropicVersion = "2023-06-01"

// AnthropicClient extracts page content via the /v1/messages vision path.
type AnthropicClient struct {
	cfg    common.VisionConfig
	http   *http.Client
	logger *slog.Logger
}

func NewAnthropicClient(cfg common.VisionConfig, logger *slog.Logger) *AnthropicClient {
	if cfg.AnthropicBaseURL == "" {
		cfg.AnthropicBaseURL = "https://api.anthropic.com"
	}
	if cfg.AnthropicModel == "" {
		cfg.AnthropicModel = "claude-3-5-sonnet-20241022"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnthropicClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (c *AnthropicClient) Provider() string { return constants.ProviderAnthropic }

func (c *AnthropicClient) Extract(ctx context.Context, pages [][]byte) (extract.Content, float32, error) {
	rid := requestID(ctx)
	start := time.Now()

	c.logger.Info("vision.extract.start",
		"req_id", rid,
		"provider", c.Provider(),
		"model", c.cfg.AnthropicModel,
		"pages", len(pages),
	)

	parts := []map[string]any{}
	for _, img := range pages {
		parts = append(parts, map[string]any{
			"type": "image",
			"source": map[string]any{
				"type":       "base64",
				"media_type": "image/png",
				"data":       base64.StdEncoding.EncodeToString(img),
			},
		})
	}
	parts = append(parts, map[string]any{"type": "text", "text": userPrompt})

	body := map[string]any{
		"model":       c.cfg.AnthropicModel,
		"max_tokens":  c.cfg.MaxTokens,
		"temperature": c.cfg.Temperature,
		"system":      systemPrompt,
		"messages": []map[string]any{
			{"role": "user", "content": parts},
		},
	}

	endpoint := strings.TrimRight(c.cfg.AnthropicBaseURL, "/") + "/v1/messages"
	headers := map[string]string{
		"x-api-key":         c.cfg.AnthropicKey,
		"anthropic-version": anthropicVersion,
	}
	raw, _, err := SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("vision.extract.http_error",
			"req_id", rid, "provider", c.Provider(), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return extract.Content{}, 0, err
	}

	var msg struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return extract.Content{}, 0, fmt.Errorf("decode anthropic response: %w", err)
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return extract.Content{}, 0, fmt.Errorf("no text blocks in anthropic response")
	}

	content, confidence, structured := DecodePayload(sb.String())
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
