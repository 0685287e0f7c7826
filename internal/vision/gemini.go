package vision

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	genai "google.golang.org/genai"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/constants"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/common"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/extract"
)

// GeminiClient extracts page content through the Google GenAI SDK.
type GeminiClient struct {
	cfg    common.VisionConfig
	client *genai.Client
	logger *slog.Logger
}

func NewGeminiClient(ctx context.Context, cfg common.VisionConfig, logger *slog.Logger) (*GeminiClient, error) {
	if cfg.GeminiKey == "" {
		return nil, fmt.Errorf("missing gemini api key")
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = "gemini-2.0-flash-exp"
	}
	if logger == nil {
		logger = slog.Default()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.GeminiKey})
	if err != nil {
		return nil, fmt.Errorf("new gemini client: %w", err)
	}
	return &GeminiClient{cfg: cfg, client: client, logger: logger}, nil
}

func (c *GeminiClient) Provider() string { return constants.ProviderGemini }

func (c *GeminiClient) Extract(ctx context.Context, pages [][]byte) (extract.Content, float32, error) {
	rid := requestID(ctx)
	start := time.Now()

	c.logger.Info("vision.extract.start",
		"req_id", rid,
		"provider", c.Provider(),
		"model", c.cfg.GeminiModel,
		"pages", len(pages),
	)

	parts := []*genai.Part{{Text: systemPrompt + "\n\n" + userPrompt}}
	for _, img := range pages {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: "image/png", Data: img},
		})
	}
	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}

	res, err := c.client.Models.GenerateContent(ctx, c.cfg.GeminiModel, contents, nil)
	if err != nil {
		c.logger.Error("vision.extract.http_error",
			"req_id", rid, "provider", c.Provider(), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return extract.Content{}, 0, err
	}
	reply := res.Text()
	if reply == "" {
		return extract.Content{}, 0, fmt.Errorf("empty gemini response")
	}

	content, confidence, structured := DecodePayload(reply)
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
