package vision

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/extract"
)

// PlainTextConfidence is assigned when a model reply is not valid payload JSON
// and the whole reply is adopted as plain text instead.
const PlainTextConfidence = 0.6

// BuildPayloadJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// We use it locally to validate model replies before decoding them.
func BuildPayloadJSONSchema() map[string]any {
	table := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"page":    map[string]any{"type": "integer", "minimum": 1},
			"headers": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"table_data": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "array"},
			},
		},
		"required": []string{"table_data"},
	}
	image := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"page":        map[string]any{"type": "integer", "minimum": 1},
			"description": map[string]any{"type": "string"},
		},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text":               map[string]any{"type": "string"},
			"tables":             map[string]any{"type": "array", "items": table},
			"images":             map[string]any{"type": "array", "items": image},
			"confidence_score":   map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"text_quality_notes": map[string]any{"type": "string"},
		},
		"required": []string{"text"},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

type payload struct {
	Text             string         `json:"text"`
	Tables           []payloadTable `json:"tables"`
	Images           []payloadImage `json:"images"`
	ConfidenceScore  float32        `json:"confidence_score"`
	TextQualityNotes string         `json:"text_quality_notes"`
}

type payloadTable struct {
	Page      int      `json:"page"`
	Headers   []string `json:"headers"`
	TableData [][]any  `json:"table_data"`
}

type payloadImage struct {
	Page        int    `json:"page"`
	Description string `json:"description"`
}

// DecodePayload turns a model reply into Content. structured reports whether
// the reply was valid payload JSON; when it is not, the whole reply becomes
// plain text with PlainTextConfidence so a chatty model still yields output.
func DecodePayload(raw string) (content extract.Content, confidence float32, structured bool) {
	block := extractJSONBlock(raw)
	if block == "" {
		return plainText(raw)
	}
	data := []byte(block)
	if err := ValidateJSONAgainstSchema(BuildPayloadJSONSchema(), data); err != nil {
		return plainText(raw)
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return plainText(raw)
	}

	content.Text = p.Text
	for i, t := range p.Tables {
		page := t.Page
		if page < 1 {
			page = 1
		}
		tbl := extract.Table{Page: page, Number: i + 1, Headers: t.Headers}
		for _, row := range t.TableData {
			cells := make([]string, 0, len(row))
			for _, c := range row {
				cells = append(cells, stringifyCell(c))
			}
			tbl.Rows = append(tbl.Rows, cells)
		}
		content.Tables = append(content.Tables, tbl)
	}
	for i, im := range p.Images {
		page := im.Page
		if page < 1 {
			page = 1
		}
		content.Images = append(content.Images, extract.Image{Page: page, Number: i + 1, Description: im.Description})
	}

	confidence = p.ConfidenceScore
	if confidence <= 0 || confidence > 1 {
		confidence = PlainTextConfidence
	}
	return content, confidence, true
}

func plainText(raw string) (extract.Content, float32, bool) {
	return extract.Content{Text: strings.TrimSpace(raw)}, PlainTextConfidence, false
}

// stringifyCell renders a JSON cell value as a string. Models sometimes emit
// numbers or nulls inside table_data even when asked for strings.
func stringifyCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case bool:
		return fmt.Sprintf("%v", t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}

// extractJSONBlock finds the outermost JSON object in a reply, tolerating
// markdown code fences and prose around it. Returns "" if none is found.
func extractJSONBlock(raw string) string {
	s := strings.TrimSpace(raw)

	// strip ```json ... ``` fences
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
