package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayloadStructured(t *testing.T) {
	raw := `{
		"text": "Invoice 42\nTotal due: 99.00",
		"tables": [{"page": 1, "headers": ["Item", "Price"], "table_data": [["Widget", "99.00"]]}],
		"images": [{"page": 2, "description": "company logo"}],
		"confidence_score": 0.92,
		"text_quality_notes": ""
	}`

	content, confidence, structured := DecodePayload(raw)
	require.True(t, structured)
	assert.InDelta(t, 0.92, confidence, 1e-6)
	assert.Equal(t, "Invoice 42\nTotal due: 99.00", content.Text)

	require.Len(t, content.Tables, 1)
	assert.Equal(t, 1, content.Tables[0].Page)
	assert.Equal(t, []string{"Item", "Price"}, content.Tables[0].Headers)
	require.Len(t, content.Tables[0].Rows, 1)
	assert.Equal(t, []string{"Widget", "99.00"}, content.Tables[0].Rows[0])

	require.Len(t, content.Images, 1)
	assert.Equal(t, 2, content.Images[0].Page)
	assert.Equal(t, "company logo", content.Images[0].Description)
}

func TestDecodePayloadCodeFences(t *testing.T) {
	raw := "```json\n{\"text\": \"fenced content\", \"confidence_score\": 0.8}\n```"

	content, confidence, structured := DecodePayload(raw)
	require.True(t, structured)
	assert.Equal(t, "fenced content", content.Text)
	assert.InDelta(t, 0.8, confidence, 1e-6)
}

func TestDecodePayloadProseAroundJSON(t *testing.T) {
	raw := "Here is the extraction you asked for:\n{\"text\": \"hello\", \"confidence_score\": 0.7}\nHope that helps!"

	content, _, structured := DecodePayload(raw)
	require.True(t, structured)
	assert.Equal(t, "hello", content.Text)
}

func TestDecodePayloadPlainTextFallback(t *testing.T) {
	raw := "The document says: pay the invoice by Friday."

	content, confidence, structured := DecodePayload(raw)
	assert.False(t, structured)
	assert.Equal(t, raw, content.Text)
	assert.InDelta(t, PlainTextConfidence, confidence, 1e-6)
}

func TestDecodePayloadInvalidJSONFallsBack(t *testing.T) {
	// missing required "text" key -> schema validation fails -> plain text
	raw := `{"tables": [], "confidence_score": 0.9}`

	content, confidence, structured := DecodePayload(raw)
	assert.False(t, structured)
	assert.Equal(t, raw, content.Text)
	assert.InDelta(t, PlainTextConfidence, confidence, 1e-6)
}

func TestDecodePayloadCoercesCellTypes(t *testing.T) {
	raw := `{"text": "t", "tables": [{"table_data": [["a", 3, 2.5, null, true]]}]}`

	content, _, structured := DecodePayload(raw)
	require.True(t, structured)
	require.Len(t, content.Tables, 1)
	assert.Equal(t, []string{"a", "3", "2.5", "", "true"}, content.Tables[0].Rows[0])
	// page defaults to 1 when the model omits it
	assert.Equal(t, 1, content.Tables[0].Page)
}

func TestDecodePayloadOutOfRangeConfidence(t *testing.T) {
	raw := `{"text": "t", "confidence_score": 7}`

	_, _, structured := DecodePayload(raw)
	// confidence_score > 1 violates the schema, so the reply is unstructured
	assert.False(t, structured)
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	schema := BuildPayloadJSONSchema()

	assert.NoError(t, ValidateJSONAgainstSchema(schema, []byte(`{"text": ""}`)))
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{"text": 5}`)))
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`not json`)))
}
