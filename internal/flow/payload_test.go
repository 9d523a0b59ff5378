package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brisdel/langflow-api/internal/config"
)

func TestBuildPayloadForwardsMessageVerbatim(t *testing.T) {
	messages := []string{
		"hello",
		"  padded message  ",
		"multi\nline\ninput",
		`quotes "and" unicode: héllo ☃`,
	}

	for _, message := range messages {
		payload, partNumber, err := BuildPayload(message, config.FlowConfig{})
		require.NoError(t, err)
		assert.Equal(t, message, payload.InputValue)
		assert.Equal(t, "chat", payload.OutputType)
		assert.Equal(t, "chat", payload.InputType)
		assert.Empty(t, partNumber)
	}
}

func TestBuildPayloadCarriesTweaks(t *testing.T) {
	cfg := config.FlowConfig{
		Tweaks: map[string]map[string]any{
			"ChatInput-abc12": {"session_id": "fixed"},
		},
	}

	payload, _, err := BuildPayload("hi", cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.Tweaks, payload.Tweaks)
}

func TestBuildPayloadRejectsBlankMessage(t *testing.T) {
	for _, message := range []string{"", "   ", "\n\t"} {
		_, _, err := BuildPayload(message, config.FlowConfig{})
		require.Error(t, err)

		relayErr := AsRelayError(err)
		assert.Equal(t, CodeValidation, relayErr.Code)
		assert.Equal(t, 400, relayErr.Status)
	}
}

func TestBuildPayloadRequiresPartNumber(t *testing.T) {
	cfg := config.FlowConfig{RequirePartNumber: true}

	_, _, err := BuildPayload("do we have this in stock?", cfg)
	require.Error(t, err)

	relayErr := AsRelayError(err)
	assert.Equal(t, CodeMissingPartNumber, relayErr.Code)
	assert.Equal(t, 400, relayErr.Status)
	assert.Contains(t, relayErr.Message, "PA-")

	payload, partNumber, err := BuildPayload("stock level for pa-778 please", cfg)
	require.NoError(t, err)
	assert.Equal(t, "PA-778", partNumber)
	assert.Equal(t, "stock level for pa-778 please", payload.InputValue)
}

func TestExtractPartNumber(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
		found   bool
	}{
		{"uppercase", "check PA-12345 availability", "PA-12345", true},
		{"lowercase", "check pa-99", "PA-99", true},
		{"mixed case", "check Pa-7", "PA-7", true},
		{"first of several", "PA-1 then PA-2", "PA-1", true},
		{"no digits", "PA- is incomplete", "", false},
		{"embedded in word", "SUPA-123 is not a part", "", false},
		{"absent", "nothing to see here", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractPartNumber(tt.message)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}
