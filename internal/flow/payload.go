package flow

import (
	"regexp"
	"strings"

	"github.com/brisdel/langflow-api/internal/config"
)

const (
	defaultOutputType = "chat"
	defaultInputType  = "chat"
)

var partNumberPattern = regexp.MustCompile(`(?i)\bPA-[0-9]+\b`)

// Payload is the body sent to the upstream run endpoint.
type Payload struct {
	InputValue string                    `json:"input_value"`
	OutputType string                    `json:"output_type"`
	InputType  string                    `json:"input_type"`
	Tweaks     map[string]map[string]any `json:"tweaks,omitempty"`
}

// BuildPayload validates the inbound message and shapes it into the upstream
// payload. The message is forwarded untouched; validation only rejects blank
// input. When the deployment requires a part number, the first PA-<digits>
// token is extracted and returned alongside the payload.
func BuildPayload(message string, cfg config.FlowConfig) (Payload, string, error) {
	if strings.TrimSpace(message) == "" {
		return Payload{}, "", NewValidationError("message is required")
	}

	partNumber := ""
	if cfg.RequirePartNumber {
		match, ok := ExtractPartNumber(message)
		if !ok {
			return Payload{}, "", NewMissingPartNumberError()
		}
		partNumber = match
	}

	return Payload{
		InputValue: message,
		OutputType: defaultOutputType,
		InputType:  defaultInputType,
		Tweaks:     cfg.Tweaks,
	}, partNumber, nil
}

// ExtractPartNumber finds the first part-number token in the message,
// normalized to upper case.
func ExtractPartNumber(message string) (string, bool) {
	match := partNumberPattern.FindString(message)
	if match == "" {
		return "", false
	}
	return strings.ToUpper(match), true
}
