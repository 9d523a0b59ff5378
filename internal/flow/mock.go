package flow

import (
	"context"
	"strings"
)

// MockProvider answers locally with a canned Langflow-shaped envelope so the
// whole pipeline can run without upstream access.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) Run(_ context.Context, payload Payload) (any, error) {
	text := strings.TrimSpace(payload.InputValue)
	if text == "" {
		text = "no input provided"
	}

	return map[string]any{
		"outputs": []any{
			map[string]any{
				"outputs": []any{
					map[string]any{
						"results": map[string]any{
							"message": map[string]any{
								"text": "[mock] " + text,
							},
						},
					},
				},
			},
		},
	}, nil
}
