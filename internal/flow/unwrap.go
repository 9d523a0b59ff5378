package flow

import (
	"github.com/brisdel/langflow-api/internal/domain"
)

// Unwrap walks the upstream envelope down to
// outputs[0].outputs[0].results.message.text and returns the flattened
// result. The walk is deliberately tolerant: if any step is missing or has an
// unexpected shape, the raw envelope is returned under Data instead of an
// error, since the upstream schema is known to vary across deployments.
func Unwrap(raw any) domain.QueryResponse {
	if text, ok := extractText(raw); ok {
		return domain.QueryResponse{Status: "success", Message: text}
	}
	return domain.QueryResponse{Status: "success", Data: raw}
}

func extractText(raw any) (string, bool) {
	outputs, ok := field(raw, "outputs")
	if !ok {
		return "", false
	}
	first, ok := index(outputs, 0)
	if !ok {
		return "", false
	}
	inner, ok := field(first, "outputs")
	if !ok {
		return "", false
	}
	innerFirst, ok := index(inner, 0)
	if !ok {
		return "", false
	}
	results, ok := field(innerFirst, "results")
	if !ok {
		return "", false
	}
	message, ok := field(results, "message")
	if !ok {
		return "", false
	}
	value, ok := field(message, "text")
	if !ok {
		return "", false
	}
	text, ok := value.(string)
	if !ok || text == "" {
		return "", false
	}
	return text, true
}

func field(v any, key string) (any, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	value, ok := obj[key]
	return value, ok
}

func index(v any, i int) (any, bool) {
	list, ok := v.([]any)
	if !ok || i >= len(list) {
		return nil, false
	}
	return list[i], true
}
