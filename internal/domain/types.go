package domain

// QueryRequest is the inbound body for POST /query.
type QueryRequest struct {
	Message string `json:"message"`
}

// QueryResponse is the flattened result relayed back to the caller. When the
// upstream envelope has the expected shape, Message carries the extracted
// text. When it does not, Data carries the untouched envelope instead.
type QueryResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	Data       any    `json:"data,omitempty"`
	PartNumber string `json:"partNumber,omitempty"`
}

type HealthEnvironment struct {
	HasToken bool `json:"hasToken"`
}

type HealthResponse struct {
	Status      string            `json:"status"`
	Message     string            `json:"message"`
	Environment HealthEnvironment `json:"environment"`
}

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

type APIErrorResponse struct {
	Error APIError `json:"error"`
}
