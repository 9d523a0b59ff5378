// Package cli implements the one-shot terminal client for the relay, talking
// to a running server over HTTP.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

type apiClient struct {
	baseURL    string
	httpClient *http.Client
}

type apiError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error status=%d code=%s message=%s", e.Status, e.Code, e.Message)
}

func Run(args []string, stdout io.Writer, stderr io.Writer) int {
	root := flag.NewFlagSet("langflow-api", flag.ContinueOnError)
	root.SetOutput(stderr)

	defaultBaseURL := envOrDefault("RELAY_BASE_URL", "http://localhost:8080")

	baseURL := root.String("base-url", defaultBaseURL, "Relay server base URL")
	timeout := root.Duration("timeout", 3*time.Minute, "HTTP timeout, e.g. 90s")

	if err := root.Parse(args); err != nil {
		writeCLIError(stdout, "invalid_arguments", err.Error(), 0)
		return 2
	}

	remaining := root.Args()
	if len(remaining) == 0 {
		writeCLIError(stdout, "missing_command", usageText(), 0)
		return 2
	}

	client := &apiClient{
		baseURL: strings.TrimRight(strings.TrimSpace(*baseURL), "/"),
		httpClient: &http.Client{
			Timeout: *timeout,
		},
	}

	command := remaining[0]
	commandArgs := remaining[1:]

	switch command {
	case "health":
		return runRequest(context.Background(), client, stdout, http.MethodGet, "/", nil)
	case "query":
		return runQuery(context.Background(), client, stdout, commandArgs)
	default:
		writeCLIError(stdout, "unknown_command", fmt.Sprintf("unknown command %q\n%s", command, usageText()), 0)
		return 2
	}
}

func runQuery(ctx context.Context, client *apiClient, stdout io.Writer, args []string) int {
	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" {
		writeCLIError(stdout, "missing_message", "query requires a message argument", 0)
		return 2
	}

	payload := map[string]string{"message": message}
	return runRequest(ctx, client, stdout, http.MethodPost, "/query", payload)
}

func runRequest(ctx context.Context, client *apiClient, stdout io.Writer, method string, path string, payload any) int {
	responseBody, err := client.request(ctx, method, path, payload)
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) {
			writeCLIError(stdout, apiErr.Code, apiErr.Message, apiErr.Status)
			return 1
		}
		writeCLIError(stdout, "request_failed", err.Error(), 0)
		return 1
	}

	if err := writeStructuredJSON(stdout, responseBody); err != nil {
		writeCLIError(stdout, "invalid_response", err.Error(), 0)
		return 1
	}
	return 0
}

func (c *apiClient) request(ctx context.Context, method string, path string, payload any) ([]byte, error) {
	requestURL, err := c.resolveURL(path)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, err
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode >= 400 {
		apiErr := &apiError{
			Status:  res.StatusCode,
			Code:    "http_error",
			Message: strings.TrimSpace(string(responseBody)),
		}

		var envelope struct {
			Error struct {
				Code      string `json:"code"`
				Message   string `json:"message"`
				RequestID string `json:"requestId"`
			} `json:"error"`
		}

		if err := json.Unmarshal(responseBody, &envelope); err == nil && envelope.Error.Code != "" {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
			apiErr.RequestID = envelope.Error.RequestID
		}

		return nil, apiErr
	}

	return responseBody, nil
}

func (c *apiClient) resolveURL(path string) (string, error) {
	base := strings.TrimSpace(c.baseURL)
	if base == "" {
		return "", errors.New("base URL is required")
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	pathURL, err := url.Parse(path)
	if err != nil {
		return "", err
	}

	return baseURL.ResolveReference(pathURL).String(), nil
}

func writeStructuredJSON(output io.Writer, body []byte) error {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return err
	}

	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func writeCLIError(output io.Writer, code string, message string, status int) {
	payload := map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}
	if status > 0 {
		payload["error"].(map[string]any)["status"] = status
	}

	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(payload)
}

func usageText() string {
	return strings.Join([]string{
		"usage: langflow-api [global flags] <command> [args]",
		"commands: health, query <message>",
		"global flags: -base-url -timeout",
	}, "\n")
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
