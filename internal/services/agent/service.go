package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/deepgram/insights/internal/config"
	"github.com/rs/zerolog/log"
)

const (
	maxErrorBody    = 4096
	maxResponseBody = 1 << 20
)

// QueryRequest is the body sent to the remote agent
type QueryRequest struct {
	Question string `json:"question"`
}

// QueryResponse is the success body returned by the remote agent
type QueryResponse struct {
	Answer string `json:"answer"`
}

// errorBody covers both {"error": "..."} and the FastAPI {"detail": "..."} shapes
type errorBody struct {
	Error  string          `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

// StatusError is returned when the agent answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Reason     string
}

func (e *StatusError) Error() string {
	return e.Reason
}

func (e *StatusError) HTTPStatusCode() int {
	return e.StatusCode
}

type Service struct {
	client   *http.Client
	endpoint string
}

type Option func(*Service)

// WithHTTPClient replaces the default client, e.g. with one carrying a transport timeout
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.client = client
		}
	}
}

func NewService(endpoint string, opts ...Option) *Service {
	log.Info().Bool("configured", config.IsAgentEndpointConfigured(endpoint)).Msg("Initialising agent service")
	s := &Service{
		client:   &http.Client{},
		endpoint: strings.TrimSpace(endpoint),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsConfigured reports whether the endpoint has been moved off its placeholder
func (s *Service) IsConfigured() bool {
	return config.IsAgentEndpointConfigured(s.endpoint)
}

// Ask sends one question to the agent. An empty answer with a nil error means
// the agent responded successfully without an answer field.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	if !s.IsConfigured() {
		return "", errors.New("agent endpoint is not configured")
	}

	jsonData, err := json.Marshal(QueryRequest{Question: question})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	log.Debug().Int("question_length", len(question)).Msg("Sending question to agent")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		log.Error().Err(err).Msg("Failed to reach agent")
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debug().Int("status", resp.StatusCode).Msg("Received response from agent")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{StatusCode: resp.StatusCode, Reason: errorReason(resp.StatusCode, body)}
		log.Warn().Int("status", resp.StatusCode).Str("reason", statusErr.Reason).Msg("Agent returned non-2xx status")
		return "", statusErr
	}

	var queryResp QueryResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&queryResp); err != nil {
		log.Error().Err(err).Msg("Failed to decode agent response")
		return "", fmt.Errorf("failed to decode agent response: %w", err)
	}

	if queryResp.Answer == "" {
		log.Warn().Msg("Agent response carried no answer")
	}

	return queryResp.Answer, nil
}

func errorReason(status int, body []byte) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if reason := strings.TrimSpace(parsed.Error); reason != "" {
			return reason
		}
		var detail string
		if err := json.Unmarshal(parsed.Detail, &detail); err == nil && strings.TrimSpace(detail) != "" {
			return strings.TrimSpace(detail)
		}
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}
