package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ServiceInterface is the contract with the external deferred-job trigger:
// given a wall-clock fire time and an opaque payload, the trigger invokes our
// callback endpoint at that time, at-least-once, with no ordering guarantee.
type ServiceInterface interface {
	Schedule(ctx context.Context, name string, fireAt time.Time, timezone string, payload interface{}) (string, error)
	Delete(ctx context.Context, name string) error
}

type Service struct {
	baseURL     string
	apiKey      string
	callbackURL string
	httpClient  *http.Client
}

func NewService(baseURL, apiKey, callbackURL string) ServiceInterface {
	return &Service{
		baseURL:     baseURL,
		apiKey:      apiKey,
		callbackURL: callbackURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

type createJobRequest struct {
	Name      string      `json:"name"`
	FireAt    string      `json:"fire_at"`
	Timezone  string      `json:"timezone"`
	TargetURL string      `json:"target_url"`
	Payload   interface{} `json:"payload,omitempty"`
}

type jobResponse struct {
	OK          bool   `json:"ok"`
	Ref         string `json:"ref,omitempty"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
}

// Schedule registers a one-time job. The trigger backend rejects fire times
// in the past, so callers must nudge stale times forward before calling.
// Returns the external reference id used for later cancellation and audit.
func (s *Service) Schedule(ctx context.Context, name string, fireAt time.Time, timezone string, payload interface{}) (string, error) {
	reqPayload := &createJobRequest{
		Name:      name,
		FireAt:    fireAt.UTC().Format(time.RFC3339),
		Timezone:  timezone,
		TargetURL: s.callbackURL,
		Payload:   payload,
	}

	resp, err := s.sendRequest(ctx, http.MethodPost, "/jobs", reqPayload)
	if err != nil {
		return "", err
	}
	return resp.Ref, nil
}

// Delete removes a registered job by name. Declared for completeness of the
// trigger contract; the request cancel path never reaches a registered job.
func (s *Service) Delete(ctx context.Context, name string) error {
	_, err := s.sendRequest(ctx, http.MethodDelete, "/jobs/"+name, nil)
	return err
}

func (s *Service) sendRequest(ctx context.Context, method, path string, payload interface{}) (*jobResponse, error) {
	var body io.Reader
	if payload != nil {
		reqBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize scheduler request: %w", err)
		}
		body = bytes.NewBuffer(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build scheduler request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach scheduler service: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	var jobResp jobResponse
	if err := json.Unmarshal(respBody, &jobResp); err != nil {
		return nil, fmt.Errorf("failed to decode scheduler response: %w", err)
	}

	if !jobResp.OK {
		return nil, fmt.Errorf("scheduler error (%s %s): code %d, description: %s", method, path, jobResp.ErrorCode, jobResp.Description)
	}

	return &jobResp, nil
}
