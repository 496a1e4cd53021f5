package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"pos-backend/internal/domains/promotion/model"
	"pos-backend/internal/domains/promotion/service"
)

// ErrStaleResponse is returned when a newer evaluation was issued while
// this one was in flight. The caller must not display the result.
var ErrStaleResponse = errors.New("evaluation superseded by a newer request")

// APIError is a non-2xx answer from the evaluation endpoint.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("evaluate: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Client calls POST /promotions/evaluate on behalf of one register and
// drops out-of-order responses. Debouncing keystrokes is left to the UI.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	tracker    SequenceTracker
}

func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

type envelope struct {
	Success bool                    `json:"success"`
	Data    *model.EvaluateResponse `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Evaluate returns the server pricing for lines, or ErrStaleResponse when
// a later call has been made in the meantime.
func (c *Client) Evaluate(ctx context.Context, lines []model.CartLine, customPercent decimal.Decimal) (*model.EvaluationResult, error) {
	seq := c.tracker.Next()

	body, err := json.Marshal(model.EvaluateRequest{
		Items:                 lines,
		CustomDiscountPercent: customPercent,
		Sequence:              seq,
	})
	if err != nil {
		return nil, fmt.Errorf("encode evaluate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/promotions/evaluate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build evaluate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("evaluate request: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode evaluate response: %w", err)
	}

	if !c.tracker.IsLatest(seq) {
		return nil, ErrStaleResponse
	}

	if resp.StatusCode >= 300 || !env.Success {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return nil, apiErr
	}

	if env.Data == nil || env.Data.Result == nil {
		return nil, errors.New("evaluate response has no result")
	}
	if env.Data.Sequence != seq {
		return nil, fmt.Errorf("evaluate response sequence %d, expected %d", env.Data.Sequence, seq)
	}

	return env.Data.Result, nil
}

// EvaluateOrEstimate falls back to an undiscounted estimate when the
// service cannot be reached, and reports that it did so. Stale responses
// are still returned as ErrStaleResponse.
func (c *Client) EvaluateOrEstimate(ctx context.Context, lines []model.CartLine, customPercent decimal.Decimal) (*model.EvaluationResult, bool, error) {
	result, err := c.Evaluate(ctx, lines, customPercent)
	if err == nil {
		return result, false, nil
	}
	if errors.Is(err, ErrStaleResponse) {
		return nil, false, err
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
		return nil, false, err
	}

	log.Warn().Err(err).Msg("promotion evaluation unavailable, showing undiscounted estimate")
	return service.EstimateUndiscounted(lines), true, nil
}
