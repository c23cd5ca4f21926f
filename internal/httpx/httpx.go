package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GetJSON sends a GET request and reads a JSON response.
func GetJSON[Output any](ctx context.Context, config *Config, URL string) (Output, error) {
	return sendJSON[any, Output](ctx, config, http.MethodGet, URL, nil, false)
}

// PostJSON sends a POST request with a JSON body and reads a JSON response.
func PostJSON[Input, Output any](ctx context.Context, config *Config, URL string, input Input) (Output, error) {
	return sendJSON[Input, Output](ctx, config, http.MethodPost, URL, input, true)
}

// PutJSON sends a PUT request with a JSON body and reads a JSON response.
// A nil-like input (untyped nil) sends no body.
func PutJSON[Input, Output any](ctx context.Context, config *Config, URL string, input Input) (Output, error) {
	return sendJSON[Input, Output](ctx, config, http.MethodPut, URL, input, any(input) != nil)
}

// DeleteJSON sends a DELETE request and reads a JSON response.
func DeleteJSON[Output any](ctx context.Context, config *Config, URL string) (Output, error) {
	return sendJSON[any, Output](ctx, config, http.MethodDelete, URL, nil, false)
}

// DeleteJSONBody sends a DELETE request with a JSON body and reads a JSON
// response.
func DeleteJSONBody[Input, Output any](ctx context.Context, config *Config, URL string, input Input) (Output, error) {
	return sendJSON[Input, Output](ctx, config, http.MethodDelete, URL, input, true)
}

func sendJSON[Input, Output any](
	ctx context.Context, config *Config, method, URL string, input Input, withBody bool) (Output, error) {
	var zero Output

	var body io.Reader
	if withBody {
		rawreqbody, err := json.Marshal(input)
		if err != nil {
			return zero, err
		}
		body = bytes.NewReader(rawreqbody)
	}

	req, err := http.NewRequestWithContext(ctx, method, URL, body)
	if err != nil {
		return zero, err
	}
	if withBody {
		req.Header.Set("Content-Type", "application/json")
	}

	rawrespbody, err := do(req, config)
	if err != nil {
		return zero, err
	}

	var output Output
	if err := json.Unmarshal(rawrespbody, &output); err != nil {
		return zero, err
	}
	return output, nil
}

func do(req *http.Request, config *Config) ([]byte, error) {
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if config.UserAgent != "" {
		req.Header.Set("User-Agent", config.UserAgent)
	}
	if config.Authorization != "" {
		req.Header.Set("Authorization", config.Authorization)
	}

	logger := config.logger().With(
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", requestID),
	)
	started := time.Now()

	resp, err := config.Client.Do(req)
	if err != nil {
		logger.Warn("request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	rawrespbody, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn("cannot read response body", zap.Error(err))
		return nil, err
	}

	logger.Debug("response",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(rawrespbody)),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ErrRequestFailed{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       rawrespbody,
		}
	}
	return rawrespbody, nil
}
