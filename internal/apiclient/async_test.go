package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"silicate/internal/httpx"
	"silicate/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fixedServer(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestGoSuccessOnce(t *testing.T) {
	server := fixedServer(http.StatusOK, `{"id":1}`)
	defer server.Close()
	cfg := &httpx.Config{Client: server.Client()}

	var successes, failures atomic.Int32
	var got map[string]any
	call := Go(context.Background(), func(ctx context.Context) (map[string]any, error) {
		return httpx.GetJSON[map[string]any](ctx, cfg, server.URL)
	}, func(v map[string]any) {
		successes.Add(1)
		got = v
	}, func(error) {
		failures.Add(1)
	})
	call.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(0), failures.Load())
	assert.Equal(t, map[string]any{"id": float64(1)}, got)
}

func TestGoErrorOnceWithRawPayload(t *testing.T) {
	const payload = `{"success": false, "message": "Invalid access token"}`
	server := fixedServer(http.StatusUnauthorized, payload)
	defer server.Close()
	client, err := New(Config{BaseURL: server.URL, HTTPClient: server.Client()})
	require.NoError(t, err)

	var successes, failures atomic.Int32
	var got error
	call := Go(context.Background(), client.GetCurrentUser, func(*models.User) {
		successes.Add(1)
	}, func(err error) {
		failures.Add(1)
		got = err
	})
	<-call.Done()

	assert.Equal(t, int32(0), successes.Load())
	assert.Equal(t, int32(1), failures.Load())
	var failed *httpx.ErrRequestFailed
	require.True(t, errors.As(got, &failed))
	assert.Equal(t, http.StatusUnauthorized, failed.StatusCode)
	assert.Equal(t, payload, string(failed.Body))
}

func TestGoNilContinuations(t *testing.T) {
	call := Go(context.Background(), func(context.Context) (int, error) {
		return 0, errors.New("boom")
	}, nil, nil)
	call.Wait()
	call = Go(context.Background(), func(context.Context) (int, error) {
		return 1, nil
	}, nil, nil)
	call.Wait()
}

func TestGoNumericIDSucceedsOnce(t *testing.T) {
	server := fixedServer(http.StatusOK, `{"id":1,"username":"alice","organization_id":2,"admin":true}`)
	defer server.Close()
	client, err := New(Config{BaseURL: server.URL, HTTPClient: server.Client()})
	require.NoError(t, err)

	var successes, failures atomic.Int32
	var got *models.User
	call := Go(context.Background(), client.GetCurrentUser, func(u *models.User) {
		successes.Add(1)
		got = u
	}, func(error) {
		failures.Add(1)
	})
	call.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(0), failures.Load())
	require.NotNil(t, got)
	assert.Equal(t, models.ID("1"), got.ID)
	assert.Equal(t, models.ID("2"), got.OrganizationID)
}

func TestSignUpNumericID(t *testing.T) {
	server := fixedServer(http.StatusOK, `{"id":1}`)
	defer server.Close()
	client, err := New(Config{BaseURL: server.URL, HTTPClient: server.Client()})
	require.NoError(t, err)

	var successes, failures atomic.Int32
	call := Go(context.Background(), func(ctx context.Context) (*models.SignUpResult, error) {
		return client.SignUp(ctx, alice)
	}, func(r *models.SignUpResult) {
		successes.Add(1)
		assert.Equal(t, "1", r.ID.String())
	}, func(error) {
		failures.Add(1)
	})
	call.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(0), failures.Load())
}
