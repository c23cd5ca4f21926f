package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type apiRequest struct {
	Username string `json:"username"`
}

type apiResponse struct {
	ID int `json:"id"`
}

type recorded struct {
	Method      string
	Path        string
	ContentType string
	Auth        string
	UserAgent   string
	Body        string
}

func newServer(t *testing.T, status int, body string, seen *[]recorded) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if _, err := uuid.Parse(r.Header.Get("X-Request-ID")); err != nil {
			t.Errorf("missing or invalid X-Request-ID: %q", r.Header.Get("X-Request-ID"))
		}
		*seen = append(*seen, recorded{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			Auth:        r.Header.Get("Authorization"),
			UserAgent:   r.Header.Get("User-Agent"),
			Body:        string(raw),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig() *Config {
	return &Config{
		Client:    http.DefaultClient,
		Logger:    zap.NewNop(),
		UserAgent: "silicate-test/1.0",
	}
}

func TestPostJSON(t *testing.T) {
	t.Run("on success", func(t *testing.T) {
		var seen []recorded
		server := newServer(t, http.StatusOK, `{"id":1}`, &seen)

		resp, err := PostJSON[*apiRequest, *apiResponse](
			context.Background(), testConfig(), server.URL+"/api/v1/users/signup", &apiRequest{Username: "ada"})
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(&apiResponse{ID: 1}, resp); diff != "" {
			t.Fatal(diff)
		}

		expect := []recorded{{
			Method:      "POST",
			Path:        "/api/v1/users/signup",
			ContentType: "application/json",
			UserAgent:   "silicate-test/1.0",
			Body:        `{"username":"ada"}`,
		}}
		if diff := cmp.Diff(expect, seen); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("when we cannot marshal the request body", func(t *testing.T) {
		req := make(chan int)
		resp, err := PostJSON[chan int, *apiResponse](context.Background(), testConfig(), "http://127.0.0.1/", req)
		if err == nil || err.Error() != "json: unsupported type: chan int" {
			t.Fatal("unexpected error", err)
		}
		if resp != nil {
			t.Fatal("expected nil resp")
		}
	})

	t.Run("when we cannot create a request", func(t *testing.T) {
		_, err := PostJSON[*apiRequest, *apiResponse](context.Background(), testConfig(), "\t", &apiRequest{})
		if err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("when we cannot parse the response body", func(t *testing.T) {
		var seen []recorded
		server := newServer(t, http.StatusOK, `[]`, &seen)
		resp, err := PostJSON[*apiRequest, *apiResponse](context.Background(), testConfig(), server.URL, &apiRequest{})
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			t.Fatal("unexpected error", err)
		}
		if resp != nil {
			t.Fatal("expected nil resp")
		}
	})
}

func TestGetJSON(t *testing.T) {
	t.Run("sends the authorization header and no body", func(t *testing.T) {
		var seen []recorded
		server := newServer(t, http.StatusOK, `{"id":"u1","username":"ada"}`, &seen)

		config := testConfig()
		config.Authorization = "Bearer abc"
		resp, err := GetJSON[map[string]any](context.Background(), config, server.URL+"/api/v1/users/me")
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(map[string]any{"id": "u1", "username": "ada"}, resp); diff != "" {
			t.Fatal(diff)
		}
		if len(seen) != 1 {
			t.Fatal("expected exactly one request, got", len(seen))
		}
		if seen[0].Method != "GET" || seen[0].Auth != "Bearer abc" || seen[0].Body != "" || seen[0].ContentType != "" {
			t.Fatalf("unexpected request %+v", seen[0])
		}
	})

	t.Run("in case of HTTP failure", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		URL := server.URL
		server.Close()

		_, err := GetJSON[*apiResponse](context.Background(), testConfig(), URL)
		if err == nil {
			t.Fatal("expected an error")
		}
		var failed *ErrRequestFailed
		if errors.As(err, &failed) {
			t.Fatal("a network error is not a status error")
		}
	})

	t.Run("with a canceled context", func(t *testing.T) {
		var seen []recorded
		server := newServer(t, http.StatusOK, `{}`, &seen)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := GetJSON[*apiResponse](ctx, testConfig(), server.URL)
		if !errors.Is(err, context.Canceled) {
			t.Fatal("unexpected error", err)
		}
	})
}

func TestHTTPStatusCodeHandling(t *testing.T) {
	var seen []recorded
	server := newServer(t, http.StatusUnauthorized, `{"success": false, "message": "Invalid access token"}`, &seen)

	resp, err := GetJSON[*apiResponse](context.Background(), testConfig(), server.URL+"/api/v1/organization")
	if resp != nil {
		t.Fatal("expected nil resp")
	}

	var failed *ErrRequestFailed
	if !errors.As(err, &failed) {
		t.Fatal("not an *ErrRequestFailed instance", err)
	}
	if failed.StatusCode != 401 {
		t.Fatal("unexpected status code", failed.StatusCode)
	}
	if string(failed.Body) != `{"success": false, "message": "Invalid access token"}` {
		t.Fatal("the raw body must be kept verbatim", string(failed.Body))
	}
	if failed.Message() != "Invalid access token" {
		t.Fatal("unexpected message", failed.Message())
	}
	if failed.Method != "GET" {
		t.Fatal("unexpected method", failed.Method)
	}
}

func TestErrRequestFailedMessage(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"success": false, "message": "User not found"}`, "User not found"},
		{`{"error": "Authentication required"}`, "Authentication required"},
		{`<html>bad gateway</html>`, ""},
		{``, ""},
	}
	for _, tc := range cases {
		e := &ErrRequestFailed{StatusCode: 500, Status: "500 INTERNAL SERVER ERROR", Body: []byte(tc.body)}
		if got := e.Message(); got != tc.want {
			t.Errorf("Message(%q) = %q, want %q", tc.body, got, tc.want)
		}
		if e.Error() == "" {
			t.Error("empty Error()")
		}
	}
}

func TestPutAndDeleteJSON(t *testing.T) {
	t.Run("PUT with a body", func(t *testing.T) {
		var seen []recorded
		server := newServer(t, http.StatusOK, `{"id":1}`, &seen)
		_, err := PutJSON[map[string]string, *apiResponse](
			context.Background(), testConfig(), server.URL+"/api/v1/users/me/password", map[string]string{"password": "s3cret"})
		if err != nil {
			t.Fatal(err)
		}
		if seen[0].Method != "PUT" || seen[0].Body != `{"password":"s3cret"}` {
			t.Fatalf("unexpected request %+v", seen[0])
		}
	})

	t.Run("PUT without a body", func(t *testing.T) {
		var seen []recorded
		server := newServer(t, http.StatusOK, `{"id":1}`, &seen)
		_, err := PutJSON[any, *apiResponse](context.Background(), testConfig(), server.URL, nil)
		if err != nil {
			t.Fatal(err)
		}
		if seen[0].Body != "" || seen[0].ContentType != "" {
			t.Fatalf("unexpected request %+v", seen[0])
		}
	})

	t.Run("DELETE", func(t *testing.T) {
		var seen []recorded
		server := newServer(t, http.StatusOK, `{"id":1}`, &seen)
		_, err := DeleteJSON[*apiResponse](context.Background(), testConfig(), server.URL+"/api/v1/users/u2")
		if err != nil {
			t.Fatal(err)
		}
		if seen[0].Method != "DELETE" || seen[0].Path != "/api/v1/users/u2" {
			t.Fatalf("unexpected request %+v", seen[0])
		}
	})
	t.Run("DELETE with a body", func(t *testing.T) {
		var seen []recorded
		server := newServer(t, http.StatusOK, `{"project_id":"p1","user_id":"u2"}`, &seen)
		_, err := DeleteJSONBody[map[string][]string, map[string]string](
			context.Background(), testConfig(), server.URL+"/api/v1/projects/p1/users/u2/access",
			map[string][]string{"permissions": {"read"}})
		if err != nil {
			t.Fatal(err)
		}
		want := recorded{
			Method:      "DELETE",
			Path:        "/api/v1/projects/p1/users/u2/access",
			ContentType: "application/json",
			UserAgent:   "silicate-test/1.0",
			Body:        `{"permissions":["read"]}`,
		}
		if diff := cmp.Diff(want, seen[0]); diff != "" {
			t.Fatal(diff)
		}
	})
}
