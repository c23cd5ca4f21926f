package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"silicate/internal/apiclient"
	"silicate/internal/apitest"
	"silicate/internal/config"
	"silicate/internal/httpx"
)

// setupTest points the globals at a fresh fake API and captures output.
func setupTest(t *testing.T) (*apitest.Server, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true
	logger = zap.NewNop()

	api := apitest.NewServer()
	t.Cleanup(api.Close)
	var err error
	client, err = apiclient.New(apiclient.Config{BaseURL: api.URL, HTTPClient: api.Client()})
	require.NoError(t, err)
	cfg = config.Config{Server: api.URL, StateDir: t.TempDir(), Timeout: time.Second}

	out := &bytes.Buffer{}
	stdout = out
	t.Cleanup(func() {
		username, organizationName, password = "", "", ""
		page, pageSize, admin, yes, waitFor = 0, 20, false, false, 0
		permissions = nil
	})
	return api, out
}

func testCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

func answerPasswords(t *testing.T, answers ...string) {
	t.Helper()
	saved := askPassword
	t.Cleanup(func() { askPassword = saved })
	askPassword = func(string) (string, error) {
		if len(answers) == 0 {
			return "", errors.New("unexpected prompt")
		}
		next := answers[0]
		answers = answers[1:]
		return next, nil
	}
}

func TestSignUpAndLogin(t *testing.T) {
	_, out := setupTest(t)
	username, organizationName = "alice", "acme"
	answerPasswords(t, "pw", "pw")

	require.NoError(t, runSignUp(testCmd(), nil))
	assert.Contains(t, out.String(), "✓ organization acme created")
	assert.Contains(t, out.String(), `"organization_id"`)

	out.Reset()
	require.NoError(t, runLogin(testCmd(), nil))
	assert.Equal(t, "✓ logged in as alice@acme\n", out.String())

	token, ok, err := client.Tokens().Get()
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)
}

func TestWhoami(t *testing.T) {
	api, out := setupTest(t)
	require.NoError(t, client.Tokens().Set(api.SeedUser("alice", "pw", "acme")))

	require.NoError(t, runWhoami(testCmd(), nil))
	var got struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
		Organization struct {
			Name string `json:"name"`
		} `json:"organization"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "alice", got.User.Username)
	assert.Equal(t, "acme", got.Organization.Name)
	assert.Len(t, api.Requests(), 2)
}

func TestWhoamiWithoutToken(t *testing.T) {
	_, _ = setupTest(t)
	err := runWhoami(testCmd(), nil)
	var failed *httpx.ErrRequestFailed
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "Invalid access token (HTTP 500)", errorMessage(err))
}

func TestPasswd(t *testing.T) {
	api, out := setupTest(t)
	require.NoError(t, client.Tokens().Set(api.SeedUser("alice", "pw", "acme")))

	answerPasswords(t, "a", "b")
	assert.EqualError(t, runPasswd(testCmd(), nil), "passwords do not match")
	assert.Empty(t, api.Requests())

	answerPasswords(t, "n3w", "n3w")
	require.NoError(t, runPasswd(testCmd(), nil))
	assert.Equal(t, "✓ password changed\n", out.String())
	assert.Equal(t, `{"password":"n3w"}`, api.LastRequest().Body)
}

func TestUsersCommands(t *testing.T) {
	api, out := setupTest(t)
	require.NoError(t, client.Tokens().Set(api.SeedUser("alice", "pw", "acme")))

	admin = true
	require.NoError(t, runUsersAdd(testCmd(), []string{"carol"}))
	var created struct {
		ID       string `json:"id"`
		Password string `json:"password"`
	}
	_, jsonPart, ok := bytes.Cut(out.Bytes(), []byte("\n"))
	require.True(t, ok)
	require.NoError(t, json.Unmarshal(jsonPart, &created))
	assert.NotEmpty(t, created.Password)

	out.Reset()
	page, pageSize = 0, 1
	require.NoError(t, runUsersList(testCmd(), nil))
	assert.Equal(t, "page=0&size=1", api.LastRequest().Query)
	assert.Contains(t, out.String(), "alice")
	assert.NotContains(t, out.String(), "carol")

	require.NoError(t, runUsersSetAdmin(testCmd(), []string{created.ID, "false"}))
	assert.Error(t, runUsersSetAdmin(testCmd(), []string{created.ID, "maybe"}))

	require.NoError(t, runUsersResetPassword(testCmd(), []string{created.ID}))
	require.NoError(t, runUsersGet(testCmd(), []string{created.ID}))

	yes = true
	require.NoError(t, runUsersDelete(testCmd(), []string{created.ID}))
	err := runUsersGet(testCmd(), []string{created.ID})
	assert.Equal(t, "User not found (HTTP 500)", errorMessage(err))
}

func TestUsersListDefaultsToFirstPage(t *testing.T) {
	api, out := setupTest(t)
	require.NoError(t, client.Tokens().Set(api.SeedUser("alice", "pw", "acme")))

	for _, name := range []string{"page", "size"} {
		flag := usersListCmd.Flags().Lookup(name)
		require.NoError(t, flag.Value.Set(flag.DefValue))
	}
	assert.Equal(t, 0, page)

	require.NoError(t, runUsersList(testCmd(), nil))
	assert.Equal(t, "page=0&size=20", api.LastRequest().Query)
	assert.Contains(t, out.String(), `"username": "alice"`)

	page = -1
	assert.Error(t, runUsersList(testCmd(), nil))
}

func TestUsersDeleteDeclined(t *testing.T) {
	api, _ := setupTest(t)
	require.NoError(t, client.Tokens().Set(api.SeedUser("alice", "pw", "acme")))
	saved := askConfirm
	defer func() { askConfirm = saved }()
	askConfirm = func(string) (bool, error) { return false, nil }

	require.NoError(t, runUsersDelete(testCmd(), []string{"u1"}))
	assert.Empty(t, api.Requests())
}

func TestHealthWait(t *testing.T) {
	api, out := setupTest(t)
	api.FailHealth(1)
	waitFor = 5 * time.Second

	require.NoError(t, runHealth(testCmd(), nil))
	assert.Contains(t, out.String(), "is ok")
}

func TestHealthNullBody(t *testing.T) {
	_, out := setupTest(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("null"))
	}))
	defer server.Close()
	var err error
	client, err = apiclient.New(apiclient.Config{BaseURL: server.URL, HTTPClient: server.Client()})
	require.NoError(t, err)

	require.NotPanics(t, func() {
		require.NoError(t, runHealth(testCmd(), nil))
	})
	assert.Equal(t, "✓ "+server.URL+" is up\n", out.String())
}

func TestProjectsCommands(t *testing.T) {
	api, out := setupTest(t)
	require.NoError(t, client.Tokens().Set(api.SeedUser("alice", "pw", "acme")))

	require.NoError(t, runProjectsCreate(testCmd(), []string{"web"}))
	var ref struct {
		ID string `json:"id"`
	}
	_, jsonPart, ok := bytes.Cut(out.Bytes(), []byte("\n"))
	require.True(t, ok)
	require.NoError(t, json.Unmarshal(jsonPart, &ref))
	require.NotEmpty(t, ref.ID)

	out.Reset()
	require.NoError(t, runProjectsList(testCmd(), nil))
	assert.Equal(t, "page=0&size=20", api.LastRequest().Query)
	assert.Contains(t, out.String(), `"name": "web"`)
	assert.Contains(t, out.String(), `"all"`)

	require.NoError(t, runProjectsRename(testCmd(), []string{ref.ID, "site"}))
	out.Reset()
	require.NoError(t, runProjectsGet(testCmd(), []string{ref.ID}))
	assert.Contains(t, out.String(), `"name": "site"`)

	admin = false
	out.Reset()
	require.NoError(t, runUsersAdd(testCmd(), []string{"carol"}))
	var carol struct {
		ID string `json:"id"`
	}
	_, jsonPart, ok = bytes.Cut(out.Bytes(), []byte("\n"))
	require.True(t, ok)
	require.NoError(t, json.Unmarshal(jsonPart, &carol))

	assert.Error(t, runProjectsGrant(testCmd(), []string{ref.ID, carol.ID}))
	permissions = []string{"read", "write"}
	require.NoError(t, runProjectsGrant(testCmd(), []string{ref.ID, carol.ID}))
	assert.Equal(t, `{"permissions":["read","write"]}`, api.LastRequest().Body)

	permissions = []string{"write"}
	require.NoError(t, runProjectsRevoke(testCmd(), []string{ref.ID, carol.ID}))
	assert.Equal(t, "DELETE", api.LastRequest().Method)

	out.Reset()
	require.NoError(t, runProjectsMembers(testCmd(), []string{ref.ID}))
	assert.Contains(t, out.String(), `"username": "carol"`)

	require.NoError(t, runProjectsRemoveUser(testCmd(), []string{ref.ID, carol.ID}))
	err := runProjectsRemoveUser(testCmd(), []string{ref.ID, carol.ID})
	assert.Equal(t, "Project access not found (HTTP 500)", errorMessage(err))

	yes = true
	require.NoError(t, runProjectsDelete(testCmd(), []string{ref.ID}))
	err = runProjectsGet(testCmd(), []string{ref.ID})
	assert.Equal(t, "Project not found (HTTP 500)", errorMessage(err))
}

func TestKeygenRefusesOverwrite(t *testing.T) {
	_, out := setupTest(t)
	require.NoError(t, runKeygen(testCmd(), nil))
	assert.Contains(t, out.String(), filepath.Join(cfg.StateDir, "token.key"))

	err := runKeygen(testCmd(), nil)
	assert.ErrorContains(t, err, "refusing to overwrite")
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "boom", errorMessage(errors.New("boom")))
	assert.Equal(t, "502 Bad Gateway", errorMessage(&httpx.ErrRequestFailed{
		StatusCode: 502, Status: "502 Bad Gateway", Body: []byte("<html>"),
	}))
}

func TestSetupFromFlags(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("SILICATE_STATE_DIR", dir)
	v = config.New()
	defer func() { v = config.New() }()

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().AddFlagSet(rootCmd.PersistentFlags())
	require.NoError(t, cmd.Flags().Parse([]string{"--server", "http://controller:5000", "--log-level", "error"}))

	require.NoError(t, setup(cmd, nil))
	assert.Equal(t, "http://controller:5000", client.BaseURL())
	assert.Equal(t, dir, cfg.StateDir)
	assert.Equal(t, "error", cfg.Log.Level)
}
