package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrep/trustledger/internal/clock"
	"github.com/agentrep/trustledger/internal/config"
	"github.com/agentrep/trustledger/internal/ledger"
	"github.com/agentrep/trustledger/internal/protocol"
	"github.com/agentrep/trustledger/pkg/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	l := ledger.New(storage.NewMemoryStorage(), ledger.WithClock(clock.NewFixed(1_700_000_000)))
	require.NoError(t, l.Genesis(context.Background(), &protocol.Genesis{Params: protocol.DefaultParams(), OracleAuthority: "root"}))

	env := &config.Env{BaseEnv: config.BaseEnv{APIKey: "secret"}}
	srv := httptest.NewServer(NewServer(env, ledger.NewServer(l)).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string, authed bool) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if authed {
		req.Header.Set("Authorization", "Bearer secret")
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := do(t, srv, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RequiresAPIKey(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := do(t, srv, http.MethodGet, "/api/v1/protocol", "", false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := do(t, srv, http.MethodGet, "/api/v1/protocol", "", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2000, body["slash_threshold"])
}

func TestServer_AgentLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodPost, "/api/v1/agents", `{"owner":"alice","name":"Alice"}`, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "alice", body["owner"])
	assert.Equal(t, true, body["is_active"])

	resp, body = do(t, srv, http.MethodPost, "/api/v1/agents", `{"owner":"alice","name":"Alice"}`, true)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "already_exists", body["code"])

	resp, body = do(t, srv, http.MethodPost, "/api/v1/agents/alice/tasks", `{"task_id":"t1","amount":40}`, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 40, body["reputation_score"])

	resp, body = do(t, srv, http.MethodPost, "/api/v1/agents/alice/tasks", `{"task_id":"t2","amount":500}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["violations"])

	resp, body = do(t, srv, http.MethodGet, "/api/v1/agents/alice/reputation", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 40, body["reputation_score"])

	resp, _ = do(t, srv, http.MethodGet, "/api/v1/agents/bob", "", true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = do(t, srv, http.MethodGet, "/api/v1/agents?limit=10", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["total"])
}

func TestServer_BadRequests(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, srv, http.MethodPost, "/api/v1/agents", `{not json`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodPost, "/api/v1/proposals", `{"proposer":"alice","proposal_type":"update_everything"}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodPost, "/api/v1/agents/bob/slash", `{"slasher":"alice","evidence_hash":"beef"}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := do(t, srv, http.MethodGet, "/api/v1/nowhere", "", true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", body["code"])
}

func TestServer_Commitment(t *testing.T) {
	srv := newTestServer(t)
	resp, body := do(t, srv, http.MethodPost, "/api/v1/commitments", `{"score":700,"nonce":1}`, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["commitment"], 64)
}
