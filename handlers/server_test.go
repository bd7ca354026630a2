package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xp-ledger/logger"
	"xp-ledger/services"
	"xp-ledger/store"
)

const testToken = "gateway-secret"

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	svc := services.NewProgressionService(store.NewUnitOfWork(store.NewMemoryStore()), logger.NewNop())
	return NewServer(svc, logger.NewNop(), ServerConfig{
		ServiceToken:   testToken,
		AllowedOrigins: []string{"http://localhost:3000"},
	})
}

type call struct {
	method string
	path   string
	body   interface{}
	user   string
	roles  string
	token  string
}

func do(t *testing.T, app *fiber.App, c call) (int, map[string]interface{}) {
	t.Helper()
	var body io.Reader
	if c.body != nil {
		b, err := json.Marshal(c.body)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := c.token
	if token == "" {
		token = testToken
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if c.user != "" {
		req.Header.Set("X-User-ID", c.user)
	}
	if c.roles != "" {
		req.Header.Set("X-User-Roles", c.roles)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestHealthzSkipsGateway(t *testing.T) {
	app := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGatewayAndUserContext(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/s/profile", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	status, _ := do(t, app, call{method: http.MethodGet, path: "/s/profile", user: "alice", token: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, app, call{method: http.MethodGet, path: "/s/profile"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestProfileAndGrant(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, call{method: http.MethodGet, path: "/s/profile", user: "alice"})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["level"])
	assert.Equal(t, "E", body["rank"])

	status, body = do(t, app, call{method: http.MethodPost, path: "/s/xp", user: "alice", body: map[string]interface{}{"amount": 0}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_amount", body["error"])

	status, body = do(t, app, call{method: http.MethodPost, path: "/s/xp", user: "alice", body: map[string]interface{}{"amount": 400, "type": "manual"}})
	require.Equal(t, http.StatusCreated, status)
	logID, _ := body["id"].(string)
	require.NotEmpty(t, logID)

	_, body = do(t, app, call{method: http.MethodGet, path: "/s/profile", user: "alice"})
	assert.EqualValues(t, 400, body["total_xp"])
	assert.EqualValues(t, 2, body["level"])

	status, _ = do(t, app, call{method: http.MethodDelete, path: "/s/xp/" + logID, user: "bob"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, call{method: http.MethodDelete, path: "/s/xp/" + logID, user: "alice"})
	assert.Equal(t, http.StatusNoContent, status)
}

func TestGoalAndShopFlow(t *testing.T) {
	app := newTestApp(t)
	do(t, app, call{method: http.MethodPost, path: "/s/profile", user: "alice"})

	status, body := do(t, app, call{method: http.MethodPost, path: "/s/goals", user: "alice",
		body: map[string]interface{}{"title": "Read 100 pages", "target_value": 100, "xp_reward": 150}})
	require.Equal(t, http.StatusCreated, status)
	goalID := body["id"].(string)

	do(t, app, call{method: http.MethodPost, path: "/s/goals/" + goalID + "/progress", user: "alice", body: map[string]int{"increment": 80}})
	status, body = do(t, app, call{method: http.MethodPost, path: "/s/goals/" + goalID + "/progress", user: "alice", body: map[string]int{"increment": 30}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["completed"])

	status, body = do(t, app, call{method: http.MethodPost, path: "/s/goals/" + goalID + "/progress", user: "alice", body: map[string]int{"increment": 1}})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "goal_not_active", body["error"])

	status, body = do(t, app, call{method: http.MethodPost, path: "/s/shop/items", user: "alice",
		body: map[string]interface{}{"name": "Headphones", "cost": 200}})
	require.Equal(t, http.StatusCreated, status)
	itemID := body["id"].(string)

	status, body = do(t, app, call{method: http.MethodPost, path: "/s/shop/items/" + itemID + "/purchase", user: "alice"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "insufficient_xp", body["error"])

	do(t, app, call{method: http.MethodPost, path: "/s/xp", user: "alice", body: map[string]interface{}{"amount": 100}})
	status, body = do(t, app, call{method: http.MethodPost, path: "/s/shop/items/" + itemID + "/purchase", user: "alice"})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 50, body["total_xp"])
}

func TestHabitRoutes(t *testing.T) {
	app := newTestApp(t)
	do(t, app, call{method: http.MethodPost, path: "/s/profile", user: "alice"})

	status, body := do(t, app, call{method: http.MethodPost, path: "/s/habits", user: "alice",
		body: map[string]interface{}{"name": "Stretch", "xp_reward": 10}})
	require.Equal(t, http.StatusCreated, status)
	habitID := body["id"].(string)

	status, body = do(t, app, call{method: http.MethodPost, path: "/s/habits/" + habitID + "/complete", user: "alice",
		body: map[string]string{"date": "2026-03-01"}})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 15, body["xp_awarded"])
	assert.EqualValues(t, 1, body["streak"])

	status, body = do(t, app, call{method: http.MethodDelete, path: "/s/habits/" + habitID + "/completions/2026-03-01", user: "alice"})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["streak"])

	status, body = do(t, app, call{method: http.MethodPost, path: "/s/habits/missing/complete", user: "alice"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "habit_not_found", body["error"])
}

func TestAdminAuditRequiresRole(t *testing.T) {
	app := newTestApp(t)

	status, _ := do(t, app, call{method: http.MethodGet, path: "/s/admin/audit", user: "alice"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := do(t, app, call{method: http.MethodGet, path: "/s/admin/audit", user: "ops", roles: "viewer, admin"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])
}
