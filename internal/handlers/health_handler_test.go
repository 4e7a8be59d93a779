package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"task-manager-api/testutil"
)

func TestHealthCheck(t *testing.T) {
	env := testutil.SetupTestRouter(t)

	w := testutil.DoJSON(t, env.Router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"status":"ok","database":"connected"}`, w.Body.String())

	env.PingErr = errors.New("dial tcp 127.0.0.1:3306: connect: connection refused")
	w = testutil.DoJSON(t, env.Router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"database connection failed"}`, w.Body.String())
}
