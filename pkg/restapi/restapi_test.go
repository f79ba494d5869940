package restapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/code-sigs/go-disco/pkg/discovery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestServer(t *testing.T) (*Server, *discovery.Discovery, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	d, err := discovery.New(nil, &discovery.Options{Backend: discovery.DefaultBackendName})
	assert.NoError(t, err)
	server := New(d)
	return server, d, server.Engine(false)
}

func TestPublishAndGetRecords(t *testing.T) {
	_, _, engine := newTestServer(t)

	body, _ := json.Marshal(discovery.Record{Name: "orders", Type: "http-endpoint"})
	req, _ := http.NewRequest("POST", "/discovery/records", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	t.Logf("Response body: %s", w.Body.String())
	assert.Equal(t, http.StatusCreated, w.Code)

	var created StandardResponse[*discovery.Record]
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, int32(0), created.Code)
	assert.NotEmpty(t, created.Data.Registration)
	assert.Equal(t, discovery.StatusUp, created.Data.Status)

	req, _ = http.NewRequest("GET", "/discovery/records?name=orders", nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var listed StandardResponse[[]*discovery.Record]
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed.Data, 1)
	assert.Equal(t, created.Data.Registration, listed.Data[0].Registration)
}

func TestGetRecordByRegistration(t *testing.T) {
	_, d, engine := newTestServer(t)

	stored, err := d.Publish(t.Context(), &discovery.Record{
		Name:   "paused",
		Status: discovery.StatusOutOfService,
	})
	assert.NoError(t, err)

	// 按 registration 查询放行非 UP 记录
	req, _ := http.NewRequest("GET", "/discovery/records/"+stored.Registration, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp StandardResponse[*discovery.Record]
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, discovery.StatusOutOfService, resp.Data.Status)

	req, _ = http.NewRequest("GET", "/discovery/records/no-such-id", nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateRecord(t *testing.T) {
	_, d, engine := newTestServer(t)

	stored, err := d.Publish(t.Context(), &discovery.Record{Name: "orders"})
	assert.NoError(t, err)

	stored.Status = discovery.StatusOutOfService
	body, _ := json.Marshal(stored)
	req, _ := http.NewRequest("PUT", "/discovery/records/"+stored.Registration, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// 路径与 body 的 registration 不一致
	req, _ = http.NewRequest("PUT", "/discovery/records/other-id", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnpublishRecord(t *testing.T) {
	_, d, engine := newTestServer(t)

	stored, err := d.Publish(t.Context(), &discovery.Record{Name: "orders"})
	assert.NoError(t, err)

	req, _ := http.NewRequest("DELETE", "/discovery/records/"+stored.Registration, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req, _ = http.NewRequest("DELETE", "/discovery/records/"+stored.Registration, nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
