package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentperf/artifact"
	"studentperf/inference"
	"studentperf/ml"
	"studentperf/testsupport"
)

type countingHistory struct {
	mu    sync.Mutex
	saved []inference.Result
}

func (h *countingHistory) Save(ctx context.Context, requestID string, result inference.Result) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.saved = append(h.saved, result)
	return nil
}

func (h *countingHistory) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.saved)
}

type testEnv struct {
	api     *API
	mux     *http.ServeMux
	history *countingHistory
	store   *artifact.Store
}

func newTestEnv(t *testing.T, withArtifact bool) *testEnv {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "student_performance_model.json")
	if withArtifact {
		path = testsupport.WriteBundle(t, dir, nil)
	}
	store := artifact.NewStore(path, ml.LoadOptions{}, nil)

	history := &countingHistory{}
	adapter, err := inference.New(8, inference.WithHistory(history))
	require.NoError(t, err)
	api, err := NewAPI(store, adapter, nil)
	require.NoError(t, err)

	mux := http.NewServeMux()
	RegisterHandlers(mux, api)
	RegisterPredictHandlers(mux, api)
	return &testEnv{api: api, mux: mux, history: history, store: store}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.mux.ServeHTTP(rr, req)
	return rr
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
	assert.NotEmpty(t, payload["artifact"].(map[string]interface{})["checksum"])
}

func TestHealthHandlerWithoutArtifact(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, "degraded", payload["status"])
}

func TestSchemaHandler(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/api/schema", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var payload struct {
		Categorical []struct {
			Name    string   `json:"name"`
			Options []string `json:"options"`
		} `json:"categorical"`
		Grades []struct {
			Name    string `json:"name"`
			Min     string `json:"min"`
			Max     string `json:"max"`
			Step    string `json:"step"`
			Default string `json:"default"`
		} `json:"grades"`
		FeatureNames []string `json:"feature_names"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	require.Len(t, payload.Categorical, 5)
	assert.Equal(t, "jenis_kelamin", payload.Categorical[0].Name)
	assert.Equal(t, []string{"female", "male"}, payload.Categorical[0].Options)
	require.Len(t, payload.Grades, 3)
	assert.Equal(t, "0.00", payload.Grades[0].Min)
	assert.Equal(t, "4.00", payload.Grades[0].Max)
	assert.Equal(t, "0.01", payload.Grades[0].Step)
	assert.Equal(t, "3.00", payload.Grades[0].Default)
	assert.Equal(t, testsupport.FeatureOrder, payload.FeatureNames)
}

func TestSchemaHandlerWithoutArtifact(t *testing.T) {
	env := newTestEnv(t, false)
	rr := env.do(httptest.NewRequest(http.MethodGet, "/api/schema", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestStaticAssets(t *testing.T) {
	env := newTestEnv(t, true)
	rr := env.do(httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/api/ws/predict")

	rr = env.do(httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	for _, rule := range []string{".tier-high { border-color: #28a745; }", ".tier-medium { border-color: #ffc107; }", ".tier-low { border-color: #dc3545; }"} {
		assert.Contains(t, rr.Body.String(), rule)
	}
}
