package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formValues(grade string) url.Values {
	return url.Values{
		"jenis_kelamin":       {"female"},
		"ras_etnis":           {"group A"},
		"pendidikan_orangtua": {"associate's degree"},
		"makan_siang":         {"free/reduced"},
		"kursus_persiapan":    {"completed"},
		"ip_matematika":       {grade},
		"ip_membaca":          {grade},
		"ip_menulis":          {grade},
	}
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestIndexRendersForm(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()

	assert.Equal(t, 5, strings.Count(body, "<select"))
	assert.Equal(t, 3, strings.Count(body, `type="number"`))
	assert.Equal(t, 3, strings.Count(body, `min="0.00" max="4.00" step="0.01" value="3.00"`))
	assert.Contains(t, body, `<option value="group E">Group E</option>`)
	assert.Contains(t, body, `<option value="female" selected>Female</option>`)
	assert.Contains(t, body, "🚀 Prediksi Performa")
	assert.NotContains(t, body, "Hasil Prediksi")
}

func TestIndexWithoutArtifact(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "tidak ditemukan")
	assert.NotContains(t, body, "<form")
	assert.NotContains(t, body, "<select")
	assert.NotContains(t, body, "<input")
	assert.NotContains(t, body, "<button")
}

func TestFormPredictWithoutArtifact(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.do(postForm(formValues("3.00")))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.NotContains(t, rr.Body.String(), "<form")
	assert.Zero(t, env.history.count(), "no inference without an artifact")
}

func TestFormPredictFirstCategories(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(postForm(formValues("3.00")))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()

	assert.Contains(t, body, "Hasil Prediksi")
	assert.Contains(t, body, "Klaster: <strong>Sedang</strong>")
	assert.Contains(t, body, "tier-medium")
	assert.Contains(t, body, "Siswa ini memiliki performa akademik yang cukup baik.")
	assert.Contains(t, body, "Lihat Detail Input yang Diproses")
	assert.Contains(t, body, "<th>ip_matematika</th><th>jenis_kelamin</th>")
	assert.Contains(t, body, "<td>3.00</td><td>0</td><td>3.00</td>")
	assert.Equal(t, 1, env.history.count())
}

func TestFormPredictTopGrades(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(postForm(formValues("4.00")))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Klaster: <strong>Tinggi</strong>")
	assert.Contains(t, rr.Body.String(), "tier-high")
}

func TestFormPredictLowestGrades(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(postForm(formValues("0.00")))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Klaster: <strong>Rendah</strong>")
	assert.Contains(t, rr.Body.String(), "bimbingan tambahan")
}

func TestFormPredictRejectsInvalidInput(t *testing.T) {
	cases := map[string]url.Values{
		"above range":  formValues("4.01"),
		"below range":  formValues("-0.01"),
		"too precise":  formValues("3.001"),
		"exponent":     formValues("1e30000000"),
		"exponent one": formValues("4e0"),
		"not a number": func() url.Values {
			v := formValues("3.00")
			v.Set("ip_membaca", "tiga")
			return v
		}(),
		"unknown category": func() url.Values {
			v := formValues("3.00")
			v.Set("ras_etnis", "group Z")
			return v
		}(),
		"missing category": func() url.Values {
			v := formValues("3.00")
			v.Del("makan_siang")
			return v
		}(),
	}

	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t, true)
			rr := env.do(postForm(values))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Less(t, rr.Body.Len(), 64<<10)
			assert.Contains(t, rr.Body.String(), "alert-error")
			assert.NotContains(t, rr.Body.String(), "Hasil Prediksi")
			assert.Zero(t, env.history.count())
		})
	}
}

func TestFormPredictKeepsChoices(t *testing.T) {
	env := newTestEnv(t, true)
	values := formValues("2.50")
	values.Set("ras_etnis", "group D")

	rr := env.do(postForm(values))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `<option value="group D" selected>`)
	assert.Contains(t, rr.Body.String(), `value="2.50"`)
}

func TestAPIPredict(t *testing.T) {
	env := newTestEnv(t, true)
	body := `{"jenis_kelamin":"male","ras_etnis":"group C","pendidikan_orangtua":"high school",
		"makan_siang":"standard","kursus_persiapan":"none","ip_matematika":4,"ip_membaca":"4.00","ip_menulis":4.0}`

	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := env.do(req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var payload struct {
		ClusterID int    `json:"cluster_id"`
		Label     string `json:"label"`
		Known     bool   `json:"known"`
		Tier      string `json:"tier"`
		Encoded   struct {
			Columns []string  `json:"columns"`
			Values  []float64 `json:"values"`
		} `json:"encoded"`
		Raw map[string]any `json:"raw_input"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, 2, payload.ClusterID)
	assert.Equal(t, "Tinggi", payload.Label)
	assert.True(t, payload.Known)
	assert.Equal(t, "high", payload.Tier)
	assert.Equal(t, []float64{4, 1, 4, 2, 2, 4, 1, 1}, payload.Encoded.Values)
	assert.Equal(t, "group C", payload.Raw["ras_etnis"])
}

func TestAPIPredictErrors(t *testing.T) {
	env := newTestEnv(t, true)

	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader("{"))
	assert.Equal(t, http.StatusBadRequest, env.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{"jenis_kelamin":"female"}`))
	assert.Equal(t, http.StatusBadRequest, env.do(req).Code)

	body := `{"jenis_kelamin":"female","ras_etnis":"group A","pendidikan_orangtua":"high school",
		"makan_siang":"standard","kursus_persiapan":"none","ip_matematika":1e30000000,"ip_membaca":3,"ip_menulis":3}`
	req = httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
	rr := env.do(req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "not a number")
	assert.Zero(t, env.history.count())

	missing := newTestEnv(t, false)
	req = httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{}`))
	assert.Equal(t, http.StatusServiceUnavailable, missing.do(req).Code)
}
