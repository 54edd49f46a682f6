package http

import (
	"encoding/json"
	"net/http"

	"studentperf/artifact"
	"studentperf/student"
)

func RegisterHandlers(mux *http.ServeMux, api *API) {
	mux.HandleFunc("GET /api/health", api.handleHealth)
	mux.HandleFunc("GET /api/schema", api.handleSchema)
	mux.Handle("GET /static/", http.FileServerFS(assets))
}

func (api *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{"status": "ok"}
	bundle, err := api.source.Current()
	if err != nil {
		response["status"] = "degraded"
		response["artifact"] = map[string]string{"path": api.source.Path(), "error": err.Error()}
	} else {
		response["artifact"] = map[string]interface{}{
			"path":      bundle.Path,
			"checksum":  bundle.Checksum,
			"loaded_at": bundle.LoadedAt,
		}
	}
	writeJSON(w, http.StatusOK, response)
}

type schemaField struct {
	student.Field
	Options []string `json:"options"`
}

type gradeSchema struct {
	student.Field
	Min     string `json:"min"`
	Max     string `json:"max"`
	Step    string `json:"step"`
	Default string `json:"default"`
}

func (api *API) handleSchema(w http.ResponseWriter, r *http.Request) {
	bundle, err := api.source.Current()
	if err != nil {
		writeError(w, statusFor(err), artifactMessage(api.source.Path(), err))
		return
	}

	categorical := make([]schemaField, len(student.CategoricalFields))
	for i, f := range student.CategoricalFields {
		categorical[i] = schemaField{Field: f, Options: bundle.Classes(f.Name)}
	}
	grades := make([]gradeSchema, len(student.GradeFields))
	for i, f := range student.GradeFields {
		grades[i] = gradeSchema{
			Field:   f,
			Min:     student.MinGrade.StringFixed(2),
			Max:     student.MaxGrade.StringFixed(2),
			Step:    student.GradeStep.StringFixed(2),
			Default: student.DefaultGrade.StringFixed(2),
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categorical":   categorical,
		"grades":        grades,
		"feature_names": bundle.FeatureNames,
		"clusters":      bundle.Labels(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

var _ BundleSource = (*artifact.Store)(nil)
