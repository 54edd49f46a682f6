package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"studentperf/artifact"
	"studentperf/inference"
	"studentperf/student"
)

func RegisterPredictHandlers(mux *http.ServeMux, api *API) {
	mux.HandleFunc("GET /{$}", api.handleIndex)
	mux.HandleFunc("POST /predict", api.handleFormPredict)
	mux.HandleFunc("POST /api/predict", api.handleAPIPredict)
	mux.HandleFunc("GET /api/ws/predict", api.handleWebSocket)
}

type option struct {
	Value    string
	Title    string
	Selected bool
}

type selectField struct {
	student.Field
	Options []option
}

type gradeField struct {
	student.Field
	Value string
	Min   string
	Max   string
	Step  string
}

// resultView is the "Hasil Prediksi" panel and its details expander.
type resultView struct {
	inference.Result
	RawJSON string
}

type page struct {
	ArtifactError string
	InputError    string
	Selects       []selectField
	Grades        []gradeField
	Result        *resultView
}

func (api *API) handleIndex(w http.ResponseWriter, r *http.Request) {
	bundle, err := api.source.Current()
	if err != nil {
		api.renderPage(w, http.StatusServiceUnavailable, page{ArtifactError: artifactMessage(api.source.Path(), err)})
		return
	}
	api.renderPage(w, http.StatusOK, formPage(bundle, student.DefaultRecord(bundle.Classes)))
}

func (api *API) handleFormPredict(w http.ResponseWriter, r *http.Request) {
	bundle, err := api.source.Current()
	if err != nil {
		api.renderPage(w, http.StatusServiceUnavailable, page{ArtifactError: artifactMessage(api.source.Path(), err)})
		return
	}

	record, err := parseForm(r, bundle)
	if err != nil {
		p := formPage(bundle, record)
		p.InputError = err.Error()
		api.renderPage(w, statusFor(err), p)
		return
	}

	result, err := api.adapter.Predict(r.Context(), bundle, record)
	p := formPage(bundle, record)
	if err != nil {
		api.logger.Error("prediction failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		p.InputError = err.Error()
		api.renderPage(w, statusFor(err), p)
		return
	}
	p.Result = newResultView(result)
	api.renderPage(w, http.StatusOK, p)
}

type predictResponse struct {
	inference.Result
	RequestID string `json:"request_id"`
}

func (api *API) handleAPIPredict(w http.ResponseWriter, r *http.Request) {
	bundle, err := api.source.Current()
	if err != nil {
		writeError(w, statusFor(err), artifactMessage(api.source.Path(), err))
		return
	}

	body := make(map[string]any)
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&body); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		writeError(w, status, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	record := student.DefaultRecord(bundle.Classes)
	if err := setFields(&record, bundle, jsonField(body)); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	result, err := api.adapter.Predict(r.Context(), bundle, record)
	if err != nil {
		api.logger.Error("prediction failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, predictResponse{Result: result, RequestID: GetRequestID(r.Context())})
}

// parseForm reads the posted form. The returned record carries whatever
// was valid so the form can be re-rendered with the user's choices.
func parseForm(r *http.Request, bundle *artifact.Bundle) (student.Record, error) {
	record := student.DefaultRecord(bundle.Classes)
	if err := r.ParseForm(); err != nil {
		return record, err
	}
	return record, setFields(&record, bundle, r.PostForm.Get)
}

func setFields(record *student.Record, bundle *artifact.Bundle, get func(string) string) error {
	var firstErr error
	for _, name := range student.Columns() {
		if err := record.Set(name, get(name)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return firstErr
	}
	return validateRecord(bundle, *record)
}

// jsonField reads a column from a decoded JSON body; grade points may be
// numbers or strings.
func jsonField(body map[string]any) func(string) string {
	return func(name string) string {
		switch v := body[name].(type) {
		case string:
			return v
		case json.Number:
			return v.String()
		default:
			return ""
		}
	}
}

func validateRecord(bundle *artifact.Bundle, record student.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}
	return checkChoices(bundle, record)
}

func formPage(bundle *artifact.Bundle, record student.Record) page {
	categorical := record.Categorical()
	selects := make([]selectField, len(student.CategoricalFields))
	for i, f := range student.CategoricalFields {
		classes := bundle.Classes(f.Name)
		options := make([]option, len(classes))
		for j, class := range classes {
			options[j] = option{Value: class, Title: student.DisplayName(class), Selected: class == categorical[f.Name]}
		}
		selects[i] = selectField{Field: f, Options: options}
	}

	values := record.Grades()
	grades := make([]gradeField, len(student.GradeFields))
	for i, f := range student.GradeFields {
		grades[i] = gradeField{
			Field: f,
			Value: values[f.Name].StringFixed(2),
			Min:   student.MinGrade.StringFixed(2),
			Max:   student.MaxGrade.StringFixed(2),
			Step:  student.GradeStep.StringFixed(2),
		}
	}
	return page{Selects: selects, Grades: grades}
}

func newResultView(result inference.Result) *resultView {
	raw, err := json.MarshalIndent(result.Raw, "", "  ")
	if err != nil {
		raw = []byte(fmt.Sprintf("%v", result.Raw))
	}
	return &resultView{Result: result, RawJSON: string(raw)}
}

func (api *API) renderPage(w http.ResponseWriter, status int, p page) {
	var buf bytes.Buffer
	if err := api.pages.ExecuteTemplate(&buf, "index.html", p); err != nil {
		api.logger.Error("failed to render page", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
