package http

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"studentperf/artifact"
	"studentperf/inference"
	"studentperf/ml"
	"studentperf/student"
)

//go:embed templates static
var assets embed.FS

var errInvalidChoice = errors.New("value is not one of the offered options")

// BundleSource hands out the current artifact snapshot.
type BundleSource interface {
	Current() (*artifact.Bundle, error)
	Path() string
}

// API holds what the handlers need. The bundle itself is never stored here:
// every request takes a snapshot from the source and passes it on.
type API struct {
	source   BundleSource
	adapter  *inference.Adapter
	logger   *zap.Logger
	pages    *template.Template
	upgrader websocket.Upgrader
}

func NewAPI(source BundleSource, adapter *inference.Adapter, logger *zap.Logger) (*API, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pages, err := template.New("").Funcs(template.FuncMap{
		"pct": func(f float64) string { return fmt.Sprintf("%.0f%%", f*100) },
	}).ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &API{
		source:  source,
		adapter: adapter,
		logger:  logger.Named("http"),
		pages:   pages,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}, nil
}

// checkChoices rejects categorical values the dropdowns would not offer.
func checkChoices(bundle *artifact.Bundle, record student.Record) error {
	for name, value := range record.Categorical() {
		found := false
		for _, class := range bundle.Classes(name) {
			if class == value {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%s: %w: %q", name, errInvalidChoice, value)
		}
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, artifact.ErrNotFound), errors.Is(err, artifact.ErrInvalid):
		return http.StatusServiceUnavailable
	case errors.Is(err, student.ErrOutOfRange),
		errors.Is(err, student.ErrStep),
		errors.Is(err, student.ErrMissing),
		errors.Is(err, student.ErrNotNumber),
		errors.Is(err, errInvalidChoice),
		errors.Is(err, ml.ErrUnknownCategory):
		return http.StatusBadRequest
	default:
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusInternalServerError
	}
}

// artifactMessage is the text shown instead of the form when no bundle is
// available.
func artifactMessage(path string, err error) string {
	if errors.Is(err, artifact.ErrNotFound) {
		return fmt.Sprintf("File model '%s' tidak ditemukan. Harap jalankan script pembuatan model terlebih dahulu.", path)
	}
	return fmt.Sprintf("File model '%s' tidak dapat dimuat: %v", path, err)
}
