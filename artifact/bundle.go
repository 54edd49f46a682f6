// Package artifact loads the exported model bundle: classifier, categorical
// encoders, cluster labels and the training-time feature order.
package artifact

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"studentperf/ml"
	"studentperf/student"
)

var (
	ErrNotFound = errors.New("artifact not found")
	ErrInvalid  = errors.New("invalid artifact")
)

// Bundle is immutable once loaded. Handlers receive it explicitly and must
// not modify any of its maps or slices.
type Bundle struct {
	Classifier    ml.Classifier
	Encoders      map[string]ml.CategoryEncoder
	ClusterLabels map[int]string
	FeatureNames  []string

	Path     string
	Checksum string
	Size     int64
	LoadedAt time.Time
}

type bundleFile struct {
	Model         *ml.ModelSpec          `json:"model"`
	Encoders      map[string]encoderFile `json:"encoders"`
	ClusterLabels map[int]string         `json:"cluster_labels"`
	FeatureNames  []string               `json:"feature_names"`
}

type encoderFile struct {
	Classes []string `json:"classes"`
}

// Load reads the whole file, closes it, and only then decodes and validates.
// A field that is missing or inconsistent fails here rather than at
// prediction time.
func Load(path string, opts ml.LoadOptions) (*Bundle, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	payload, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw bundleFile
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	if err := raw.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}

	encoders := make(map[string]ml.CategoryEncoder, len(raw.Encoders))
	for name, enc := range raw.Encoders {
		encoder, err := ml.NewLabelEncoder(enc.Classes)
		if err != nil {
			return nil, fmt.Errorf("%w: encoder %s: %v", ErrInvalid, name, err)
		}
		encoders[name] = encoder
	}

	if opts.BaseDir == "" {
		opts.BaseDir = filepath.Dir(path)
	}
	classifier, err := ml.LoadClassifier(*raw.Model, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: model: %v", ErrInvalid, err)
	}

	sum := sha256.Sum256(payload)
	return &Bundle{
		Classifier:    classifier,
		Encoders:      encoders,
		ClusterLabels: raw.ClusterLabels,
		FeatureNames:  raw.FeatureNames,
		Path:          path,
		Checksum:      hex.EncodeToString(sum[:]),
		Size:          int64(len(payload)),
		LoadedAt:      time.Now(),
	}, nil
}

func (f *bundleFile) validate() error {
	if f.Model == nil {
		return errors.New("missing model")
	}
	if len(f.Encoders) == 0 {
		return errors.New("missing encoders")
	}
	if len(f.ClusterLabels) == 0 {
		return errors.New("missing cluster_labels")
	}
	if len(f.FeatureNames) == 0 {
		return errors.New("missing feature_names")
	}

	for _, field := range student.CategoricalFields {
		if _, ok := f.Encoders[field.Name]; !ok {
			return fmt.Errorf("no encoder for %s", field.Name)
		}
	}
	for name := range f.Encoders {
		if !student.IsCategorical(name) {
			return fmt.Errorf("encoder for unknown column %s", name)
		}
	}

	seen := make(map[string]bool, len(f.FeatureNames))
	for _, name := range f.FeatureNames {
		if !student.IsColumn(name) {
			return fmt.Errorf("feature %s is not an input column", name)
		}
		if seen[name] {
			return fmt.Errorf("duplicate feature %s", name)
		}
		seen[name] = true
	}
	return nil
}

// Classes returns the category set the encoder for column was fitted on.
func (b *Bundle) Classes(column string) []string {
	enc, ok := b.Encoders[column]
	if !ok {
		return nil
	}
	return enc.Classes()
}

// Label resolves a cluster id; ok is false for ids the mapping lacks.
func (b *Bundle) Label(cluster int) (string, bool) {
	label, ok := b.ClusterLabels[cluster]
	return label, ok
}

// Labels returns the cluster ids in ascending order with their labels.
func (b *Bundle) Labels() []ClusterLabel {
	ids := make([]int, 0, len(b.ClusterLabels))
	for id := range b.ClusterLabels {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	labels := make([]ClusterLabel, len(ids))
	for i, id := range ids {
		labels[i] = ClusterLabel{ID: id, Label: b.ClusterLabels[id]}
	}
	return labels
}

type ClusterLabel struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

func (b *Bundle) Close() error {
	if closer, ok := b.Classifier.(ml.Closer); ok {
		return closer.Close()
	}
	return nil
}
