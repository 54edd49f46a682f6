package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentperf/ml"
	"studentperf/student"
	"studentperf/testsupport"
)

func TestLoad(t *testing.T) {
	path := testsupport.WriteBundle(t, t.TempDir(), nil)

	bundle, err := Load(path, ml.LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, testsupport.FeatureOrder, bundle.FeatureNames)
	assert.Len(t, bundle.Encoders, len(student.CategoricalFields))
	assert.Equal(t, []string{"female", "male"}, bundle.Classes(student.JenisKelamin))
	assert.Nil(t, bundle.Classes("unknown"))
	assert.Equal(t, []int{0, 1, 2}, bundle.Classifier.Classes())
	assert.Len(t, bundle.Checksum, 64)
	assert.Positive(t, bundle.Size)

	label, ok := bundle.Label(2)
	assert.True(t, ok)
	assert.Equal(t, "Tinggi", label)
	_, ok = bundle.Label(7)
	assert.False(t, ok)

	assert.Equal(t, []ClusterLabel{{0, "Rendah"}, {1, "Sedang"}, {2, "Tinggi"}}, bundle.Labels())
	assert.NoError(t, bundle.Close())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "student_performance_model.json"), ml.LoadOptions{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadRejectsIncompleteBundles(t *testing.T) {
	cases := map[string]func(doc map[string]any){
		"missing model":          func(doc map[string]any) { delete(doc, "model") },
		"missing encoders":       func(doc map[string]any) { delete(doc, "encoders") },
		"missing cluster labels": func(doc map[string]any) { delete(doc, "cluster_labels") },
		"missing feature names":  func(doc map[string]any) { delete(doc, "feature_names") },
		"missing one encoder": func(doc map[string]any) {
			delete(doc["encoders"].(map[string]any), student.MakanSiang)
		},
		"encoder for non-categorical": func(doc map[string]any) {
			doc["encoders"].(map[string]any)[student.IPMenulis] = map[string]any{"classes": []string{"x"}}
		},
		"unknown feature": func(doc map[string]any) {
			doc["feature_names"] = append(doc["feature_names"].([]any), "umur")
		},
		"duplicate feature": func(doc map[string]any) {
			doc["feature_names"] = append(doc["feature_names"].([]any), student.IPMembaca)
		},
		"duplicate class": func(doc map[string]any) {
			doc["encoders"].(map[string]any)[student.JenisKelamin] = map[string]any{"classes": []string{"male", "male"}}
		},
		"unknown model type": func(doc map[string]any) {
			doc["model"].(map[string]any)["type"] = "svm"
		},
		"unknown key": func(doc map[string]any) { doc["scaler"] = map[string]any{} },
	}

	for name, edit := range cases {
		t.Run(name, func(t *testing.T) {
			path := testsupport.WriteBundle(t, t.TempDir(), edit)
			_, err := Load(path, ml.LoadOptions{})
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "student_performance_model.json")
	require.NoError(t, os.WriteFile(path, []byte("\x80\x04\x95pickle"), 0o600))

	_, err := Load(path, ml.LoadOptions{})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadAllowsFeatureSubset(t *testing.T) {
	path := testsupport.WriteBundle(t, t.TempDir(), func(doc map[string]any) {
		doc["feature_names"] = []string{student.IPMatematika, student.IPMembaca}
		doc["model"] = map[string]any{
			"type":    "decision_tree",
			"classes": []int{0},
			"nodes":   []map[string]any{{"feature_idx": -1, "left_child": -1, "right_child": -1, "class_label": 0, "is_leaf": true}},
		}
	})

	bundle, err := Load(path, ml.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{student.IPMatematika, student.IPMembaca}, bundle.FeatureNames)
}
