// Package testsupport writes artifact fixtures for tests.
package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// FeatureOrder deliberately differs from the form's column order.
var FeatureOrder = []string{
	"ip_matematika", "jenis_kelamin", "ip_membaca", "ras_etnis",
	"pendidikan_orangtua", "ip_menulis", "makan_siang", "kursus_persiapan",
}

// Fixture is a two-tree forest over FeatureOrder:
//
//	all grade points 1.00 -> 0 (Rendah)
//	all grade points 3.00 -> 1 (Sedang)
//	all grade points 4.00 -> 2 (Tinggi)
//
// Categorical values do not influence the outcome.
const Fixture = `{
  "model": {
    "type": "random_forest",
    "classes": [0, 1, 2],
    "trees": [
      [
        {"feature_idx": 0, "threshold": 2.0, "left_child": 1, "right_child": 2},
        {"feature_idx": -1, "left_child": -1, "right_child": -1, "class_label": 0, "is_leaf": true, "value": [9, 1, 0]},
        {"feature_idx": 5, "threshold": 3.5, "left_child": 3, "right_child": 4},
        {"feature_idx": -1, "left_child": -1, "right_child": -1, "class_label": 1, "is_leaf": true, "value": [1, 8, 1]},
        {"feature_idx": -1, "left_child": -1, "right_child": -1, "class_label": 2, "is_leaf": true, "value": [0, 2, 8]}
      ],
      [
        {"feature_idx": 2, "threshold": 2.5, "left_child": 1, "right_child": 2},
        {"feature_idx": -1, "left_child": -1, "right_child": -1, "class_label": 0, "is_leaf": true, "value": [7, 3, 0]},
        {"feature_idx": 2, "threshold": 3.5, "left_child": 3, "right_child": 4},
        {"feature_idx": -1, "left_child": -1, "right_child": -1, "class_label": 1, "is_leaf": true, "value": [0, 6, 4]},
        {"feature_idx": -1, "left_child": -1, "right_child": -1, "class_label": 2, "is_leaf": true, "value": [0, 1, 9]}
      ]
    ]
  },
  "encoders": {
    "jenis_kelamin": {"classes": ["female", "male"]},
    "ras_etnis": {"classes": ["group A", "group B", "group C", "group D", "group E"]},
    "pendidikan_orangtua": {"classes": ["associate's degree", "bachelor's degree", "high school", "master's degree", "some college", "some high school"]},
    "makan_siang": {"classes": ["free/reduced", "standard"]},
    "kursus_persiapan": {"classes": ["completed", "none"]}
  },
  "cluster_labels": {"0": "Rendah", "1": "Sedang", "2": "Tinggi"},
  "feature_names": ["ip_matematika", "jenis_kelamin", "ip_membaca", "ras_etnis", "pendidikan_orangtua", "ip_menulis", "makan_siang", "kursus_persiapan"]
}`

// WriteBundle writes Fixture into dir, after edit has had a chance to
// change the decoded document, and returns the file path.
func WriteBundle(t testing.TB, dir string, edit func(doc map[string]any)) string {
	t.Helper()

	payload := []byte(Fixture)
	if edit != nil {
		var doc map[string]any
		if err := json.Unmarshal(payload, &doc); err != nil {
			t.Fatalf("invalid fixture: %v", err)
		}
		edit(doc)
		var err error
		if payload, err = json.Marshal(doc); err != nil {
			t.Fatalf("failed to encode fixture: %v", err)
		}
	}

	path := filepath.Join(dir, "student_performance_model.json")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}
