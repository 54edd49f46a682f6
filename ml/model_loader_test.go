package ml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClassifierDecisionTree(t *testing.T) {
	model, err := LoadClassifier(ModelSpec{Type: "decision_tree", Classes: []int{0, 1, 2}, Nodes: stumpNodes()}, LoadOptions{})
	require.NoError(t, err)

	label, _, err := model.Predict([]float64{0, 4})
	require.NoError(t, err)
	assert.Equal(t, 2, label)
	assert.Equal(t, []int{0, 1, 2}, model.Classes())
}

func TestLoadClassifierDecisionTreeFromRelativePath(t *testing.T) {
	dir := t.TempDir()
	payload := `[{"feature_idx":-1,"left_child":-1,"right_child":-1,"class_label":1,"is_leaf":true}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tree.json"), []byte(payload), 0o600))

	model, err := LoadClassifier(ModelSpec{Type: "decision_tree", Path: "tree.json"}, LoadOptions{BaseDir: dir})
	require.NoError(t, err)

	label, _, err := model.Predict(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, label)
}

func TestLoadClassifierRandomForest(t *testing.T) {
	spec := ModelSpec{
		Type:    "random_forest",
		Classes: []int{0, 1, 2},
		Trees:   [][]TreeNode{stumpNodes(), stumpNodes()},
	}
	model, err := LoadClassifier(spec, LoadOptions{})
	require.NoError(t, err)

	label, confidence, err := model.Predict([]float64{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 0, label)
	assert.InDelta(t, 0.8, confidence, 1e-9)
}

func TestLoadClassifierErrors(t *testing.T) {
	_, err := LoadClassifier(ModelSpec{}, LoadOptions{})
	assert.Error(t, err)

	_, err = LoadClassifier(ModelSpec{Type: "svm"}, LoadOptions{})
	assert.ErrorContains(t, err, "unsupported model type")

	_, err = LoadClassifier(ModelSpec{Type: "random_forest", Classes: []int{0}, Trees: [][]TreeNode{nil}}, LoadOptions{})
	assert.ErrorIs(t, err, ErrNotTrained)
}

func TestLoadONNXClassifierRequiresPath(t *testing.T) {
	_, err := LoadONNXClassifier(ONNXConfig{})
	assert.Error(t, err)
}
