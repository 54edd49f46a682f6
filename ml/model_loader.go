package ml

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ModelSpec is the "model" section of an artifact. Trees are either inline
// or stored in a separate node-array file referenced by Path.
type ModelSpec struct {
	Type        string       `json:"type"`
	Classes     []int        `json:"classes,omitempty"`
	Nodes       []TreeNode   `json:"nodes,omitempty"`
	Trees       [][]TreeNode `json:"trees,omitempty"`
	Path        string       `json:"path,omitempty"`
	Input       string       `json:"input,omitempty"`
	LabelOutput string       `json:"label_output,omitempty"`
	ProbOutput  string       `json:"prob_output,omitempty"`
}

type LoadOptions struct {
	// BaseDir resolves relative model paths, normally the artifact's directory.
	BaseDir         string
	ONNXLibraryPath string
}

func LoadClassifier(spec ModelSpec, opts LoadOptions) (Classifier, error) {
	switch spec.Type {
	case "decision_tree":
		if spec.Path != "" {
			model := &DecisionTree{classes: append([]int(nil), spec.Classes...)}
			if err := model.Load(resolvePath(opts.BaseDir, spec.Path)); err != nil {
				return nil, err
			}
			return model, nil
		}
		return NewDecisionTree(spec.Nodes, spec.Classes)
	case "random_forest":
		trees := make([]*DecisionTree, 0, len(spec.Trees))
		for i, nodes := range spec.Trees {
			tree, err := NewDecisionTree(nodes, spec.Classes)
			if err != nil {
				return nil, fmt.Errorf("tree %d: %w", i, err)
			}
			trees = append(trees, tree)
		}
		return NewRandomForest(trees, spec.Classes)
	case "onnx":
		return LoadONNXClassifier(ONNXConfig{
			Path:              resolvePath(opts.BaseDir, spec.Path),
			InputName:         spec.Input,
			LabelOutput:       spec.LabelOutput,
			ProbOutput:        spec.ProbOutput,
			Classes:           spec.Classes,
			SharedLibraryPath: opts.ONNXLibraryPath,
		})
	case "":
		return nil, errors.New("model type is required")
	default:
		return nil, fmt.Errorf("unsupported model type %q", spec.Type)
	}
}

func resolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
