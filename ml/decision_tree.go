package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

type DecisionTree struct {
	nodes   []TreeNode
	classes []int
}

// TreeNode is one entry of the flattened tree. Value holds the class
// distribution of a leaf, aligned with the tree's classes.
type TreeNode struct {
	FeatureIdx int       `json:"feature_idx"`
	Threshold  float64   `json:"threshold"`
	LeftChild  int       `json:"left_child"`
	RightChild int       `json:"right_child"`
	ClassLabel int       `json:"class_label"`
	IsLeaf     bool      `json:"is_leaf"`
	Value      []float64 `json:"value,omitempty"`
}

func NewDecisionTree(nodes []TreeNode, classes []int) (*DecisionTree, error) {
	dt := &DecisionTree{classes: append([]int(nil), classes...)}
	if err := dt.setNodes(nodes); err != nil {
		return nil, err
	}
	return dt, nil
}

func (dt *DecisionTree) Predict(features []float64) (int, float64, error) {
	leaf, err := dt.leaf(features)
	if err != nil {
		return 0, 0, err
	}
	return leaf.ClassLabel, leafConfidence(leaf, dt.classes), nil
}

func (dt *DecisionTree) Classes() []int {
	if len(dt.classes) > 0 {
		return append([]int(nil), dt.classes...)
	}
	seen := make(map[int]bool)
	classes := make([]int, 0)
	for _, node := range dt.nodes {
		if node.IsLeaf && !seen[node.ClassLabel] {
			seen[node.ClassLabel] = true
			classes = append(classes, node.ClassLabel)
		}
	}
	return classes
}

// Load reads a bare JSON node array, the format trees are exported in.
func (dt *DecisionTree) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var nodes []TreeNode
	if err := json.Unmarshal(payload, &nodes); err != nil {
		return err
	}
	return dt.setNodes(nodes)
}

func (dt *DecisionTree) leaf(features []float64) (TreeNode, error) {
	if len(dt.nodes) == 0 {
		return TreeNode{}, ErrNotTrained
	}
	idx := 0
	// a well formed tree reaches a leaf in fewer steps than it has nodes
	for steps := 0; steps <= len(dt.nodes); steps++ {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return TreeNode{}, fmt.Errorf("%w: %d of %d", ErrFeatureCount, node.FeatureIdx, len(features))
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
	return TreeNode{}, errors.New("invalid tree state")
}

func (dt *DecisionTree) setNodes(nodes []TreeNode) error {
	if len(nodes) == 0 {
		return ErrNotTrained
	}
	for i, node := range nodes {
		if node.IsLeaf {
			if len(node.Value) > 0 && len(dt.classes) > 0 && len(node.Value) != len(dt.classes) {
				return fmt.Errorf("node %d: value has %d entries, want %d", i, len(node.Value), len(dt.classes))
			}
			continue
		}
		if node.LeftChild <= 0 || node.LeftChild >= len(nodes) || node.RightChild <= 0 || node.RightChild >= len(nodes) {
			return fmt.Errorf("node %d: child index out of range", i)
		}
	}
	dt.nodes = nodes
	return nil
}

func leafConfidence(leaf TreeNode, classes []int) float64 {
	if len(leaf.Value) == 0 || len(leaf.Value) != len(classes) {
		return 1
	}
	total := 0.0
	for _, v := range leaf.Value {
		total += v
	}
	if total <= 0 {
		return 0
	}
	for i, class := range classes {
		if class == leaf.ClassLabel {
			return leaf.Value[i] / total
		}
	}
	return 0
}

func indexOf(classes []int, class int) int {
	for i, c := range classes {
		if c == class {
			return i
		}
	}
	return -1
}
