package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaf(class int, value ...float64) TreeNode {
	return TreeNode{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: class, IsLeaf: true, Value: value}
}

func TestRandomForestSoftVote(t *testing.T) {
	classes := []int{0, 1, 2}
	// two weak votes for 1 lose against one confident vote for 2
	t1, err := NewDecisionTree([]TreeNode{leaf(1, 0, 5, 4)}, classes)
	require.NoError(t, err)
	t2, err := NewDecisionTree([]TreeNode{leaf(1, 0, 5, 4)}, classes)
	require.NoError(t, err)
	t3, err := NewDecisionTree([]TreeNode{leaf(2, 0, 0, 10)}, classes)
	require.NoError(t, err)

	forest, err := NewRandomForest([]*DecisionTree{t1, t2, t3}, classes)
	require.NoError(t, err)

	label, confidence, err := forest.Predict([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 2, label)
	assert.InDelta(t, (4.0/9+4.0/9+1)/3, confidence, 1e-9)
	assert.Equal(t, 3, forest.Size())
}

func TestRandomForestHardVoteAndTies(t *testing.T) {
	classes := []int{0, 1}
	a, err := NewDecisionTree([]TreeNode{leaf(1)}, classes)
	require.NoError(t, err)
	b, err := NewDecisionTree([]TreeNode{leaf(0)}, classes)
	require.NoError(t, err)

	forest, err := NewRandomForest([]*DecisionTree{a, b}, classes)
	require.NoError(t, err)

	label, confidence, err := forest.Predict(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, label, "ties resolve to the first class")
	assert.Equal(t, 0.5, confidence)
}

func TestRandomForestUnknownLeafClass(t *testing.T) {
	tree, err := NewDecisionTree([]TreeNode{leaf(9)}, nil)
	require.NoError(t, err)
	forest, err := NewRandomForest([]*DecisionTree{tree}, []int{0, 1})
	require.NoError(t, err)

	_, _, err = forest.Predict(nil)
	assert.Error(t, err)
}

func TestNewRandomForestValidation(t *testing.T) {
	_, err := NewRandomForest(nil, []int{0})
	assert.ErrorIs(t, err, ErrNotTrained)

	tree, err := NewDecisionTree([]TreeNode{leaf(0)}, nil)
	require.NoError(t, err)
	_, err = NewRandomForest([]*DecisionTree{tree}, nil)
	assert.Error(t, err)
}
