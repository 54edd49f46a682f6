package ml

import (
	"errors"
	"fmt"
)

// RandomForest averages the normalised leaf distributions of its trees and
// picks the first class with the highest mean probability. Leaves without a
// distribution count as a full vote for their class label.
type RandomForest struct {
	trees   []*DecisionTree
	classes []int
}

func NewRandomForest(trees []*DecisionTree, classes []int) (*RandomForest, error) {
	if len(trees) == 0 {
		return nil, ErrNotTrained
	}
	if len(classes) == 0 {
		return nil, errors.New("random forest requires classes")
	}
	return &RandomForest{trees: trees, classes: append([]int(nil), classes...)}, nil
}

func (rf *RandomForest) Predict(features []float64) (int, float64, error) {
	scores := make([]float64, len(rf.classes))
	for i, tree := range rf.trees {
		leaf, err := tree.leaf(features)
		if err != nil {
			return 0, 0, fmt.Errorf("tree %d: %w", i, err)
		}
		if len(leaf.Value) == len(rf.classes) {
			total := 0.0
			for _, v := range leaf.Value {
				total += v
			}
			if total > 0 {
				for j, v := range leaf.Value {
					scores[j] += v / total
				}
				continue
			}
		}
		idx := indexOf(rf.classes, leaf.ClassLabel)
		if idx < 0 {
			return 0, 0, fmt.Errorf("tree %d: class %d not in forest classes", i, leaf.ClassLabel)
		}
		scores[idx]++
	}

	best := 0
	for j := 1; j < len(scores); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	return rf.classes[best], scores[best] / float64(len(rf.trees)), nil
}

func (rf *RandomForest) Classes() []int {
	return append([]int(nil), rf.classes...)
}

func (rf *RandomForest) Size() int {
	return len(rf.trees)
}
