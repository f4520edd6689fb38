package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/kartoza/heart-risk/internal/features"
)

// ForestParams holds an ensemble of decision trees whose leaf
// probabilities are averaged
type ForestParams struct {
	Trees []Tree `json:"trees" yaml:"trees"`
}

// Tree is a binary decision tree stored as a flat node list rooted at 0
type Tree struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
}

// Node is either a split (x[Feature] <= Threshold goes Left) or a leaf
// carrying the positive-class probability in Value
type Node struct {
	Feature   int     `json:"feature,omitempty" yaml:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Left      int     `json:"left,omitempty" yaml:"left,omitempty"`
	Right     int     `json:"right,omitempty" yaml:"right,omitempty"`
	Leaf      bool    `json:"leaf,omitempty" yaml:"leaf,omitempty"`
	Value     float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

func (f *ForestParams) validate() error {
	if len(f.Trees) == 0 {
		return errors.New("forest has no trees")
	}
	for i, t := range f.Trees {
		if err := t.validate(); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (f *ForestParams) score(x features.Vector) float64 {
	var sum float64
	for _, t := range f.Trees {
		sum += t.score(x)
	}
	return sum / float64(len(f.Trees))
}

// validate requires children to sit after their parent, which also rules
// out cycles
func (t Tree) validate() error {
	if len(t.Nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, n := range t.Nodes {
		if n.Leaf {
			if math.IsNaN(n.Value) || n.Value < 0 || n.Value > 1 {
				return fmt.Errorf("node %d: leaf value %v outside [0, 1]", i, n.Value)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= features.NumFeatures {
			return fmt.Errorf("node %d: feature index %d out of range", i, n.Feature)
		}
		if math.IsNaN(n.Threshold) {
			return fmt.Errorf("node %d: threshold is NaN", i)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(t.Nodes) {
				return fmt.Errorf("node %d: child index %d out of range", i, child)
			}
		}
	}
	return nil
}

func (t Tree) score(x features.Vector) float64 {
	idx := 0
	for {
		n := t.Nodes[idx]
		if n.Leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
}
