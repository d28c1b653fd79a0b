package model

import (
	"fmt"

	"github.com/denguess/denguess/internal/features"
)

// Tree is a single decision tree in flattened array form, matching the
// export of the training pipeline: node i splits on Feature[i] at
// Threshold[i] (x <= threshold goes left), with -1 children marking leaves.
// Value[i] holds the training-sample class counts at the node.
type Tree struct {
	ChildrenLeft  []int        `json:"children_left"`
	ChildrenRight []int        `json:"children_right"`
	Feature       []int        `json:"feature"`
	Threshold     []float64    `json:"threshold"`
	Value         [][2]float64 `json:"value"`
}

func (t Tree) validate(numFeatures int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays have mismatched lengths")
	}
	for i := 0; i < n; i++ {
		if t.ChildrenLeft[i] >= n || t.ChildrenRight[i] >= n {
			return fmt.Errorf("node %d: child index out of range", i)
		}
		if t.ChildrenLeft[i] >= 0 && t.Feature[i] >= numFeatures {
			return fmt.Errorf("node %d: feature index %d out of range", i, t.Feature[i])
		}
	}
	return nil
}

// proba walks the tree for one sample and returns the leaf class
// distribution.
func (t Tree) proba(values []float64) [2]float64 {
	node := 0
	for t.ChildrenLeft[node] >= 0 {
		if values[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	counts := t.Value[node]
	total := counts[0] + counts[1]
	if total == 0 {
		return [2]float64{0.5, 0.5}
	}
	return [2]float64{counts[0] / total, counts[1] / total}
}

// Forest is a random-forest classifier restored from a training artifact.
// Read-only after construction.
type Forest struct {
	artifact Artifact
}

// PredictProba averages the leaf class distributions of every tree. The
// vector must already be reindexed to the artifact's feature-name list.
func (f *Forest) PredictProba(v *features.Vector) (float64, float64, error) {
	if v.Len() != len(f.artifact.FeatureNames) {
		return 0, 0, fmt.Errorf("feature vector has %d columns, model expects %d", v.Len(), len(f.artifact.FeatureNames))
	}

	values := v.Values()
	var sum [2]float64
	for _, t := range f.artifact.Trees {
		p := t.proba(values)
		sum[0] += p[0]
		sum[1] += p[1]
	}
	n := float64(len(f.artifact.Trees))
	return sum[0] / n, sum[1] / n, nil
}

func (f *Forest) ModelType() string {
	if f.artifact.ModelType == "" {
		return "RandomForestClassifier"
	}
	return f.artifact.ModelType
}

func (f *Forest) NumTrees() int             { return len(f.artifact.Trees) }
func (f *Forest) FeatureNames() []string    { return f.artifact.FeatureNames }
func (f *Forest) EncoderClasses() []string  { return f.artifact.EncoderClasses }
func (f *Forest) SchemaVersion() int        { return f.artifact.SchemaVersion }
