// Package model loads the pretrained ACD ensemble and evaluates it in-process.
//
// The artifact is a JSON export of a random forest regressor: the ordered list
// of feature names the model was trained on plus, for every estimator, the
// flat node arrays of the fitted tree (children_left, children_right, feature,
// threshold, value). A node is a leaf when children_left is -1.
package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

const leaf = -1

// Tree is one fitted regression tree in flat-array form.
type Tree struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

// Artifact is the on-disk model bundle.
type Artifact struct {
	Name       string   `json:"name"`
	Features   []string `json:"features"`
	Estimators []Tree   `json:"estimators"`
}

// Forest is a loaded, validated ensemble. It is read-only after construction
// and safe for concurrent use.
type Forest struct {
	name     string
	features []string
	trees    []Tree
}

// Load reads and validates a model artifact from path.
func Load(path string) (*Forest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("model: failed to open artifact: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads a model artifact from r.
func Decode(r io.Reader) (*Forest, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("model: failed to decode artifact: %w", err)
	}
	return New(a)
}

// New validates an artifact and builds a Forest from it.
func New(a Artifact) (*Forest, error) {
	if len(a.Features) == 0 {
		return nil, fmt.Errorf("model: artifact has no feature list")
	}
	if len(a.Estimators) == 0 {
		return nil, fmt.Errorf("model: artifact has no estimators")
	}

	seen := make(map[string]struct{}, len(a.Features))
	for _, name := range a.Features {
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("model: duplicate feature %q", name)
		}
		seen[name] = struct{}{}
	}

	for i := range a.Estimators {
		if err := a.Estimators[i].validate(len(a.Features)); err != nil {
			return nil, fmt.Errorf("model: estimator %d: %w", i, err)
		}
	}

	name := a.Name
	if name == "" {
		name = "Random Forest ACD"
	}

	return &Forest{
		name:     name,
		features: append([]string(nil), a.Features...),
		trees:    a.Estimators,
	}, nil
}

func (t *Tree) validate(nFeatures int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays differ in length")
	}

	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == leaf {
			if r != leaf {
				return fmt.Errorf("node %d has a right child but no left child", i)
			}
			continue
		}
		// children are numbered after their parent, which also rules out cycles
		if l <= i || l >= n || r <= i || r >= n {
			return fmt.Errorf("node %d has out-of-range children (%d, %d)", i, l, r)
		}
		if f := t.Feature[i]; f < 0 || f >= nFeatures {
			return fmt.Errorf("node %d splits on unknown feature index %d", i, f)
		}
	}
	return nil
}

func (t *Tree) predict(x []float64) float64 {
	node := 0
	for t.ChildrenLeft[node] != leaf {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

// Name returns the model's display name.
func (f *Forest) Name() string { return f.name }

// Features returns the ordered feature names expected by the model.
func (f *Forest) Features() []string {
	return append([]string(nil), f.features...)
}

// NumEstimators returns the ensemble size.
func (f *Forest) NumEstimators() int { return len(f.trees) }

// Predict returns the ensemble mean for one feature row.
func (f *Forest) Predict(x []float64) (float64, error) {
	preds, err := f.EstimatorPredictions(x)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, p := range preds {
		sum += p
	}
	return sum / float64(len(preds)), nil
}

// EstimatorPredictions evaluates every tree separately on one feature row.
func (f *Forest) EstimatorPredictions(x []float64) ([]float64, error) {
	if len(x) != len(f.features) {
		return nil, fmt.Errorf("model: expected %d features, got %d", len(f.features), len(x))
	}
	out := make([]float64, len(f.trees))
	for i := range f.trees {
		out[i] = f.trees[i].predict(x)
	}
	return out, nil
}
