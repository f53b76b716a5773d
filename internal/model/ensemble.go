package model

import (
	"fmt"
	"math"
	"sync/atomic"
)

// leafSentinel marks a node with no children in the serialized artifact.
const leafSentinel = -1

// node is the strict tagged variant a serialized tree node resolves to at
// load time. The artifact's loose parallel-array shape is interpreted
// exactly once; traversal never re-probes alternate field names.
type node struct {
	leaf      bool
	weight    float64 // leaf output, log-odds contribution
	feature   int     // split feature index, valid only when !leaf
	threshold float64
	left      int32
	right     int32
}

type tree struct {
	nodes []node
}

// Ensemble is an additive gradient-boosted decision-tree model with a
// sigmoid output. Immutable after load; safe for concurrent evaluation.
type Ensemble struct {
	trees       []tree
	baseScore   float64
	numFeatures int
	meta        Metadata

	// anomalies counts tree traversals aborted by an out-of-range child
	// index. Zero against a valid artifact.
	anomalies atomic.Int64
}

// Metadata is the companion document shipped with the artifact. Its
// feature_names order is the cross-boundary contract with the extractor.
type Metadata struct {
	Version              string   `json:"version"`
	ModelType            string   `json:"model_type"`
	FeatureNames         []string `json:"feature_names"`
	NumFeatures          int      `json:"num_features"`
	RecommendedThreshold float64  `json:"recommended_threshold"`
}

// NumTrees returns the ensemble size.
func (e *Ensemble) NumTrees() int { return len(e.trees) }

// NumFeatures returns the feature-vector length the model expects.
func (e *Ensemble) NumFeatures() int { return e.numFeatures }

// Metadata returns the companion document parsed at load time.
func (e *Ensemble) Metadata() Metadata { return e.meta }

// Anomalies returns how many tree traversals were aborted defensively.
func (e *Ensemble) Anomalies() int64 { return e.anomalies.Load() }

// Score evaluates the raw log-odds: the sum of every tree's leaf output
// plus the base score.
//
// Split rule: features[feature] < threshold goes left, otherwise right.
// Equality goes right, and NaN comparisons are false so NaN also routes
// right; both mirror the trained model's convention and must not change.
func (e *Ensemble) Score(features []float64) (float64, error) {
	if len(features) != e.numFeatures {
		return 0, fmt.Errorf("%w: got %d features, model expects %d",
			ErrInvalidInput, len(features), e.numFeatures)
	}

	score := e.baseScore
	for i := range e.trees {
		score += e.trees[i].eval(features, &e.anomalies)
	}
	return score, nil
}

// Predict evaluates the ensemble and maps the score through the logistic
// sigmoid to a probability in (0,1).
func (e *Ensemble) Predict(features []float64) (float64, error) {
	score, err := e.Score(features)
	if err != nil {
		return 0, err
	}
	return Sigmoid(score), nil
}

// Sigmoid is the standard logistic function 1/(1+e^-x).
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// eval walks from the root to a leaf and returns its weight.
//
// Child indices are validated at load time, so the bounds check here is
// defensive only: a divergent traversal contributes zero and bumps the
// anomaly counter instead of looping.
func (t *tree) eval(features []float64, anomalies *atomic.Int64) float64 {
	idx := int32(0)
	for steps := 0; steps <= len(t.nodes); steps++ {
		n := &t.nodes[idx]
		if n.leaf {
			return n.weight
		}
		if features[n.feature] < n.threshold {
			idx = n.left
		} else {
			idx = n.right
		}
		if idx < 0 || int(idx) >= len(t.nodes) {
			anomalies.Add(1)
			return 0
		}
	}
	anomalies.Add(1)
	return 0
}
