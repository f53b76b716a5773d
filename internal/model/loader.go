package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/phishblock/phishguard/internal/features"
)

var (
	// ErrModelFormat means the artifact is missing its expected top-level
	// structure. Fatal: the engine must not come up without a model.
	ErrModelFormat = errors.New("invalid model artifact format")

	// ErrFeatureMismatch means the metadata's feature names disagree with
	// the extractor's contract. Fatal at load, never padded at runtime.
	ErrFeatureMismatch = errors.New("model feature contract mismatch")

	// ErrInvalidInput means a feature vector of the wrong length reached
	// the model. Programmer error, surfaced immediately.
	ErrInvalidInput = errors.New("invalid model input")
)

// artifact mirrors the serialized ensemble: per-tree parallel node arrays
// plus a scalar base score in log-odds space.
type artifact struct {
	BaseScore float64    `json:"base_score"`
	NumTrees  int        `json:"num_trees"`
	Trees     []treeSpec `json:"trees"`
}

type treeSpec struct {
	LeftChildren    []int32   `json:"left_children"`
	RightChildren   []int32   `json:"right_children"`
	SplitIndices    []int     `json:"split_indices"`
	SplitConditions []float64 `json:"split_conditions"`
	BaseWeights     []float64 `json:"base_weights"`
}

// Load reads the model artifact and its companion metadata from disk.
func Load(modelPath, metadataPath string) (*Ensemble, error) {
	modelData, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact %s: %w", modelPath, err)
	}
	metaData, err := os.ReadFile(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model metadata %s: %w", metadataPath, err)
	}
	return Parse(modelData, metaData)
}

// Parse builds an Ensemble from raw artifact and metadata documents,
// resolving every node into its strict tagged form and validating the
// feature contract. All structural errors are fatal here; nothing is
// deferred to evaluation time.
func Parse(modelData, metaData []byte) (*Ensemble, error) {
	var meta Metadata
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode model metadata: %w", err)
	}
	if err := validateMetadata(meta); err != nil {
		return nil, err
	}

	var doc artifact
	if err := json.Unmarshal(modelData, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelFormat, err)
	}
	if doc.Trees == nil {
		return nil, fmt.Errorf("%w: missing trees array", ErrModelFormat)
	}
	if doc.NumTrees != 0 && doc.NumTrees != len(doc.Trees) {
		return nil, fmt.Errorf("%w: num_trees=%d but artifact has %d trees",
			ErrModelFormat, doc.NumTrees, len(doc.Trees))
	}

	ens := &Ensemble{
		trees:       make([]tree, len(doc.Trees)),
		baseScore:   doc.BaseScore,
		numFeatures: len(meta.FeatureNames),
		meta:        meta,
	}
	for i, spec := range doc.Trees {
		t, err := resolveTree(spec, ens.numFeatures)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		ens.trees[i] = t
	}
	return ens, nil
}

// validateMetadata asserts the single most important cross-boundary
// contract: feature names, count and order must equal the extractor's.
func validateMetadata(meta Metadata) error {
	if len(meta.FeatureNames) == 0 {
		return fmt.Errorf("%w: metadata has no feature_names", ErrModelFormat)
	}
	if meta.NumFeatures != 0 && meta.NumFeatures != len(meta.FeatureNames) {
		return fmt.Errorf("%w: num_features=%d but %d names listed",
			ErrModelFormat, meta.NumFeatures, len(meta.FeatureNames))
	}
	if len(meta.FeatureNames) != features.Count() {
		return fmt.Errorf("%w: model declares %d features, extractor produces %d",
			ErrFeatureMismatch, len(meta.FeatureNames), features.Count())
	}
	for i, name := range meta.FeatureNames {
		if name != features.Names[i] {
			return fmt.Errorf("%w: feature %d is %q in metadata but %q in extractor",
				ErrFeatureMismatch, i, name, features.Names[i])
		}
	}
	return nil
}

func resolveTree(spec treeSpec, numFeatures int) (tree, error) {
	n := len(spec.LeftChildren)
	if n == 0 {
		return tree{}, fmt.Errorf("%w: empty node arrays", ErrModelFormat)
	}
	if len(spec.RightChildren) != n || len(spec.SplitIndices) != n ||
		len(spec.SplitConditions) != n || len(spec.BaseWeights) != n {
		return tree{}, fmt.Errorf("%w: node arrays have unequal lengths", ErrModelFormat)
	}

	nodes := make([]node, n)
	for i := 0; i < n; i++ {
		left, right := spec.LeftChildren[i], spec.RightChildren[i]
		if left == leafSentinel && right == leafSentinel {
			nodes[i] = node{leaf: true, weight: spec.BaseWeights[i]}
			continue
		}
		if left == leafSentinel || right == leafSentinel {
			return tree{}, fmt.Errorf("%w: node %d has exactly one child", ErrModelFormat, i)
		}
		if left < 0 || int(left) >= n || right < 0 || int(right) >= n {
			return tree{}, fmt.Errorf("%w: node %d child index out of range", ErrModelFormat, i)
		}
		if spec.SplitIndices[i] < 0 || spec.SplitIndices[i] >= numFeatures {
			return tree{}, fmt.Errorf("%w: node %d split feature %d out of range",
				ErrModelFormat, i, spec.SplitIndices[i])
		}
		nodes[i] = node{
			feature:   spec.SplitIndices[i],
			threshold: spec.SplitConditions[i],
			left:      left,
			right:     right,
		}
	}
	return tree{nodes: nodes}, nil
}
