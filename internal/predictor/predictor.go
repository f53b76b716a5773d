package predictor

import (
	"github.com/phishblock/phishguard/internal/domain"
	"github.com/phishblock/phishguard/internal/model"
)

// SuspiciousMargin is the width of the band below the block threshold in
// which a URL is called suspicious rather than safe.
const SuspiciousMargin = 0.20

// Result is a single prediction with its derived verdict level.
type Result struct {
	Probability float64
	Confidence  float64
	Level       domain.Level
}

// Predictor turns feature vectors into calibrated verdicts. It owns the
// loaded ensemble for the process lifetime.
type Predictor struct {
	ensemble *model.Ensemble
}

func New(ensemble *model.Ensemble) *Predictor {
	return &Predictor{ensemble: ensemble}
}

// Model exposes the underlying ensemble (metadata, tree count).
func (p *Predictor) Model() *model.Ensemble { return p.ensemble }

// PredictWithConfidence evaluates one feature vector against the current
// block threshold.
//
// Level is phishing at or above the threshold, suspicious within
// SuspiciousMargin below it, safe otherwise. Confidence always measures
// distance toward the called verdict: the probability itself for
// phishing/suspicious, its complement for safe.
func (p *Predictor) PredictWithConfidence(features []float64, blockThreshold float64) (Result, error) {
	prob, err := p.ensemble.Predict(features)
	if err != nil {
		return Result{}, err
	}

	level := domain.LevelSafe
	confidence := 1 - prob
	switch {
	case prob >= blockThreshold:
		level = domain.LevelPhishing
		confidence = prob
	case prob >= blockThreshold-SuspiciousMargin:
		level = domain.LevelSuspicious
		confidence = prob
	}

	return Result{Probability: prob, Confidence: confidence, Level: level}, nil
}

// PredictBatch evaluates vectors independently, stopping at the first
// error. Tree traversal is cheap at this model size; there is nothing to
// gain from vectorizing.
func (p *Predictor) PredictBatch(vectors [][]float64, blockThreshold float64) ([]Result, error) {
	results := make([]Result, 0, len(vectors))
	for _, vec := range vectors {
		r, err := p.PredictWithConfidence(vec, blockThreshold)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}
