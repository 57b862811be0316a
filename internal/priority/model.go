package priority

import (
	"encoding/json"
	"fmt"
	"math"
)

// Training hyperparameters for the full-batch retrain. The training sets are
// small (hundreds of samples) so plain batch gradient descent converges fast
// enough to run synchronously inside the retrain guard.
const (
	trainEpochs       = 300
	trainLearningRate = 0.05
)

// classOrder fixes the label index mapping inside the parameter matrices.
var classOrder = []string{"LOW", "MEDIUM", "HIGH", "CRITICAL"}

// sample is one labeled training observation.
type sample struct {
	Features []float64 `json:"features"`
	Label    string    `json:"label"`
}

// modelParams is the JSON-serialized form of a trained model plus the
// accumulated training buffer, so a restart resumes exactly where the last
// persisted state left off.
type modelParams struct {
	Weights      [][]float64 `json:"weights"` // one row per class
	Bias         []float64   `json:"bias"`
	Classes      []string    `json:"classes"`
	FeatureNames []string    `json:"feature_names"`
	Mean         []float64   `json:"mean"`
	Scale        []float64   `json:"scale"`
	Samples      []sample    `json:"samples"`
}

// softmaxModel is an immutable trained multinomial logistic classifier.
// Instances are never mutated after training, so prediction needs no lock.
type softmaxModel struct {
	weights [][]float64
	bias    []float64
	mean    []float64
	scale   []float64
}

// predict returns the most probable label for the feature vector.
func (m *softmaxModel) predict(features []float64) string {
	if len(features) != len(m.mean) {
		return ""
	}

	best, bestScore := 0, math.Inf(-1)
	for c := range m.weights {
		z := m.bias[c]
		for j, f := range features {
			z += m.weights[c][j] * (f - m.mean[j]) / m.scale[j]
		}
		if z > bestScore {
			best, bestScore = c, z
		}
	}
	return classOrder[best]
}

// fitSoftmax trains a model from scratch on the full sample set. Features
// are standardized first; constant features keep scale 1 so division stays
// defined.
func fitSoftmax(samples []sample) (*softmaxModel, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("fit: empty training set")
	}
	dim := len(samples[0].Features)

	classIdx := make(map[string]int, len(classOrder))
	for i, c := range classOrder {
		classIdx[c] = i
	}
	targets := make([]int, len(samples))
	for i, s := range samples {
		if len(s.Features) != dim {
			return nil, fmt.Errorf("fit: sample %d has %d features, want %d", i, len(s.Features), dim)
		}
		idx, ok := classIdx[s.Label]
		if !ok {
			return nil, fmt.Errorf("fit: unknown label %q", s.Label)
		}
		targets[i] = idx
	}

	mean, scale := standardization(samples, dim)
	scaled := make([][]float64, len(samples))
	for i, s := range samples {
		row := make([]float64, dim)
		for j, f := range s.Features {
			row[j] = (f - mean[j]) / scale[j]
		}
		scaled[i] = row
	}

	nClasses := len(classOrder)
	weights := make([][]float64, nClasses)
	for c := range weights {
		weights[c] = make([]float64, dim)
	}
	bias := make([]float64, nClasses)

	n := float64(len(samples))
	logits := make([]float64, nClasses)
	for epoch := 0; epoch < trainEpochs; epoch++ {
		gradW := make([][]float64, nClasses)
		for c := range gradW {
			gradW[c] = make([]float64, dim)
		}
		gradB := make([]float64, nClasses)

		for i, row := range scaled {
			for c := 0; c < nClasses; c++ {
				z := bias[c]
				for j, f := range row {
					z += weights[c][j] * f
				}
				logits[c] = z
			}
			probs := softmax(logits)
			for c := 0; c < nClasses; c++ {
				delta := probs[c]
				if c == targets[i] {
					delta -= 1
				}
				for j, f := range row {
					gradW[c][j] += delta * f
				}
				gradB[c] += delta
			}
		}

		for c := 0; c < nClasses; c++ {
			for j := 0; j < dim; j++ {
				weights[c][j] -= trainLearningRate * gradW[c][j] / n
			}
			bias[c] -= trainLearningRate * gradB[c] / n
		}
	}

	return &softmaxModel{weights: weights, bias: bias, mean: mean, scale: scale}, nil
}

func softmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, z := range logits[1:] {
		if z > maxLogit {
			maxLogit = z
		}
	}
	probs := make([]float64, len(logits))
	var sum float64
	for i, z := range logits {
		probs[i] = math.Exp(z - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

func standardization(samples []sample, dim int) (mean, scale []float64) {
	mean = make([]float64, dim)
	scale = make([]float64, dim)
	n := float64(len(samples))

	for _, s := range samples {
		for j, f := range s.Features {
			mean[j] += f
		}
	}
	for j := range mean {
		mean[j] /= n
	}
	for _, s := range samples {
		for j, f := range s.Features {
			d := f - mean[j]
			scale[j] += d * d
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / n)
		if scale[j] == 0 {
			scale[j] = 1
		}
	}
	return mean, scale
}

// marshalParams serializes a trained model and its training buffer.
func marshalParams(m *softmaxModel, featureNames []string, samples []sample) ([]byte, error) {
	p := modelParams{
		Weights:      m.weights,
		Bias:         m.bias,
		Classes:      classOrder,
		FeatureNames: featureNames,
		Mean:         m.mean,
		Scale:        m.scale,
		Samples:      samples,
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal model params: %w", err)
	}
	return data, nil
}

// unmarshalParams restores a model and training buffer from a persisted
// state. A state trained against a different feature layout is rejected so
// predictions never read garbage positions.
func unmarshalParams(data []byte, featureNames []string) (*softmaxModel, []sample, error) {
	var p modelParams
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, nil, fmt.Errorf("unmarshal model params: %w", err)
	}
	if len(p.FeatureNames) != len(featureNames) {
		return nil, nil, fmt.Errorf("model feature layout mismatch: stored %d features, want %d",
			len(p.FeatureNames), len(featureNames))
	}
	for i, name := range p.FeatureNames {
		if name != featureNames[i] {
			return nil, nil, fmt.Errorf("model feature layout mismatch at position %d: stored %q, want %q",
				i, name, featureNames[i])
		}
	}
	m := &softmaxModel{weights: p.Weights, bias: p.Bias, mean: p.Mean, scale: p.Scale}
	return m, p.Samples, nil
}
