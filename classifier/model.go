// Package classifier wraps the pre-trained composition grouping model. The
// model is exported by the training pipeline as three JSON artifacts: a
// TF-IDF vectorizer, a linear classifier and a label encoder. The artifacts
// are loaded once at startup and are read-only afterwards.
package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/medisave/alternatives-api/interfaces"
	"github.com/medisave/alternatives-api/logging"
)

// Compile-time check to ensure Model implements GroupPredictor
var _ interfaces.GroupPredictor = (*Model)(nil)

// Artifact file names inside the model directory, fixed by the training
// pipeline export step.
const (
	vectorizerFile   = "tfidf_vectorizer.json"
	classifierFile   = "classifier.json"
	labelEncoderFile = "label_encoder.json"
)

// Tokenizer used by the vectorizer at training time: runs of two or more
// word characters. Must stay in sync with the training pipeline.
var tokenRegex = regexp.MustCompile(`\b\w\w+\b`)

// ErrPrediction is returned when the loaded model cannot score an input,
// e.g. the predicted class falls outside the label encoder's range. Callers
// should treat it as "no recommendation" rather than a fatal condition.
var ErrPrediction = errors.New("prediction failed")

// ModelError is returned when an artifact cannot be read or the artifacts
// are inconsistent with each other. Fatal at startup.
type ModelError struct {
	Artifact string
	Err      error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model artifact %s: %v", e.Artifact, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

type vectorizerArtifact struct {
	Vocabulary map[string]int `json:"vocabulary"`
	Idf        []float64      `json:"idf"`
}

type classifierArtifact struct {
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
	Classes   []int       `json:"classes"`
}

type labelEncoderArtifact struct {
	Classes []int `json:"classes"`
}

// Model is the loaded vectorizer + classifier + label decoder. Safe for
// concurrent readers: nothing is mutated after Load.
type Model struct {
	vocabulary map[string]int
	idf        []float64
	coef       [][]float64
	intercept  []float64
	classes    []int
	labels     []int
}

// Load reads the three model artifacts from dir and validates that their
// dimensions agree.
func Load(dir string) (*Model, error) {
	var vec vectorizerArtifact
	if err := readArtifact(filepath.Join(dir, vectorizerFile), &vec); err != nil {
		return nil, &ModelError{Artifact: vectorizerFile, Err: err}
	}

	var clf classifierArtifact
	if err := readArtifact(filepath.Join(dir, classifierFile), &clf); err != nil {
		return nil, &ModelError{Artifact: classifierFile, Err: err}
	}

	var enc labelEncoderArtifact
	if err := readArtifact(filepath.Join(dir, labelEncoderFile), &enc); err != nil {
		return nil, &ModelError{Artifact: labelEncoderFile, Err: err}
	}

	if len(vec.Vocabulary) == 0 {
		return nil, &ModelError{Artifact: vectorizerFile, Err: fmt.Errorf("empty vocabulary")}
	}
	if len(vec.Idf) != len(vec.Vocabulary) {
		return nil, &ModelError{Artifact: vectorizerFile,
			Err: fmt.Errorf("idf length %d does not match vocabulary size %d", len(vec.Idf), len(vec.Vocabulary))}
	}
	for term, index := range vec.Vocabulary {
		if index < 0 || index >= len(vec.Idf) {
			return nil, &ModelError{Artifact: vectorizerFile,
				Err: fmt.Errorf("vocabulary index %d for term %q out of range", index, term)}
		}
	}

	if len(clf.Coef) == 0 {
		return nil, &ModelError{Artifact: classifierFile, Err: fmt.Errorf("empty coefficient matrix")}
	}
	if len(clf.Coef) != len(clf.Intercept) || len(clf.Coef) != len(clf.Classes) {
		return nil, &ModelError{Artifact: classifierFile,
			Err: fmt.Errorf("inconsistent class count: %d coefficient rows, %d intercepts, %d classes",
				len(clf.Coef), len(clf.Intercept), len(clf.Classes))}
	}
	for i, row := range clf.Coef {
		if len(row) != len(vec.Vocabulary) {
			return nil, &ModelError{Artifact: classifierFile,
				Err: fmt.Errorf("coefficient row %d has %d features, vectorizer produces %d", i, len(row), len(vec.Vocabulary))}
		}
	}

	if len(enc.Classes) == 0 {
		return nil, &ModelError{Artifact: labelEncoderFile, Err: fmt.Errorf("empty label table")}
	}

	logging.Info("Model artifacts loaded",
		"vocabulary_size", len(vec.Vocabulary),
		"classes", len(clf.Classes),
		"labels", len(enc.Classes))

	return &Model{
		vocabulary: vec.Vocabulary,
		idf:        vec.Idf,
		coef:       clf.Coef,
		intercept:  clf.Intercept,
		classes:    clf.Classes,
		labels:     enc.Classes,
	}, nil
}

func readArtifact(path string, v any) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read artifact: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode artifact: %w", err)
	}
	return nil
}

// PredictGroup classifies a normalized composition string and returns the
// external drug group label. An empty composition is valid input; it scores
// on the intercepts alone.
func (m *Model) PredictGroup(composition string) (int, error) {
	features := m.vectorize(composition)

	best := 0
	bestScore := math.Inf(-1)
	for class := range m.coef {
		score := m.intercept[class]
		for index, value := range features {
			score += m.coef[class][index] * value
		}
		if score > bestScore {
			bestScore = score
			best = class
		}
	}

	internal := m.classes[best]
	if internal < 0 || internal >= len(m.labels) {
		return 0, fmt.Errorf("%w: class id %d outside label table of size %d", ErrPrediction, internal, len(m.labels))
	}

	return m.labels[internal], nil
}

// vectorize builds the sparse TF-IDF feature vector: term counts weighted
// by idf, L2-normalized, matching the training-time transform.
func (m *Model) vectorize(text string) map[int]float64 {
	features := make(map[int]float64)
	for _, token := range tokenRegex.FindAllString(strings.ToLower(text), -1) {
		if index, exists := m.vocabulary[token]; exists {
			features[index] += m.idf[index]
		}
	}

	var norm float64
	for _, value := range features {
		norm += value * value
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for index := range features {
			features[index] /= norm
		}
	}

	return features
}
