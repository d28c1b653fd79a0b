// Package model loads the persisted outbreak classifier and exposes its
// probability interface. Training happens elsewhere; this package only
// consumes the exported artifact.
package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/denguess/denguess/internal/features"
)

// Classifier produces outbreak probabilities for an engineered feature
// vector. Implementations must be safe for concurrent use.
type Classifier interface {
	// PredictProba returns the probability mass for the no-outbreak and
	// outbreak classes, in that order.
	PredictProba(v *features.Vector) (noOutbreak, outbreak float64, err error)
}

// Artifact is the JSON model export written by the training pipeline. It
// bundles the fitted forest with the feature-name list and encoder classes it
// was trained against, so the serving schema cannot drift from training.
type Artifact struct {
	SchemaVersion  int      `json:"schema_version"`
	ModelType      string   `json:"model_type"`
	FeatureNames   []string `json:"feature_names"`
	EncoderClasses []string `json:"encoder_classes"`
	Trees          []Tree   `json:"trees"`
}

// Load reads a model artifact and fails loudly when its feature schema does
// not match the one this binary builds.
func Load(path string) (*Forest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model artifact: %w", err)
	}
	defer f.Close()

	var a Artifact
	if err := json.NewDecoder(f).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	return NewForest(a)
}

// NewForest validates an artifact and wraps it as a classifier.
func NewForest(a Artifact) (*Forest, error) {
	if a.SchemaVersion != features.SchemaVersion {
		return nil, fmt.Errorf("model schema version %d does not match feature schema version %d; retrain or redeploy",
			a.SchemaVersion, features.SchemaVersion)
	}
	if len(a.Trees) == 0 {
		return nil, fmt.Errorf("model artifact has no trees")
	}
	if len(a.FeatureNames) == 0 {
		return nil, fmt.Errorf("model artifact has no feature names")
	}
	for i, t := range a.Trees {
		if err := t.validate(len(a.FeatureNames)); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return &Forest{artifact: a}, nil
}
