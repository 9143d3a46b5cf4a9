// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

package modelstore

import (
	"fmt"
	"math"
)

// Classifier is a trained Gaussian naive Bayes model over scaled feature
// vectors. All fields are fitted offline and serialized by the training
// pipeline; the struct is read-only after load and safe for concurrent
// use by any number of requests.
type Classifier struct {
	// ClassLogPrior holds ln(P(class)) per trained class index.
	ClassLogPrior []float64 `json:"class_log_prior"`

	// Theta holds the fitted per-class feature means: Theta[class][feature].
	Theta [][]float64 `json:"theta"`

	// Var holds the fitted per-class feature variances, smoothed at
	// training time so every entry is strictly positive.
	Var [][]float64 `json:"var"`
}

// NumClasses returns the number of trained crop classes.
func (c *Classifier) NumClasses() int {
	return len(c.ClassLogPrior)
}

// NumFeatures returns the length of the expected feature vector.
func (c *Classifier) NumFeatures() int {
	if len(c.Theta) == 0 {
		return 0
	}
	return len(c.Theta[0])
}

// PredictProbabilities returns one probability per trained class index
// for a scaled feature vector. Probabilities are non-negative and sum to
// one within floating-point tolerance.
func (c *Classifier) PredictProbabilities(features []float64) ([]float64, error) {
	if len(features) != c.NumFeatures() {
		return nil, fmt.Errorf("feature vector has %d values, classifier expects %d",
			len(features), c.NumFeatures())
	}

	// Joint log likelihood per class, then softmax via log-sum-exp for
	// numerical stability.
	logLik := make([]float64, c.NumClasses())
	for class := range logLik {
		ll := c.ClassLogPrior[class]
		for i, x := range features {
			mean := c.Theta[class][i]
			variance := c.Var[class][i]
			diff := x - mean
			ll += -0.5*math.Log(2*math.Pi*variance) - diff*diff/(2*variance)
		}
		logLik[class] = ll
	}

	maxLL := logLik[0]
	for _, ll := range logLik[1:] {
		if ll > maxLL {
			maxLL = ll
		}
	}

	probs := make([]float64, len(logLik))
	var sum float64
	for i, ll := range logLik {
		probs[i] = math.Exp(ll - maxLL)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}

	return probs, nil
}

func (c *Classifier) validate() error {
	classes := c.NumClasses()
	if classes == 0 {
		return fmt.Errorf("classifier has no classes")
	}
	if len(c.Theta) != classes || len(c.Var) != classes {
		return fmt.Errorf("classifier dimensions inconsistent: %d priors, %d means, %d variances",
			classes, len(c.Theta), len(c.Var))
	}
	features := c.NumFeatures()
	if features == 0 {
		return fmt.Errorf("classifier has no features")
	}
	for class := 0; class < classes; class++ {
		if len(c.Theta[class]) != features || len(c.Var[class]) != features {
			return fmt.Errorf("classifier class %d has ragged feature dimensions", class)
		}
		for i, v := range c.Var[class] {
			if v <= 0 {
				return fmt.Errorf("classifier class %d feature %d has non-positive variance", class, i)
			}
		}
	}
	return nil
}
