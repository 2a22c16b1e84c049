// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Department of Linguistics,
// Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rf

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

var ErrNotTrained = errors.New("model not trained")

// Params configures forest training
type Params struct {
	NumTrees int `json:"numTrees" msgpack:"numTrees"`

	// MaxDepth limits depth of each tree, zero means unlimited
	MaxDepth int `json:"maxDepth" msgpack:"maxDepth"`

	// MinSamplesSplit is the minimal number of samples a node
	// must have to be considered for splitting
	MinSamplesSplit int `json:"minSamplesSplit" msgpack:"minSamplesSplit"`

	// MinSamplesLeaf is the minimal number of samples in each
	// child of a split
	MinSamplesLeaf int `json:"minSamplesLeaf" msgpack:"minSamplesLeaf"`

	// MaxFeatures is the number of randomly chosen features examined
	// for each split. Zero (or anything >= num. of features) means
	// all the features are examined.
	MaxFeatures int `json:"maxFeatures" msgpack:"maxFeatures"`

	Seed uint64 `json:"seed" msgpack:"seed"`
}

func (p Params) Validate() error {
	if p.NumTrees <= 0 {
		return fmt.Errorf("invalid value of NumTrees: %d", p.NumTrees)
	}
	if p.MaxDepth < 0 {
		return fmt.Errorf("invalid value of MaxDepth: %d", p.MaxDepth)
	}
	if p.MinSamplesSplit < 0 || p.MinSamplesLeaf < 0 || p.MaxFeatures < 0 {
		return fmt.Errorf("sample and feature limits must not be negative")
	}
	return nil
}

// Model is a Random Forest regressor - an ensemble of CART regression
// trees, each trained on a bootstrap sample. A prediction is the mean
// of all the trees' outputs.
// Once trained, the model is read-only and safe for concurrent use.
type Model struct {
	Trees             []Tree    `msgpack:"trees"`
	Params            Params    `msgpack:"params"`
	NumFeatures       int       `msgpack:"numFeatures"`
	FeatureImportance []float64 `msgpack:"featureImportance"`
	Comment           string    `msgpack:"comment"`
}

// NewModel creates a new untrained Random Forest model
func NewModel(params Params) *Model {
	return &Model{
		Params: params,
	}
}

func (m *Model) GetInfo() string {
	return fmt.Sprintf(
		"RF regressor, num. trees: %d, max. depth: %d, min. samples split/leaf: %d/%d",
		m.Params.NumTrees, m.Params.MaxDepth, m.Params.MinSamplesSplit, m.Params.MinSamplesLeaf,
	)
}

// Train fits the forest to provided input vectors and target values.
// The onTree callback (if not nil) is called after each finished tree.
// Training is deterministic for the same data and Params.Seed.
// note: the `comment` is stored with the model for easier model review
func (m *Model) Train(ctx context.Context, xData [][]float64, yData []float64, comment string, onTree func()) error {
	if len(xData) == 0 {
		return fmt.Errorf("no training data provided")
	}
	if len(xData) != len(yData) {
		return fmt.Errorf("training data size mismatch (%d inputs, %d targets)", len(xData), len(yData))
	}
	if err := m.Params.Validate(); err != nil {
		return fmt.Errorf("failed to train RF model: %w", err)
	}
	numFeatures := len(xData[0])
	for i, x := range xData {
		if len(x) != numFeatures {
			return fmt.Errorf("inconsistent input vector size at row %d (%d, expected %d)", i, len(x), numFeatures)
		}
	}

	m.NumFeatures = numFeatures
	m.Trees = make([]Tree, 0, m.Params.NumTrees)
	importance := make([]float64, numFeatures)
	bootstrap := make([]int, len(xData))
	for t := 0; t < m.Params.NumTrees; t++ {
		if ctx != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		rnd := rand.New(rand.NewPCG(m.Params.Seed, uint64(t)))
		for i := range bootstrap {
			bootstrap[i] = rnd.IntN(len(xData))
		}
		builder := newTreeBuilder(m.Params, xData, yData, rnd, importance)
		m.Trees = append(m.Trees, builder.build(bootstrap))
		if onTree != nil {
			onTree()
		}
	}
	if total := floats.Sum(importance); total > 0 {
		floats.Scale(1/total, importance)
	}
	m.FeatureImportance = importance
	m.Comment = comment
	log.Debug().
		Int("numTrees", len(m.Trees)).
		Int("dataSize", len(xData)).
		Int("numFeatures", numFeatures).
		Msg("trained RF regressor")
	return nil
}

// Predict estimates the target value for an input vector
func (m *Model) Predict(x []float64) (float64, error) {
	if len(m.Trees) == 0 {
		return 0, ErrNotTrained
	}
	if len(x) != m.NumFeatures {
		return 0, fmt.Errorf("invalid input vector size %d (expected %d)", len(x), m.NumFeatures)
	}
	var sum float64
	for i := range m.Trees {
		sum += m.Trees[i].predict(x)
	}
	return sum / float64(len(m.Trees)), nil
}

// PredictAll is a batch variant of Predict
func (m *Model) PredictAll(xData [][]float64) ([]float64, error) {
	ans := make([]float64, len(xData))
	for i, x := range xData {
		v, err := m.Predict(x)
		if err != nil {
			return nil, fmt.Errorf("failed to predict row %d: %w", i, err)
		}
		ans[i] = v
	}
	return ans, nil
}
