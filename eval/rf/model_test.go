package rf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepData() ([][]float64, []float64) {
	xData := make([][]float64, 0, 60)
	yData := make([]float64, 0, 60)
	for i := 0; i < 60; i++ {
		x := float64(i)
		xData = append(xData, []float64{x, math.Mod(x*7, 5)})
		if x < 30 {
			yData = append(yData, 1)

		} else {
			yData = append(yData, 5)
		}
	}
	return xData, yData
}

func testParams() Params {
	return Params{
		NumTrees:        10,
		MaxDepth:        5,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Seed:            42,
	}
}

func TestTrainAndPredictStep(t *testing.T) {
	xData, yData := stepData()
	model := NewModel(testParams())
	calls := 0
	err := model.Train(context.Background(), xData, yData, "test", func() { calls++ })
	require.NoError(t, err)
	assert.Equal(t, 10, calls)
	assert.Len(t, model.Trees, 10)

	low, err := model.Predict([]float64{5, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, low, 0.5)
	high, err := model.Predict([]float64{55, 0})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, high, 0.5)

	// the step is only explained by the first feature
	require.Len(t, model.FeatureImportance, 2)
	assert.Greater(t, model.FeatureImportance[0], model.FeatureImportance[1])
	assert.InDelta(t, 1.0, model.FeatureImportance[0]+model.FeatureImportance[1], 1e-9)
}

func TestTrainIsDeterministic(t *testing.T) {
	xData, yData := stepData()
	params := testParams()
	params.MaxFeatures = 1
	m1 := NewModel(params)
	require.NoError(t, m1.Train(context.Background(), xData, yData, "", nil))
	m2 := NewModel(params)
	require.NoError(t, m2.Train(context.Background(), xData, yData, "", nil))
	assert.Equal(t, m1.Trees, m2.Trees)

	params.Seed = 7
	m3 := NewModel(params)
	require.NoError(t, m3.Train(context.Background(), xData, yData, "", nil))
	assert.NotEqual(t, m1.Trees, m3.Trees)
}

func TestTrainRespectsMaxDepth(t *testing.T) {
	xData := make([][]float64, 100)
	yData := make([]float64, 100)
	for i := range xData {
		xData[i] = []float64{float64(i)}
		yData[i] = float64(i * i)
	}
	params := testParams()
	params.MaxDepth = 3
	model := NewModel(params)
	require.NoError(t, model.Train(context.Background(), xData, yData, "", nil))
	for _, tree := range model.Trees {
		assert.LessOrEqual(t, tree.Depth(), 4) // root level + 3 splits
	}
}

func TestTrainConstantTarget(t *testing.T) {
	xData := [][]float64{{1}, {2}, {3}}
	yData := []float64{4.2, 4.2, 4.2}
	model := NewModel(testParams())
	require.NoError(t, model.Train(context.Background(), xData, yData, "", nil))
	v, err := model.Predict([]float64{100})
	require.NoError(t, err)
	assert.InDelta(t, 4.2, v, 1e-9)
	for _, tree := range model.Trees {
		assert.Len(t, tree.Nodes, 1)
	}
}

func TestTrainInvalidInput(t *testing.T) {
	model := NewModel(testParams())
	assert.Error(t, model.Train(context.Background(), nil, nil, "", nil))
	assert.Error(t, model.Train(context.Background(), [][]float64{{1}}, []float64{1, 2}, "", nil))
	assert.Error(t, model.Train(context.Background(), [][]float64{{1}, {1, 2}}, []float64{1, 2}, "", nil))
	assert.Error(t, NewModel(Params{}).Train(context.Background(), [][]float64{{1}}, []float64{1}, "", nil))
}

func TestTrainCancelled(t *testing.T) {
	xData, yData := stepData()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewModel(testParams()).Train(ctx, xData, yData, "", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPredictErrors(t *testing.T) {
	model := NewModel(testParams())
	_, err := model.Predict([]float64{1, 2})
	assert.ErrorIs(t, err, ErrNotTrained)

	xData, yData := stepData()
	require.NoError(t, model.Train(context.Background(), xData, yData, "", nil))
	_, err = model.Predict([]float64{1})
	assert.Error(t, err)
	_, err = model.PredictAll([][]float64{{1, 2}, {3}})
	assert.Error(t, err)
}
