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
	"cmp"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat"
)

const minGain = 1e-12

// Node is a tree node stored in a flat array. A node with Left < 0
// is a leaf and its Value is the prediction.
type Node struct {
	Feature   int     `msgpack:"f"`
	Threshold float64 `msgpack:"t"`
	Left      int32   `msgpack:"l"`
	Right     int32   `msgpack:"r"`
	Value     float64 `msgpack:"v"`
}

func (n Node) IsLeaf() bool {
	return n.Left < 0
}

type Tree struct {
	Nodes []Node `msgpack:"nodes"`
}

func (t *Tree) predict(x []float64) float64 {
	var i int32
	for {
		node := t.Nodes[i]
		if node.IsLeaf() {
			return node.Value
		}
		if x[node.Feature] <= node.Threshold {
			i = node.Left

		} else {
			i = node.Right
		}
	}
}

func (t *Tree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var depth func(i int32) int
	depth = func(i int32) int {
		if t.Nodes[i].IsLeaf() {
			return 1
		}
		return 1 + max(depth(t.Nodes[i].Left), depth(t.Nodes[i].Right))
	}
	return depth(0)
}

// ----------------------------

type split struct {
	feature   int
	threshold float64
	gain      float64
}

type treeBuilder struct {
	params      Params
	xData       [][]float64
	yData       []float64
	rnd         *rand.Rand
	numFeatures int
	nodes       []Node
	importance  []float64
}

func newTreeBuilder(params Params, xData [][]float64, yData []float64, rnd *rand.Rand, importance []float64) *treeBuilder {
	if params.MinSamplesLeaf < 1 {
		params.MinSamplesLeaf = 1
	}
	if params.MinSamplesSplit < 2 {
		params.MinSamplesSplit = 2
	}
	return &treeBuilder{
		params:      params,
		xData:       xData,
		yData:       yData,
		rnd:         rnd,
		numFeatures: len(xData[0]),
		importance:  importance,
	}
}

func (tb *treeBuilder) build(samples []int) Tree {
	tb.nodes = make([]Node, 0, 64)
	tb.grow(slices.Clone(samples), 0)
	return Tree{Nodes: tb.nodes}
}

// sse returns the mean and the sum of squared errors (from the mean)
// of targets of the samples
func (tb *treeBuilder) sse(samples []int) (float64, float64) {
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = tb.yData[s]
	}
	if len(values) == 1 {
		return values[0], 0
	}
	mean, variance := stat.MeanVariance(values, nil)
	return mean, variance * float64(len(values)-1)
}

func (tb *treeBuilder) grow(samples []int, depth int) int32 {
	idx := int32(len(tb.nodes))
	mean, sse := tb.sse(samples)
	tb.nodes = append(tb.nodes, Node{Left: -1, Right: -1, Value: mean})

	if len(samples) < tb.params.MinSamplesSplit ||
		tb.params.MaxDepth > 0 && depth >= tb.params.MaxDepth ||
		sse <= minGain {
		return idx
	}
	best, ok := tb.findBestSplit(samples, sse)
	if !ok {
		return idx
	}
	left := make([]int, 0, len(samples))
	right := make([]int, 0, len(samples))
	for _, s := range samples {
		if tb.xData[s][best.feature] <= best.threshold {
			left = append(left, s)

		} else {
			right = append(right, s)
		}
	}
	tb.importance[best.feature] += best.gain
	leftIdx := tb.grow(left, depth+1)
	rightIdx := tb.grow(right, depth+1)
	tb.nodes[idx].Feature = best.feature
	tb.nodes[idx].Threshold = best.threshold
	tb.nodes[idx].Left = leftIdx
	tb.nodes[idx].Right = rightIdx
	return idx
}

func (tb *treeBuilder) candidateFeatures() []int {
	if tb.params.MaxFeatures <= 0 || tb.params.MaxFeatures >= tb.numFeatures {
		ans := make([]int, tb.numFeatures)
		for i := range ans {
			ans[i] = i
		}
		return ans
	}
	return tb.rnd.Perm(tb.numFeatures)[:tb.params.MaxFeatures]
}

func (tb *treeBuilder) findBestSplit(samples []int, nodeSSE float64) (split, bool) {
	var best split
	found := false
	order := make([]int, len(samples))
	var totalSum, totalSq float64
	for _, s := range samples {
		totalSum += tb.yData[s]
		totalSq += tb.yData[s] * tb.yData[s]
	}
	n := len(samples)
	minLeaf := tb.params.MinSamplesLeaf

	for _, f := range tb.candidateFeatures() {
		copy(order, samples)
		slices.SortFunc(order, func(a, b int) int {
			return cmp.Compare(tb.xData[a][f], tb.xData[b][f])
		})
		var leftSum, leftSq float64
		for i := 0; i < n-1; i++ {
			y := tb.yData[order[i]]
			leftSum += y
			leftSq += y * y
			numLeft := i + 1
			numRight := n - numLeft
			if numLeft < minLeaf || numRight < minLeaf {
				continue
			}
			xCurr, xNext := tb.xData[order[i]][f], tb.xData[order[i+1]][f]
			if xCurr == xNext {
				continue
			}
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			sseLeft := leftSq - leftSum*leftSum/float64(numLeft)
			sseRight := rightSq - rightSum*rightSum/float64(numRight)
			gain := nodeSSE - sseLeft - sseRight
			if gain > minGain && (!found || gain > best.gain) {
				best = split{
					feature:   f,
					threshold: xCurr + (xNext-xCurr)/2,
					gain:      gain,
				}
				found = true
			}
		}
	}
	return best, found
}
