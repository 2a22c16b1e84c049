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

package prediction

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

const maxSuggestions = 3

type matchItem struct {
	Name     string
	Distance int
}

// bestMatches keeps up to `size` items with the smallest distance.
// Among items with the same distance, the earlier added wins.
type bestMatches struct {
	size int
	data []matchItem
}

func (bm *bestMatches) Names() []string {
	ans := make([]string, len(bm.data))
	for i, v := range bm.data {
		ans[i] = v.Name
	}
	return ans
}

func (bm *bestMatches) TryAdd(name string, dist int) bool {
	pos := -1
	for i := 0; i < len(bm.data); i++ {
		if dist < bm.data[i].Distance {
			pos = i
			break
		}
	}
	if pos == -1 && len(bm.data) < bm.size {
		bm.data = append(bm.data, matchItem{Name: name, Distance: dist})
		pos = len(bm.data) - 1

	} else if pos >= 0 {
		tmp := make([]matchItem, len(bm.data[pos:]))
		copy(tmp, bm.data[pos:])
		bm.data = bm.data[:pos]
		bm.data = append(bm.data, matchItem{Name: name, Distance: dist})
		bm.data = append(bm.data, tmp...)
	}
	if len(bm.data) > bm.size {
		bm.data = bm.data[:bm.size]
	}
	return pos > -1
}

func newBestMatches(size int) *bestMatches {
	return &bestMatches{
		size: size,
		data: make([]matchItem, 0, size+1),
	}
}

// suggestCountries finds known country names most similar to the provided
// (unknown) one. Names sharing too little with the input are not offered.
func suggestCountries(name string, known []string) []string {
	norm := strings.ToLower(strings.TrimSpace(name))
	maxDist := max(2, len([]rune(norm))/2)
	matches := newBestMatches(maxSuggestions)
	for _, k := range known {
		dist := levenshtein.ComputeDistance(norm, strings.ToLower(k))
		if dist <= maxDist {
			matches.TryAdd(k, dist)
		}
	}
	return matches.Names()
}
