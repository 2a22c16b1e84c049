// Copyright 2024 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2024 Institute of the Czech National Corpus,
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

package dataimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/feats"
	"github.com/rs/zerolog/log"
)

const (
	ColCountry   = "Country"
	ColYear      = "Year"
	ColGDPGrowth = "GDP_Growth_Rate"
)

type columnMapping struct {
	country    int
	year       int
	gdp        int
	indicators [feats.NumIndicators]int
}

func mapColumns(header []string) (columnMapping, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		positions[strings.TrimSpace(h)] = i
	}
	missing := make([]string, 0, 3)
	find := func(name string) int {
		idx, ok := positions[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return idx
	}
	var ans columnMapping
	ans.country = find(ColCountry)
	ans.year = find(ColYear)
	for _, ind := range feats.AllIndicators() {
		ans.indicators[ind] = find(ind.DatasetColumn())
	}
	ans.gdp = find(ColGDPGrowth)
	if len(missing) > 0 {
		return ans, fmt.Errorf("missing dataset columns: %s", strings.Join(missing, ", "))
	}
	return ans, nil
}

// parseValue parses a numeric cell. Empty cells and NaN markers
// are treated as missing values (NaN).
func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "na", "null":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// parseYear accepts both integer and float notation ("1990.0")
func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not an integer year: %s", s)
	}
	return int(v), nil
}

// ReadObservations reads country-year observations from a CSV source
// with a header row. Columns are matched by name so their order
// does not matter and any additional columns are ignored.
func ReadObservations(r io.Reader) ([]feats.ObservationRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	reader.FieldsPerRecord = len(header)

	ans := make([]feats.ObservationRecord, 0, 4096)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset line %d: %w", line, err)
		}
		rec := feats.ObservationRecord{
			Country: strings.TrimSpace(row[cols.country]),
		}
		if rec.Country == "" {
			log.Warn().Int("line", line).Msg("skipping dataset row with empty country")
			continue
		}
		rec.Year, err = parseYear(row[cols.year])
		if err != nil {
			return nil, fmt.Errorf("invalid year at dataset line %d: %w", line, err)
		}
		for _, ind := range feats.AllIndicators() {
			rec.Growth[ind], err = parseValue(row[cols.indicators[ind]])
			if err != nil {
				return nil, fmt.Errorf(
					"invalid value of %s at dataset line %d: %w", ind.DatasetColumn(), line, err)
			}
		}
		rec.GDPGrowth, err = parseValue(row[cols.gdp])
		if err != nil {
			return nil, fmt.Errorf("invalid value of %s at dataset line %d: %w", ColGDPGrowth, line, err)
		}
		ans = append(ans, rec)
	}
	return ans, nil
}

// LoadObservations reads observations from a CSV file
func LoadObservations(path string) ([]feats.ObservationRecord, error) {
	isFile, err := fs.IsFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", path, err)
	}
	if !isFile {
		return nil, fmt.Errorf("failed to load dataset %s: not a file", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", path, err)
	}
	defer f.Close()
	ans, err := ReadObservations(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", path, err)
	}
	log.Info().
		Str("path", path).
		Int("numRecords", len(ans)).
		Msg("loaded dataset")
	return ans, nil
}
