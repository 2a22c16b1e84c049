// Copyright 2024 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2024 Department of Linguistics,
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

package cnf

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/eval/rf"
	"github.com/rs/zerolog/log"
)

const (
	dfltServerReadTimeoutSecs  = 10
	dfltServerWriteTimeoutSecs = 30
	dfltListenAddress          = "0.0.0.0"
	dfltListenPort             = 5000
	dfltArtifactsPath          = "gdpcast-artifacts"
	dfltTemporalSplitYear      = 2019
	dfltNumTrees               = 100
	dfltMaxDepth               = 10
	dfltMinSamplesSplit        = 5
	dfltMinSamplesLeaf         = 2
	dfltSeed                   = 42
	dfltTestFraction           = 0.2
	dfltReportPath             = "80_20_evaluation_report.txt"

	// PortEnvVar overrides the listenPort value
	PortEnvVar = "PORT"
)

type EvaluationConf struct {
	TestFraction float64 `json:"testFraction"`
	Seed         uint64  `json:"seed"`
	ReportPath   string  `json:"reportPath"`
}

type Conf struct {
	srcPath                string
	Logging                logging.LoggingConf `json:"logging"`
	ListenAddress          string              `json:"listenAddress"`
	PublicURL              string              `json:"publicUrl"`
	ListenPort             int                 `json:"listenPort"`
	ServerReadTimeoutSecs  int                 `json:"serverReadTimeoutSecs"`
	ServerWriteTimeoutSecs int                 `json:"serverWriteTimeoutSecs"`
	CorsAllowedOrigins     []string            `json:"corsAllowedOrigins"`

	// DatasetPath is a CSV file with country-year observations
	DatasetPath string `json:"datasetPath"`

	// ArtifactsPath is a directory of the Badger database
	// with the trained model and its country encoding
	ArtifactsPath string `json:"artifactsPath"`

	// WorkingDBPath is a SQLite file with the log of training
	// and evaluation runs. If empty, runs are not recorded.
	WorkingDBPath string `json:"workingDBPath"`

	// TemporalSplitYear - records of this year and later are
	// used only for testing
	TemporalSplitYear int            `json:"temporalSplitYear"`
	Forest            rf.Params      `json:"forest"`
	Evaluation        EvaluationConf `json:"evaluation"`
}

func (conf *Conf) SrcPath() string {
	return conf.srcPath
}

func (conf *Conf) ListenAddr() string {
	return fmt.Sprintf("%s:%d", conf.ListenAddress, conf.ListenPort)
}

func LoadConfig(path string) *Conf {
	if path == "" {
		log.Fatal().Msg("Cannot load config - path not specified")
	}
	rawData, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	var conf Conf
	conf.srcPath = path
	err = json.Unmarshal(rawData, &conf)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	return &conf
}

func validateForest(conf *rf.Params) error {
	if conf.NumTrees == 0 {
		conf.NumTrees = dfltNumTrees
		log.Warn().Int("value", dfltNumTrees).Msg("forest.numTrees not specified, using default")
	}
	if conf.MaxDepth == 0 {
		conf.MaxDepth = dfltMaxDepth
		log.Warn().Int("value", dfltMaxDepth).Msg("forest.maxDepth not specified, using default")

	} else if conf.MaxDepth < 0 {
		log.Info().Msg("forest.maxDepth is negative, tree depth will be unlimited")
		conf.MaxDepth = 0
	}
	if conf.MinSamplesSplit == 0 {
		conf.MinSamplesSplit = dfltMinSamplesSplit
		log.Warn().Int("value", dfltMinSamplesSplit).Msg("forest.minSamplesSplit not specified, using default")
	}
	if conf.MinSamplesLeaf == 0 {
		conf.MinSamplesLeaf = dfltMinSamplesLeaf
		log.Warn().Int("value", dfltMinSamplesLeaf).Msg("forest.minSamplesLeaf not specified, using default")
	}
	if conf.Seed == 0 {
		conf.Seed = dfltSeed
		log.Warn().Int("value", dfltSeed).Msg("forest.seed not specified, using default")
	}
	return conf.Validate()
}

func validateEvaluation(conf *EvaluationConf) error {
	if conf.TestFraction == 0 {
		conf.TestFraction = dfltTestFraction
		log.Warn().Float64("value", dfltTestFraction).Msg("evaluation.testFraction not specified, using default")
	}
	if conf.TestFraction <= 0 || conf.TestFraction >= 1 {
		return fmt.Errorf("evaluation.testFraction must be within (0, 1)")
	}
	if conf.Seed == 0 {
		conf.Seed = dfltSeed
		log.Warn().Int("value", dfltSeed).Msg("evaluation.seed not specified, using default")
	}
	if conf.ReportPath == "" {
		conf.ReportPath = dfltReportPath
		log.Warn().Str("value", dfltReportPath).Msg("evaluation.reportPath not specified, using default")
	}
	return nil
}

// ApplyDefaults fills in default values of missing configuration items
// and validates the result.
func ApplyDefaults(conf *Conf) error {
	if conf.ListenAddress == "" {
		conf.ListenAddress = dfltListenAddress
		log.Warn().Str("value", dfltListenAddress).Msg("listenAddress not specified, using default")
	}
	if envPort := os.Getenv(PortEnvVar); envPort != "" {
		port, err := strconv.Atoi(envPort)
		if err != nil {
			return fmt.Errorf("invalid value of %s environment variable: %w", PortEnvVar, err)
		}
		conf.ListenPort = port
		log.Info().Int("port", port).Msgf("listen port set via %s", PortEnvVar)
	}
	if conf.ListenPort == 0 {
		conf.ListenPort = dfltListenPort
		log.Warn().Int("value", dfltListenPort).Msg("listenPort not specified, using default")
	}
	if conf.ServerReadTimeoutSecs == 0 {
		conf.ServerReadTimeoutSecs = dfltServerReadTimeoutSecs
		log.Warn().Msgf(
			"serverReadTimeoutSecs not specified, using default: %d",
			dfltServerReadTimeoutSecs,
		)
	}
	if conf.ServerWriteTimeoutSecs == 0 {
		conf.ServerWriteTimeoutSecs = dfltServerWriteTimeoutSecs
		log.Warn().Msgf(
			"serverWriteTimeoutSecs not specified, using default: %d",
			dfltServerWriteTimeoutSecs,
		)
	}
	if conf.PublicURL == "" {
		conf.PublicURL = fmt.Sprintf("http://%s", conf.ListenAddr())
		log.Warn().Str("address", conf.PublicURL).Msg("publicUrl not set, using listenAddress")
	}
	if conf.DatasetPath == "" {
		log.Warn().Msg("datasetPath not specified - training and history data will not be available")
	}
	if conf.ArtifactsPath == "" {
		conf.ArtifactsPath = dfltArtifactsPath
		log.Warn().Str("value", dfltArtifactsPath).Msg("artifactsPath not specified, using default")
	}
	if conf.WorkingDBPath == "" {
		log.Warn().Msg("workingDBPath not specified - training runs will not be recorded")
	}
	if conf.TemporalSplitYear == 0 {
		conf.TemporalSplitYear = dfltTemporalSplitYear
		log.Warn().Int("value", dfltTemporalSplitYear).Msg("temporalSplitYear not specified, using default")
	}
	if err := validateForest(&conf.Forest); err != nil {
		return fmt.Errorf("invalid forest configuration: %w", err)
	}
	if err := validateEvaluation(&conf.Evaluation); err != nil {
		return fmt.Errorf("invalid evaluation configuration: %w", err)
	}
	return nil
}

func ValidateAndDefaults(conf *Conf) {
	if err := ApplyDefaults(conf); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
}
