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

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/cnf"
)

const (
	actionTrain    = "train"
	actionEvaluate = "evaluate"
	actionServer   = "server"
	actionPredict  = "predict"
	actionREPL     = "repl"
	actionRuns     = "runs"
	actionVersion  = "version"
	actionHelp     = "help"
)

const (
	exitErrorGeneralFailure = iota + 1
	exitErrorFailedToLoadData
	exitErrorFailedToOpenArtifacts
	exitErrorFailedToOpenRunLog
	exitErrorTrainingFailed
	exitErrorEvaluationFailed
	exitErrorPredictionFailed
)

var (
	version   string
	buildDate string
	gitCommit string
)

// VersionInfo provides a detailed information about the actual build
type VersionInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("%s (build date: %s, commit: %s)", v.Version, v.BuildDate, v.GitCommit)
}

func topLevelUsage() {
	fmt.Fprintf(os.Stderr, "GDPCAST - GDP growth prediction based on lagged economic indicators\n")
	fmt.Fprintf(os.Stderr, "-----------------------------\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "\t%s\t\t\ttrain the model using temporal split and store it\n", actionTrain)
	fmt.Fprintf(os.Stderr, "\t%s\t\tcompare random and temporal split evaluation\n", actionEvaluate)
	fmt.Fprintf(os.Stderr, "\t%s\t\t\trun the HTTP prediction API\n", actionServer)
	fmt.Fprintf(os.Stderr, "\t%s\t\t\tpredict growth for a single JSON request\n", actionPredict)
	fmt.Fprintf(os.Stderr, "\t%s\t\t\tinteractive prediction console\n", actionREPL)
	fmt.Fprintf(os.Stderr, "\t%s\t\t\tlist recorded training and evaluation runs\n", actionRuns)
	fmt.Fprintf(os.Stderr, "\t%s\t\t\tshow version info\n", actionVersion)
	fmt.Fprintf(os.Stderr, "\nUse `gdpcast help ACTION` for information about a specific action\n\n")
}

func setup(confPath string) *cnf.Conf {
	conf := cnf.LoadConfig(confPath)
	if conf.Logging.Level == "" {
		conf.Logging.Level = "info"
	}
	logging.SetupLogging(conf.Logging)
	cnf.ValidateAndDefaults(conf)
	return conf
}

func cleanVersionInfo(v string) string {
	return strings.TrimLeft(strings.Trim(v, "'"), "v")
}

func runActionVersion(ver VersionInfo) {
	fmt.Fprintln(os.Stderr, "gdpcast version: ", ver)
}

func usageFn(cmd *flag.FlagSet, args, desc string) func() {
	return func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s [options] %s\n\t",
			filepath.Base(os.Args[0]), cmd.Name(), args)
		fmt.Fprintf(os.Stderr, "\n%s\n", desc)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		cmd.PrintDefaults()
	}
}

func main() {
	version := VersionInfo{
		Version:   cleanVersionInfo(version),
		BuildDate: cleanVersionInfo(buildDate),
		GitCommit: cleanVersionInfo(gitCommit),
	}

	cmdTrain := flag.NewFlagSet(actionTrain, flag.ExitOnError)
	trainDataset := cmdTrain.String("dataset", "", "CSV dataset path (overrides datasetPath from config)")
	trainSplitYear := cmdTrain.Int("split-year", 0, "first test year (overrides temporalSplitYear from config)")
	cmdTrain.Usage = usageFn(
		cmdTrain,
		"config.json",
		"Train the random forest on years before the split year, test it on the rest\n"+
			"and store the model with its country encoding.",
	)

	cmdEvaluate := flag.NewFlagSet(actionEvaluate, flag.ExitOnError)
	evalDataset := cmdEvaluate.String("dataset", "", "CSV dataset path (overrides datasetPath from config)")
	evalReport := cmdEvaluate.String("report", "", "report output path (overrides evaluation.reportPath from config)")
	cmdEvaluate.Usage = usageFn(
		cmdEvaluate,
		"config.json",
		"Evaluate the model on a random 80/20 split and on the temporal split and compare both.",
	)

	cmdServer := flag.NewFlagSet(actionServer, flag.ExitOnError)
	cmdServer.Usage = usageFn(cmdServer, "config.json", "Run the HTTP prediction API.")

	cmdPredict := flag.NewFlagSet(actionPredict, flag.ExitOnError)
	cmdPredict.Usage = usageFn(
		cmdPredict,
		"config.json '{\"Country\": \"Chile\", \"Population\": 1.1, ...}'",
		"Predict GDP growth using the stored model (or the fallback formula if there is no model).",
	)

	cmdREPL := flag.NewFlagSet(actionREPL, flag.ExitOnError)
	cmdREPL.Usage = usageFn(cmdREPL, "config.json", "Interactive prediction console.")

	cmdRuns := flag.NewFlagSet(actionRuns, flag.ExitOnError)
	runsLimit := cmdRuns.Int("limit", 20, "max. number of listed runs")
	runsKind := cmdRuns.String("kind", "", "list only runs of a specified kind (train, eval-random, eval-temporal)")
	cmdRuns.Usage = usageFn(cmdRuns, "config.json", "List recorded training and evaluation runs.")

	cmdVersion := flag.NewFlagSet(actionVersion, flag.ExitOnError)
	cmdVersion.Usage = func() {
		cmdVersion.PrintDefaults()
	}

	cmdHelp := flag.NewFlagSet(actionHelp, flag.ExitOnError)

	action := actionHelp
	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	switch action {
	case actionHelp:
		var subj string
		if len(os.Args) > 2 {
			cmdHelp.Parse(os.Args[2:])
			subj = cmdHelp.Arg(0)
		}
		switch subj {
		case actionTrain:
			cmdTrain.Usage()
		case actionEvaluate:
			cmdEvaluate.Usage()
		case actionServer:
			cmdServer.Usage()
		case actionPredict:
			cmdPredict.Usage()
		case actionREPL:
			cmdREPL.Usage()
		case actionRuns:
			cmdRuns.Usage()
		default:
			topLevelUsage()
		}
	case actionVersion:
		cmdVersion.Parse(os.Args[2:])
		runActionVersion(version)
	case actionTrain:
		cmdTrain.Parse(os.Args[2:])
		conf := setup(cmdTrain.Arg(0))
		if *trainDataset != "" {
			conf.DatasetPath = *trainDataset
		}
		if *trainSplitYear != 0 {
			conf.TemporalSplitYear = *trainSplitYear
		}
		runActionTrain(conf)
	case actionEvaluate:
		cmdEvaluate.Parse(os.Args[2:])
		conf := setup(cmdEvaluate.Arg(0))
		if *evalDataset != "" {
			conf.DatasetPath = *evalDataset
		}
		if *evalReport != "" {
			conf.Evaluation.ReportPath = *evalReport
		}
		runActionEvaluate(conf)
	case actionServer:
		cmdServer.Parse(os.Args[2:])
		conf := setup(cmdServer.Arg(0))
		runActionServer(conf, version)
	case actionPredict:
		cmdPredict.Parse(os.Args[2:])
		conf := setup(cmdPredict.Arg(0))
		runActionPredict(conf, cmdPredict.Arg(1))
	case actionREPL:
		cmdREPL.Parse(os.Args[2:])
		conf := setup(cmdREPL.Arg(0))
		runActionREPL(conf)
	case actionRuns:
		cmdRuns.Parse(os.Args[2:])
		conf := setup(cmdRuns.Arg(0))
		runActionListRuns(conf, *runsKind, *runsLimit)
	default:
		fmt.Fprintf(os.Stderr, "Unknown action, please use 'help' to get more information\n")
		os.Exit(exitErrorGeneralFailure)
	}
}
