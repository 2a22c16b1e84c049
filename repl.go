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

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/artifact"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/cnf"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/prediction"
	"github.com/rs/zerolog/log"
)

func ensureConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(homeDir, ".config", "gdpcast")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}

// openPredictor loads the stored model. Without a usable model,
// the fallback formula is used.
func openPredictor(conf *cnf.Conf) *prediction.Service {
	var bundle *artifact.Bundle
	db, err := artifact.OpenDB(conf.ArtifactsPath)
	if err != nil {
		log.Warn().Err(err).Msg("failed to open model artifacts")

	} else {
		defer db.Close()
		b, err := db.Load()
		if err != nil {
			log.Warn().Err(err).Msg("failed to load model artifacts")

		} else {
			bundle = &b
		}
	}
	srv, err := prediction.NewService(bundle)
	if err != nil {
		log.Warn().Err(err).Msg("invalid model artifacts")
		srv, _ = prediction.NewService(nil)
	}
	if srv.IsSimulation() {
		color.New(color.FgYellow).Fprintln(os.Stderr, "no trained model available, using fallback simulation")
	}
	return srv
}

// parseInput accepts either a JSON object or a list
// of space separated key=value pairs
func parseInput(input string) (map[string]any, error) {
	if strings.HasPrefix(input, "{") {
		dec := json.NewDecoder(strings.NewReader(input))
		dec.UseNumber()
		var ans map[string]any
		if err := dec.Decode(&ans); err != nil {
			return nil, fmt.Errorf("failed to parse JSON input: %w", err)
		}
		return ans, nil
	}
	ans := make(map[string]any)
	for _, item := range strings.Fields(input) {
		k, v, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("invalid item '%s', expected key=value", item)
		}
		ans[k] = strings.ReplaceAll(v, "_", " ")
	}
	return ans, nil
}

func printPredictionError(err error) {
	var vErr *prediction.ValidationError
	if errors.As(err, &vErr) {
		color.New(errColor).Println(vErr.Error())
		if len(vErr.Suggestions) > 0 {
			fmt.Printf("did you mean: %s?\n", strings.Join(vErr.Suggestions, ", "))

		} else if len(vErr.AvailableCountries) > 0 {
			fmt.Printf("available countries (first %d): %s\n",
				len(vErr.AvailableCountries), strings.Join(vErr.AvailableCountries, ", "))
		}
		if vErr.Kind == prediction.KindMissingFields {
			fmt.Printf("required fields: %s\n", strings.Join(prediction.RequiredFields(), ", "))
		}
		return
	}
	color.New(errColor).Printf("prediction failed: %s\n", err)
}

func printPrediction(res prediction.Result) {
	v := fmt.Sprintf("%.2f%%", res.Growth)
	if res.Growth < 0 {
		v = redColor(v)

	} else {
		v = greenColor(v)
	}
	fmt.Printf("%s: %s (method: %s)\n", titleColor("Predicted GDP growth"), v, res.Method)
	if res.Warning != "" {
		fmt.Println(yellowColor(res.Warning))
	}
	if res.Note != "" {
		fmt.Println(res.Note)
	}
}

func runActionPredict(conf *cnf.Conf, input string) {
	srv := openPredictor(conf)
	raw, err := parseInput(strings.TrimSpace(input))
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorPredictionFailed)
	}
	res, err := srv.Predict(raw)
	if err != nil {
		printPredictionError(err)
		os.Exit(exitErrorPredictionFailed)
	}
	printPrediction(res)
}

func runActionREPL(conf *cnf.Conf) {
	srv := openPredictor(conf)

	fmt.Println("GDP Growth Predictor")
	fmt.Println("Commands:")
	fmt.Println("  {\"Country\": ..., ...}      - predict using a JSON object")
	fmt.Println("  Country=Chile Exports=5.2 ...  - predict using key=value pairs (use _ for spaces in names)")
	fmt.Println("  countries                  - list known countries")
	fmt.Println("  status                     - show model status")
	fmt.Println("  exit                       - Exit REPL")
	fmt.Printf("\nRequired fields: %s\n\n", strings.Join(prediction.RequiredFields(), ", "))

	var historyFile string
	historyDir, err := ensureConfigDir()
	if err != nil {
		log.Error().Err(err).Msg("failed to determine user config directory - falling back to session-local history")

	} else {
		historyFile = filepath.Join(historyDir, "predict-history.txt")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      color.New(color.FgHiGreen).Sprintf("/gdp> "),
		HistoryFile: historyFile,
	})
	if err != nil {
		fmt.Printf("Error initializing readline: %v\n", err)
		os.Exit(exitErrorGeneralFailure)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nBye!")
				break
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}
		input := strings.TrimSpace(line)

		switch input {
		case "":
			continue
		case "exit":
			fmt.Println("Goodbye!")
			return
		case "countries":
			countries := srv.KnownCountries()
			if len(countries) == 0 {
				fmt.Println("no model loaded, any country is accepted")

			} else {
				fmt.Println(strings.Join(countries, ", "))
			}
			continue
		case "status":
			st := srv.Status()
			fmt.Printf("%s:\t%t\n", titleColor("Model loaded"), st.ModelLoaded)
			fmt.Printf("%s:\t%d\n", titleColor("Countries"), st.NumCountries)
			if st.ModelLoaded {
				fmt.Printf("%s:\t\t%s\n", titleColor("Run ID"), st.ModelRunID)
				fmt.Printf("%s:\t\t%s\n", titleColor("Model"), st.ModelInfo)
			}
			continue
		}

		raw, err := parseInput(input)
		if err != nil {
			color.New(errColor).Println(err)
			continue
		}
		res, err := srv.Predict(raw)
		if err != nil {
			printPredictionError(err)
			continue
		}
		printPrediction(res)
	}
}
