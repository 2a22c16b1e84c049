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

package apiserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/czcorpus/cnc-gokit/unireq"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/prediction"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/stats"
	"github.com/rs/zerolog/log"
)

const (
	dfltRunsLimit = 20
)

var (
	errHistoryNotAvailable = errors.New("Historical data not available")
	errMissingCountryArg   = errors.New("Missing required parameter: country")
	errRunLogNotAvailable  = errors.New("Run log not available")
)

func (api *apiServer) handleInfo(ctx *gin.Context) {
	ans := serviceInfo{
		Message:       "GDP Growth Prediction API",
		Status:        "running",
		Version:       api.version,
		ModelLoaded:   api.predictor.Status().ModelLoaded,
		EncoderLoaded: api.predictor.Status().EncoderLoaded,
		DataLoaded:    !api.history.IsEmpty(),
		Model:         api.predictor.Status(),
		Endpoints: map[string]string{
			"/":              "GET - API information",
			"/api/countries": "GET - List all countries",
			"/api/history":   "GET - Historical data for a country (param: country)",
			"/api/runs":      "GET - Recorded training and evaluation runs (param: limit)",
			"/predict":       "POST - Predict GDP growth rate",
		},
		Note: "Model uses lagged features (T-1) to predict GDP at time T",
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

func (api *apiServer) handleCountries(ctx *gin.Context) {
	if api.history.IsEmpty() {
		uniresp.RespondWithErrorJSON(ctx, errHistoryNotAvailable, http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, api.history.Countries())
}

func (api *apiServer) handleHistory(ctx *gin.Context) {
	country := ctx.Query("country")
	if country == "" {
		uniresp.RespondWithErrorJSON(ctx, errMissingCountryArg, http.StatusBadRequest)
		return
	}
	if api.history.IsEmpty() {
		uniresp.RespondWithErrorJSON(ctx, errHistoryNotAvailable, http.StatusInternalServerError)
		return
	}
	points, ok := api.history.ForCountry(country)
	if !ok {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("No data found for country: %s", country), http.StatusNotFound)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, points)
}

func (api *apiServer) handleRuns(ctx *gin.Context) {
	if api.runs == nil {
		uniresp.RespondWithErrorJSON(ctx, errRunLogNotAvailable, http.StatusNotFound)
		return
	}
	limit, ok := unireq.GetURLIntArgOrFail(ctx, "limit", dfltRunsLimit)
	if !ok {
		return
	}
	var filter stats.ListFilter
	if kind := ctx.Query("kind"); kind != "" {
		filter = filter.SetKind(kind)
	}
	runs, err := api.runs.ListRuns(filter.SetLimit(limit))
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, runs)
}

// decodeRequestBody reads a JSON object from the request. An empty
// body is reported as a nil map so the validation can classify it.
func decodeRequestBody(body io.Reader) (map[string]any, error) {
	rawData, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(rawData)) == "" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(string(rawData)))
	dec.UseNumber()
	var ans map[string]any
	if err := dec.Decode(&ans); err != nil {
		return nil, fmt.Errorf("failed to parse request body: %w", err)
	}
	return ans, nil
}

func (api *apiServer) handlePredict(ctx *gin.Context) {
	raw, err := decodeRequestBody(ctx.Request.Body)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return
	}
	result, err := api.predictor.Predict(raw)
	if err != nil {
		var vErr *prediction.ValidationError
		if errors.As(err, &vErr) {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, newValidationErrorResponse(vErr))
			return
		}
		log.Error().
			Err(err).
			Any("request", raw).
			Msg("prediction failed")
		ctx.AbortWithStatusJSON(
			http.StatusInternalServerError,
			internalErrorResponse{
				Error:   errMsgPredictionFailed,
				Message: msgPredictionFailed,
			},
		)
		return
	}
	log.Debug().
		Str("country", result.Country).
		Str("method", string(result.Method)).
		Float64("growth", result.Growth).
		Msg("prediction done")
	uniresp.WriteJSONResponse(ctx.Writer, result)
}
