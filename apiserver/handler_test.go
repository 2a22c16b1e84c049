package apiserver

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/artifact"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/cnf"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/dataimport"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/eval/rf"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/feats"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/prediction"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBody = `{"Country": "Chile", "Population": 1.1, "Exports": 5.2,
	"Imports": 4.8, "Investment": 3.5, "Consumption": 2.8, "Govt_Spend": 2.0}`

var countries = []string{"Brazil", "Chile", "Kenya", "Norway"}

type fakeRunLister struct {
	filter stats.ListFilter
}

func (fr *fakeRunLister) ListRuns(filter stats.ListFilter) ([]stats.RunRecord, error) {
	fr.filter = filter
	return []stats.RunRecord{{ID: "r1", Kind: stats.RunKindTrain, SplitYear: 2019}}, nil
}

func trainedPredictor(t *testing.T) *prediction.Service {
	xData := make([][]float64, 0, 80)
	yData := make([]float64, 0, 80)
	for i := 0; i < 80; i++ {
		lag := feats.Indicators{1, float64(i%7) - 3, 2, 1, float64(i%5) - 2, 1}
		xData = append(xData, feats.FeatureVector(i%len(countries), lag))
		yData = append(yData, 0.6*lag[feats.Consumption]+0.2*lag[feats.Exports])
	}
	model := rf.NewModel(rf.Params{NumTrees: 4, MaxDepth: 5, MinSamplesSplit: 2, MinSamplesLeaf: 1, Seed: 7})
	require.NoError(t, model.Train(context.Background(), xData, yData, "", nil))
	srv, err := prediction.NewService(&artifact.Bundle{
		Model:    model,
		Encoding: feats.FitCountryEncoding(countries),
		Meta:     artifact.Meta{RunID: "run-1", FeatureColumns: feats.FeatureColumnsSlice()},
	})
	require.NoError(t, err)
	return srv
}

func testHistory() *dataimport.History {
	obs := make([]feats.ObservationRecord, 0, 8)
	for _, c := range countries {
		obs = append(
			obs,
			feats.ObservationRecord{Country: c, Year: 2020, GDPGrowth: -3.1, Growth: feats.Indicators{1, 2, math.NaN(), 0, 0, 0}},
			feats.ObservationRecord{Country: c, Year: 2021, GDPGrowth: 4.2, Growth: feats.Indicators{1, 2, 3, 0, 0, 0}},
		)
	}
	return dataimport.NewHistory(obs)
}

func newTestServer(t *testing.T, predictor *prediction.Service, history *dataimport.History) *gin.Engine {
	gin.SetMode(gin.TestMode)
	api := &apiServer{
		conf:      &cnf.Conf{CorsAllowedOrigins: []string{"http://localhost:3000"}},
		version:   "test",
		predictor: predictor,
		history:   history,
	}
	return api.newEngine()
}

func doRequest(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	var ans map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ans))
	return ans
}

func TestInfo(t *testing.T) {
	engine := newTestServer(t, trainedPredictor(t), testHistory())
	w := doRequest(engine, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	ans := decodeMap(t, w)
	assert.Equal(t, "running", ans["status"])
	assert.Equal(t, true, ans["model_loaded"])
	assert.Equal(t, true, ans["encoder_loaded"])
	assert.Equal(t, true, ans["data_loaded"])
	assert.Contains(t, ans["endpoints"], "/predict")
}

func TestPredictWithModel(t *testing.T) {
	engine := newTestServer(t, trainedPredictor(t), testHistory())
	w := doRequest(engine, http.MethodPost, "/predict", validBody)
	require.Equal(t, http.StatusOK, w.Code)
	var res prediction.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, prediction.MethodModel, res.Method)
	assert.Equal(t, "Chile", res.Country)
}

func TestPredictSimulation(t *testing.T) {
	srv, err := prediction.NewService(nil)
	require.NoError(t, err)
	engine := newTestServer(t, srv, dataimport.NewHistory(nil))
	w := doRequest(engine, http.MethodPost, "/predict", validBody)
	require.Equal(t, http.StatusOK, w.Code)
	var res prediction.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, prediction.MethodSimulation, res.Method)
	assert.Equal(t, 2.24, res.Growth)
	assert.NotEmpty(t, res.Warning)
}

func TestPredictValidationErrors(t *testing.T) {
	engine := newTestServer(t, trainedPredictor(t), testHistory())

	w := doRequest(engine, http.MethodPost, "/predict", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	ans := decodeMap(t, w)
	assert.Equal(t, "Invalid input", ans["error"])
	assert.Equal(t, string(prediction.KindEmptyBody), ans["kind"])
	assert.Len(t, ans["required_fields"], 7)

	w = doRequest(engine, http.MethodPost, "/predict", `{"Country": "Chile", "Population": 1}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	ans = decodeMap(t, w)
	assert.Equal(t, string(prediction.KindMissingFields), ans["kind"])
	assert.Len(t, ans["fields"], 5)

	body := strings.Replace(validBody, `"Exports": 5.2`, `"Exports": 250`, 1)
	w = doRequest(engine, http.MethodPost, "/predict", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	ans = decodeMap(t, w)
	assert.Equal(t, string(prediction.KindOutOfRange), ans["kind"])
	assert.Equal(t, 250.0, ans["value"])

	w = doRequest(engine, http.MethodPost, "/predict", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPredictUnknownCountry(t *testing.T) {
	engine := newTestServer(t, trainedPredictor(t), testHistory())
	body := strings.Replace(validBody, "Chile", "Kenia", 1)
	w := doRequest(engine, http.MethodPost, "/predict", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	ans := decodeMap(t, w)
	assert.Equal(t, "Unknown country", ans["error"])
	assert.Equal(t, "Kenia", ans["value"])
	assert.Len(t, ans["available_countries"], len(countries))
	assert.Equal(t, []any{"Kenya"}, ans["suggestions"])
}

func TestCountriesAndHistory(t *testing.T) {
	engine := newTestServer(t, trainedPredictor(t), testHistory())

	w := doRequest(engine, http.MethodGet, "/api/countries", "")
	require.Equal(t, http.StatusOK, w.Code)
	var cList []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cList))
	assert.Equal(t, countries, cList)

	w = doRequest(engine, http.MethodGet, "/api/history?country=Kenya", "")
	require.Equal(t, http.StatusOK, w.Code)
	var points []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &points))
	require.Len(t, points, 2)
	assert.Equal(t, 2020.0, points[0]["Year"])
	assert.Nil(t, points[0]["Imports_Growth"])
	assert.Equal(t, 4.2, points[1]["GDP_Growth"])

	w = doRequest(engine, http.MethodGet, "/api/history", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(engine, http.MethodGet, "/api/history?country=Atlantis", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCountriesWithoutData(t *testing.T) {
	engine := newTestServer(t, trainedPredictor(t), dataimport.NewHistory(nil))
	w := doRequest(engine, http.MethodGet, "/api/countries", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	w = doRequest(engine, http.MethodGet, "/api/history?country=Kenya", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRuns(t *testing.T) {
	gin.SetMode(gin.TestMode)
	lister := &fakeRunLister{}
	api := &apiServer{
		conf:      &cnf.Conf{},
		predictor: trainedPredictor(t),
		history:   testHistory(),
		runs:      lister,
	}
	engine := api.newEngine()
	w := doRequest(engine, http.MethodGet, "/api/runs?limit=5&kind=train", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, lister.filter.Limit)
	require.NotNil(t, lister.filter.Kind)
	assert.Equal(t, stats.RunKindTrain, *lister.filter.Kind)

	api.runs = nil
	w = doRequest(api.newEngine(), http.MethodGet, "/api/runs", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORS(t *testing.T) {
	engine := newTestServer(t, trainedPredictor(t), testHistory())
	req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoute(t *testing.T) {
	engine := newTestServer(t, trainedPredictor(t), testHistory())
	w := doRequest(engine, http.MethodGet, "/nothing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
