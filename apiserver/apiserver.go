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
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/artifact"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/cnf"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/dataimport"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/prediction"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/stats"
	"github.com/rs/zerolog/log"
)

// -----

type apiServer struct {
	conf      *cnf.Conf
	version   string
	server    *http.Server
	predictor *prediction.Service
	history   *dataimport.History
	runs      runLister
}

func (api *apiServer) newEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logging.GinMiddleware())
	engine.Use(uniresp.AlwaysJSONContentType())
	engine.Use(corsMiddleware(api.conf))
	engine.NoMethod(uniresp.NoMethodHandler)
	engine.NoRoute(uniresp.NotFoundHandler)

	engine.GET("/", api.handleInfo)
	engine.GET("/api/countries", api.handleCountries)
	engine.GET("/api/history", api.handleHistory)
	engine.GET("/api/runs", api.handleRuns)
	engine.POST("/predict", api.handlePredict)
	return engine
}

func (api *apiServer) Start(ctx context.Context) {
	if !api.conf.Logging.Level.IsDebugMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info().
		Str("address", api.conf.ListenAddr()).
		Bool("simulation", api.predictor.IsSimulation()).
		Msg("starting to listen")
	api.server = &http.Server{
		Handler:      api.newEngine(),
		Addr:         api.conf.ListenAddr(),
		WriteTimeout: time.Duration(api.conf.ServerWriteTimeoutSecs) * time.Second,
		ReadTimeout:  time.Duration(api.conf.ServerReadTimeoutSecs) * time.Second,
	}
	go func() {
		if err := api.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()
}

func (api *apiServer) Stop(ctx context.Context) error {
	log.Warn().Msg("shutting down GDP prediction HTTP API server")
	return api.server.Shutdown(ctx)
}

// -------------------------

// loadPredictor loads the model bundle stored by the last training.
// Any problem with the artifacts is reported and the returned service
// runs in the simulation mode.
func loadPredictor(conf *cnf.Conf) *prediction.Service {
	fallback := func() *prediction.Service {
		srv, _ := prediction.NewService(nil)
		return srv
	}
	db, err := artifact.OpenDB(conf.ArtifactsPath)
	if err != nil {
		log.Warn().Err(err).Str("path", conf.ArtifactsPath).Msg("cannot open model artifacts, using simulation")
		return fallback()
	}
	defer db.Close()
	bundle, err := db.Load()
	if errors.Is(err, artifact.ErrNotFound) {
		log.Warn().Str("path", conf.ArtifactsPath).Msg("no trained model found, using simulation")
		return fallback()

	} else if err != nil {
		log.Warn().Err(err).Str("path", conf.ArtifactsPath).Msg("cannot load model artifacts, using simulation")
		return fallback()
	}
	srv, err := prediction.NewService(&bundle)
	if err != nil {
		log.Warn().Err(err).Msg("invalid model artifacts, using simulation")
		return fallback()
	}
	log.Info().
		Str("runId", bundle.Meta.RunID).
		Time("created", bundle.Meta.CreatedAt).
		Int("numCountries", bundle.Encoding.Len()).
		Msg("loaded trained model")
	return srv
}

func loadHistory(conf *cnf.Conf) *dataimport.History {
	if conf.DatasetPath == "" {
		return dataimport.NewHistory(nil)
	}
	obs, err := dataimport.LoadObservations(conf.DatasetPath)
	if err != nil {
		log.Warn().Err(err).Str("path", conf.DatasetPath).Msg("failed to load historical data")
		return dataimport.NewHistory(nil)
	}
	ans := dataimport.NewHistory(obs)
	log.Info().
		Int("numCountries", len(ans.Countries())).
		Int("numRecords", len(obs)).
		Msg("loaded historical data")
	return ans
}

func Run(
	ctx context.Context,
	conf *cnf.Conf,
	version string,
) {

	server := &apiServer{
		conf:      conf,
		version:   version,
		predictor: loadPredictor(conf),
		history:   loadHistory(conf),
	}

	if conf.WorkingDBPath != "" {
		statsDB, err := stats.NewDatabase(conf.WorkingDBPath)
		if err == nil {
			err = statsDB.Init()
		}
		if err != nil {
			log.Warn().Err(err).Msg("failed to open run log, /api/runs will not be available")

		} else {
			defer statsDB.Close()
			server.runs = statsDB
		}
	}

	services := []service{server}
	for _, m := range services {
		m.Start(ctx)
	}
	<-ctx.Done()
	log.Warn().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for _, s := range services {
		wg.Add(1)
		go func(srv service) {
			defer wg.Done()
			if err := srv.Stop(shutdownCtx); err != nil {
				log.Error().Err(err).Type("service", srv).Msg("Error shutting down service")
			}
		}(s)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("Graceful shutdown completed")
	case <-shutdownCtx.Done():
		log.Warn().Msg("Shutdown timed out")
	}
}
