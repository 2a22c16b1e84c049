package apiserver

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/cnf"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/prediction"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/stats"
)

const (
	errMsgInvalidInput     = "Invalid input"
	errMsgUnknownCountry   = "Unknown country"
	errMsgPredictionFailed = "Prediction failed"
	msgPredictionFailed    = "An unexpected error occurred during prediction"
)

type service interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
}

type runLister interface {
	ListRuns(filter stats.ListFilter) ([]stats.RunRecord, error)
}

// ------

type serviceInfo struct {
	Message       string            `json:"message"`
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	ModelLoaded   bool              `json:"model_loaded"`
	EncoderLoaded bool              `json:"encoder_loaded"`
	DataLoaded    bool              `json:"data_loaded"`
	Model         prediction.Status `json:"model"`
	Endpoints     map[string]string `json:"endpoints"`
	Note          string            `json:"note"`
}

// validationErrorResponse is a 400 response body. Fields, value,
// countries and suggestions are set only if relevant for the error kind.
type validationErrorResponse struct {
	Error              string                    `json:"error"`
	Kind               prediction.ValidationKind `json:"kind"`
	Message            string                    `json:"message"`
	Fields             []string                  `json:"fields,omitempty"`
	Value              any                       `json:"value,omitempty"`
	RequiredFields     []string                  `json:"required_fields"`
	AvailableCountries []string                  `json:"available_countries,omitempty"`
	Suggestions        []string                  `json:"suggestions,omitempty"`
}

func newValidationErrorResponse(err *prediction.ValidationError) validationErrorResponse {
	ans := validationErrorResponse{
		Error:              errMsgInvalidInput,
		Kind:               err.Kind,
		Message:            err.Error(),
		Fields:             err.Fields,
		RequiredFields:     prediction.RequiredFields(),
		AvailableCountries: err.AvailableCountries,
		Suggestions:        err.Suggestions,
	}
	switch err.Kind {
	case prediction.KindUnknownCountry:
		ans.Error = errMsgUnknownCountry
		ans.Value = err.Value
	case prediction.KindNotNumeric, prediction.KindOutOfRange:
		ans.Value = err.Value
	}
	return ans
}

type internalErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// -----

func corsMiddleware(conf *cnf.Conf) gin.HandlerFunc {
	return func(ctx *gin.Context) {

		var allowedOrigin string
		currOrigin := ctx.Request.Header.Get("Origin")
		for _, origin := range conf.CorsAllowedOrigins {
			if currOrigin == origin || origin == "*" {
				allowedOrigin = origin
				break
			}
		}
		if allowedOrigin != "" {
			ctx.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			ctx.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			ctx.Writer.Header().Set(
				"Access-Control-Allow-Headers",
				"Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With",
			)
			ctx.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		}

		if ctx.Request.Method == "OPTIONS" {
			ctx.AbortWithStatus(204)
			return
		}
		ctx.Next()
	}
}
