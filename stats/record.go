package stats

import (
	"encoding/json"
	"math"
	"time"
)

const (
	RunKindTrain        = "train"
	RunKindEvalRandom   = "eval-random"
	RunKindEvalTemporal = "eval-temporal"
)

// PartitionScore contains regression metrics of a single data partition
// (train or test) as stored in the run log. Missing values are NaN.
type PartitionScore struct {
	NumSamples int
	R2         float64
	RMSE       float64
	MAE        float64
	MAPE       float64
}

func jsonFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// MarshalJSON encodes missing (NaN) values as null
func (ps PartitionScore) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		NumSamples int      `json:"numSamples"`
		R2         *float64 `json:"r2"`
		RMSE       *float64 `json:"rmse"`
		MAE        *float64 `json:"mae"`
		MAPE       *float64 `json:"mape"`
	}{
		NumSamples: ps.NumSamples,
		R2:         jsonFloat(ps.R2),
		RMSE:       jsonFloat(ps.RMSE),
		MAE:        jsonFloat(ps.MAE),
		MAPE:       jsonFloat(ps.MAPE),
	})
}

type RunRecord struct {

	// ID is a unique identifier of the run (uuid)
	ID string `json:"id"`

	// Datetime is the unix time the run finished
	Datetime int64 `json:"datetime"`

	// Kind says whether this was a production training run
	// or one of the evaluation runs (see RunKind* constants)
	Kind string `json:"kind"`

	// SplitYear is the temporal cutoff year, zero for random split runs
	SplitYear int `json:"splitYear"`

	Train PartitionScore `json:"train"`

	Test PartitionScore `json:"test"`

	// Comment is a free text note attached to the run
	Comment string `json:"comment"`
}

func (rec RunRecord) Time() time.Time {
	return time.Unix(rec.Datetime, 0)
}
