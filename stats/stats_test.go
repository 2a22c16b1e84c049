package stats

import (
	"encoding/json"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *Database {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "runs.sqlite"))
	require.NoError(t, err)
	require.NoError(t, db.Init())
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRun(id string, datetime int64, kind string) RunRecord {
	return RunRecord{
		ID:        id,
		Datetime:  datetime,
		Kind:      kind,
		SplitYear: 2019,
		Train:     PartitionScore{NumSamples: 100, R2: 0.9, RMSE: 1.2, MAE: 0.8, MAPE: 35.5},
		Test:      PartitionScore{NumSamples: 20, R2: 0.4, RMSE: 2.5, MAE: 1.9, MAPE: 80.1},
		Comment:   "test run",
	}
}

func TestInitIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	assert.NoError(t, db.Init())
	ex, err := db.tableExists("training_run")
	require.NoError(t, err)
	assert.True(t, ex)
}

func TestAddAndListRuns(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.AddRun(sampleRun("a", 1000, RunKindTrain)))
	require.NoError(t, db.AddRun(sampleRun("b", 2000, RunKindEvalRandom)))
	require.NoError(t, db.AddRun(sampleRun("c", 3000, RunKindEvalTemporal)))

	recs, err := db.ListRuns(ListFilter{})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "c", recs[0].ID)
	assert.Equal(t, "a", recs[2].ID)
	assert.Equal(t, sampleRun("a", 1000, RunKindTrain), recs[2])

	recs, err = db.ListRuns(ListFilter{}.SetLimit(2))
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = db.ListRuns(ListFilter{}.SetKind(RunKindEvalRandom))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "b", recs[0].ID)
}

func TestAddRunWithMissingMetrics(t *testing.T) {
	db := openTestDB(t)
	rec := sampleRun("x", 1000, RunKindTrain)
	rec.Test = PartitionScore{R2: math.NaN(), RMSE: math.NaN(), MAE: math.NaN(), MAPE: math.NaN()}
	require.NoError(t, db.AddRun(rec))
	recs, err := db.ListRuns(ListFilter{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 0, recs[0].Test.NumSamples)
	assert.True(t, math.IsNaN(recs[0].Test.R2))
	assert.True(t, math.IsNaN(recs[0].Test.MAPE))
	assert.InDelta(t, 0.9, recs[0].Train.R2, 1e-12)
}

func TestAddRunDuplicateID(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.AddRun(sampleRun("a", 1000, RunKindTrain)))
	assert.Error(t, db.AddRun(sampleRun("a", 2000, RunKindTrain)))
}

func TestPartitionScoreJSONWithMissingValues(t *testing.T) {
	score := PartitionScore{NumSamples: 0, R2: math.NaN(), RMSE: math.NaN(), MAE: 1.5, MAPE: math.NaN()}
	data, err := json.Marshal(RunRecord{ID: "x", Test: score})
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	test := decoded["test"].(map[string]any)
	assert.Nil(t, test["r2"])
	assert.Equal(t, 1.5, test["mae"])
	assert.Equal(t, "x", decoded["id"])
}
