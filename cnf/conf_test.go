package cnf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	t.Setenv(PortEnvVar, "")
	var conf Conf
	require.NoError(t, ApplyDefaults(&conf))
	assert.Equal(t, "0.0.0.0", conf.ListenAddress)
	assert.Equal(t, 5000, conf.ListenPort)
	assert.Equal(t, "http://0.0.0.0:5000", conf.PublicURL)
	assert.Equal(t, 2019, conf.TemporalSplitYear)
	assert.Equal(t, 100, conf.Forest.NumTrees)
	assert.Equal(t, 10, conf.Forest.MaxDepth)
	assert.Equal(t, 5, conf.Forest.MinSamplesSplit)
	assert.Equal(t, 2, conf.Forest.MinSamplesLeaf)
	assert.Equal(t, 0, conf.Forest.MaxFeatures)
	assert.Equal(t, uint64(42), conf.Forest.Seed)
	assert.Equal(t, 0.2, conf.Evaluation.TestFraction)
	assert.Equal(t, uint64(42), conf.Evaluation.Seed)
	assert.Equal(t, "80_20_evaluation_report.txt", conf.Evaluation.ReportPath)
	assert.NotEmpty(t, conf.ArtifactsPath)
}

func TestApplyDefaultsPortFromEnv(t *testing.T) {
	t.Setenv(PortEnvVar, "8123")
	conf := Conf{ListenPort: 9000}
	require.NoError(t, ApplyDefaults(&conf))
	assert.Equal(t, 8123, conf.ListenPort)

	t.Setenv(PortEnvVar, "eighty")
	assert.Error(t, ApplyDefaults(&Conf{}))
}

func TestApplyDefaultsUnlimitedDepth(t *testing.T) {
	t.Setenv(PortEnvVar, "")
	conf := Conf{}
	conf.Forest.MaxDepth = -1
	require.NoError(t, ApplyDefaults(&conf))
	assert.Equal(t, 0, conf.Forest.MaxDepth)
}

func TestApplyDefaultsInvalidFraction(t *testing.T) {
	t.Setenv(PortEnvVar, "")
	conf := Conf{Evaluation: EvaluationConf{TestFraction: 1.2}}
	assert.Error(t, ApplyDefaults(&conf))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	data := `{
		"listenPort": 8080,
		"datasetPath": "/data/gdp.csv",
		"temporalSplitYear": 2015,
		"forest": {"numTrees": 20, "maxFeatures": 3},
		"evaluation": {"testFraction": 0.25}
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	conf := LoadConfig(path)
	assert.Equal(t, path, conf.SrcPath())
	assert.Equal(t, 8080, conf.ListenPort)
	assert.Equal(t, "/data/gdp.csv", conf.DatasetPath)
	assert.Equal(t, 2015, conf.TemporalSplitYear)
	assert.Equal(t, 20, conf.Forest.NumTrees)
	assert.Equal(t, 3, conf.Forest.MaxFeatures)
	assert.Equal(t, 0.25, conf.Evaluation.TestFraction)
}
