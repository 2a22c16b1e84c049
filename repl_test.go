package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInputJSON(t *testing.T) {
	ans, err := parseInput(`{"Country": "Chile", "Exports": 5.2}`)
	require.NoError(t, err)
	assert.Equal(t, "Chile", ans["Country"])
	assert.Equal(t, json.Number("5.2"), ans["Exports"])

	_, err = parseInput(`{"Country": `)
	assert.Error(t, err)
}

func TestParseInputPairs(t *testing.T) {
	ans, err := parseInput("Country=United_States Govt_Spend=2.0 Exports=-1")
	require.NoError(t, err)
	assert.Equal(t, "United States", ans["Country"])
	assert.Equal(t, "2.0", ans["Govt_Spend"])
	assert.Equal(t, "-1", ans["Exports"])

	_, err = parseInput("Country Chile")
	assert.Error(t, err)
}
