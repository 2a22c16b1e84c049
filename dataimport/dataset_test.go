package dataimport

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/feats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Country,Year,Population_Growth_Rate,Exports of goods and services_Growth_Rate,Imports of goods and services_Growth_Rate,Gross capital formation_Growth_Rate,Final consumption expenditure_Growth_Rate,Government_Expenditure_Growth_Rate,GDP_Growth_Rate,Extra
Chile,2001.0,1.1,5.2,4.8,3.5,2.8,2.0,3.3,x
Chile,2000,1.2,5.0,,3.1,2.5,1.9,4.1,y
Peru,2000,1.5,NaN,3.0,2.0,1.0,0.5,nan,z
`

func TestReadObservations(t *testing.T) {
	recs, err := ReadObservations(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "Chile", recs[0].Country)
	assert.Equal(t, 2001, recs[0].Year)
	assert.Equal(t, feats.Indicators{1.1, 5.2, 4.8, 3.5, 2.8, 2.0}, recs[0].Growth)
	assert.Equal(t, 3.3, recs[0].GDPGrowth)

	assert.True(t, math.IsNaN(recs[1].Growth[feats.Imports]))
	assert.True(t, recs[1].Growth.HasMissing())
	assert.True(t, math.IsNaN(recs[2].Growth[feats.Exports]))
	assert.True(t, math.IsNaN(recs[2].GDPGrowth))
}

func TestReadObservationsReorderedColumns(t *testing.T) {
	data := "GDP_Growth_Rate,Year,Country,Government_Expenditure_Growth_Rate," +
		"Final consumption expenditure_Growth_Rate,Gross capital formation_Growth_Rate," +
		"Imports of goods and services_Growth_Rate,Exports of goods and services_Growth_Rate," +
		"Population_Growth_Rate\n" +
		"3.3,1999,Chad,6,5,4,3,2,1\n"
	recs, err := ReadObservations(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, feats.Indicators{1, 2, 3, 4, 5, 6}, recs[0].Growth)
	assert.Equal(t, 1999, recs[0].Year)
}

func TestReadObservationsMissingColumn(t *testing.T) {
	_, err := ReadObservations(strings.NewReader("Country,Year,GDP_Growth_Rate\nChile,2000,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Population_Growth_Rate")
}

func TestReadObservationsInvalidValues(t *testing.T) {
	header := strings.SplitN(sampleCSV, "\n", 2)[0]
	_, err := ReadObservations(strings.NewReader(header + "\nChile,year,1,2,3,4,5,6,7,x\n"))
	assert.Error(t, err)
	_, err = ReadObservations(strings.NewReader(header + "\nChile,2000.5,1,2,3,4,5,6,7,x\n"))
	assert.Error(t, err)
	_, err = ReadObservations(strings.NewReader(header + "\nChile,2000,1,abc,3,4,5,6,7,x\n"))
	assert.Error(t, err)
}

func TestLoadObservations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))
	recs, err := LoadObservations(path)
	require.NoError(t, err)
	assert.Len(t, recs, 3)

	_, err = LoadObservations(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	recs, err := ReadObservations(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	hist := NewHistory(recs)
	assert.Equal(t, []string{"Chile", "Peru"}, hist.Countries())

	chile, ok := hist.ForCountry("Chile")
	require.True(t, ok)
	require.Len(t, chile, 2)
	assert.Equal(t, 2000, chile[0].Year)
	assert.Nil(t, chile[0].ImportsGrowth)
	require.NotNil(t, chile[1].GDPGrowth)
	assert.Equal(t, 3.3, *chile[1].GDPGrowth)

	peru, ok := hist.ForCountry("Peru")
	require.True(t, ok)
	assert.Nil(t, peru[0].GDPGrowth)
	assert.Nil(t, peru[0].ExportsGrowth)

	_, ok = hist.ForCountry("Narnia")
	assert.False(t, ok)

	var empty *History
	assert.True(t, empty.IsEmpty())
	assert.Empty(t, empty.Countries())
}
