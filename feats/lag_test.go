package feats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obs(country string, year int, base float64) ObservationRecord {
	return ObservationRecord{
		Country:   country,
		Year:      year,
		Growth:    Indicators{base, base + 1, base + 2, base + 3, base + 4, base + 5},
		GDPGrowth: base * 10,
	}
}

func TestBuildLaggedProducesNMinusOne(t *testing.T) {
	data := []ObservationRecord{
		obs("Austria", 2000, 1),
		obs("Austria", 2001, 2),
		obs("Austria", 2002, 3),
		obs("Austria", 2003, 4),
	}
	lagged, dropped := BuildLagged(data)
	require.Len(t, lagged, 3)
	assert.Equal(t, 1, dropped)
	for i, rec := range lagged {
		assert.Equal(t, data[i+1].Year, rec.Year)
		assert.Equal(t, data[i].Growth, rec.Lag1)
		assert.Equal(t, data[i+1].GDPGrowth, rec.GDPGrowth)
	}
	for _, rec := range lagged {
		assert.NotEqual(t, 2000, rec.Year)
	}
}

func TestBuildLaggedSortsByYearWithinCountry(t *testing.T) {
	data := []ObservationRecord{
		obs("Chile", 2003, 4),
		obs("Chile", 2001, 2),
		obs("Chile", 2002, 3),
	}
	lagged, _ := BuildLagged(data)
	require.Len(t, lagged, 2)
	assert.Equal(t, 2002, lagged[0].Year)
	assert.Equal(t, obs("Chile", 2001, 2).Growth, lagged[0].Lag1)
	assert.Equal(t, 2003, lagged[1].Year)
	assert.Equal(t, obs("Chile", 2002, 3).Growth, lagged[1].Lag1)
	// input must stay untouched
	assert.Equal(t, 2003, data[0].Year)
}

func TestBuildLaggedNeverCrossesCountries(t *testing.T) {
	data := []ObservationRecord{
		obs("Brazil", 2010, 1),
		obs("Angola", 2011, 7),
		obs("Brazil", 2011, 2),
		obs("Angola", 2010, 6),
		obs("Cuba", 2010, 9),
	}
	lagged, dropped := BuildLagged(data)
	require.Len(t, lagged, 2)
	assert.Equal(t, 3, dropped)
	assert.Equal(t, "Angola", lagged[0].Country)
	assert.Equal(t, obs("Angola", 2010, 6).Growth, lagged[0].Lag1)
	assert.Equal(t, "Brazil", lagged[1].Country)
	assert.Equal(t, obs("Brazil", 2010, 1).Growth, lagged[1].Lag1)
}

func TestBuildLaggedShiftsOverGaps(t *testing.T) {
	data := []ObservationRecord{
		obs("Denmark", 1990, 1),
		obs("Denmark", 1995, 2),
	}
	lagged, _ := BuildLagged(data)
	require.Len(t, lagged, 1)
	assert.Equal(t, 1995, lagged[0].Year)
	assert.Equal(t, data[0].Growth, lagged[0].Lag1)
}

func TestBuildLaggedDropsMissingValues(t *testing.T) {
	broken := obs("Egypt", 2001, 2)
	broken.Growth[Imports] = math.NaN()
	noGDP := obs("Egypt", 2003, 4)
	noGDP.GDPGrowth = math.NaN()
	data := []ObservationRecord{
		obs("Egypt", 2000, 1),
		broken,
		obs("Egypt", 2002, 3),
		noGDP,
		obs("Egypt", 2004, 5),
	}
	lagged, dropped := BuildLagged(data)
	// 2001 (own NaN), 2002 (NaN lag), 2003 (NaN GDP) are dropped, 2000 has no predecessor
	require.Len(t, lagged, 1)
	assert.Equal(t, 2004, lagged[0].Year)
	assert.Equal(t, noGDP.Growth, lagged[0].Lag1)
	assert.Equal(t, 4, dropped)
}

func TestBuildLaggedEmpty(t *testing.T) {
	lagged, dropped := BuildLagged(nil)
	assert.Empty(t, lagged)
	assert.Equal(t, 0, dropped)
}

func TestDistinctCountries(t *testing.T) {
	recs := []LaggedRecord{{Country: "Peru"}, {Country: "Chad"}, {Country: "Peru"}}
	assert.Equal(t, []string{"Chad", "Peru"}, DistinctCountries(recs))
}

func TestFeatureVectorLayout(t *testing.T) {
	v := FeatureVector(3, Indicators{1.1, 5.2, 4.8, 3.5, 2.8, 2.0})
	assert.Equal(t, []float64{3, 1.1, 5.2, 4.8, 3.5, 2.8, 2.0}, v)
	assert.Len(t, v, len(FeatureColumns))
	for _, ind := range AllIndicators() {
		assert.Contains(t, FeatureColumns[int(ind)+1], ind.RequestField())
	}
	assert.True(t, SameColumns(FeatureColumnsSlice()))
	assert.False(t, SameColumns([]string{"Country_Encoded"}))
}
