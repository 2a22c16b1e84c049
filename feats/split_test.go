package feats

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func laggedSample() []LaggedRecord {
	ans := make([]LaggedRecord, 0, 30)
	for _, c := range []string{"Kenya", "Ghana", "Mali"} {
		for y := 2010; y < 2020; y++ {
			ans = append(ans, LaggedRecord{Country: c, Year: y, GDPGrowth: float64(y - 2000)})
		}
	}
	return ans
}

func recKey(rec LaggedRecord) string {
	return fmt.Sprintf("%s/%d", rec.Country, rec.Year)
}

func TestTemporalSplitPartitionsAll(t *testing.T) {
	data := laggedSample()
	for cutoff := 2005; cutoff <= 2025; cutoff++ {
		train, test := TemporalSplit(data, cutoff)
		assert.Equal(t, len(data), len(train)+len(test))
		seen := make(map[string]int)
		for _, rec := range train {
			seen[recKey(rec)]++
			assert.Less(t, rec.Year, cutoff)
		}
		for _, rec := range test {
			seen[recKey(rec)]++
			assert.GreaterOrEqual(t, rec.Year, cutoff)
		}
		assert.Len(t, seen, len(data))
		for k, v := range seen {
			assert.Equal(t, 1, v, "record %s must be in exactly one partition", k)
		}
		if len(train) > 0 && len(test) > 0 {
			assert.Less(t, YearSpan(train).Max, cutoff)
			assert.LessOrEqual(t, cutoff, YearSpan(test).Min)
		}
	}
}

func TestTemporalSplitPreservesOrder(t *testing.T) {
	data := laggedSample()
	train, test := TemporalSplit(data, 2015)
	require.NotEmpty(t, train)
	require.NotEmpty(t, test)
	assert.Equal(t, "Kenya", train[0].Country)
	assert.Equal(t, 2010, train[0].Year)
	assert.Equal(t, "Mali", train[len(train)-1].Country)
	assert.Equal(t, 2014, train[len(train)-1].Year)
	assert.Equal(t, "Kenya", test[0].Country)
	assert.Equal(t, 2015, test[0].Year)
}

func TestTemporalSplitDegenerate(t *testing.T) {
	data := laggedSample()
	train, test := TemporalSplit(data, 1900)
	assert.Empty(t, train)
	assert.Len(t, test, len(data))
	train, test = TemporalSplit(data, 2100)
	assert.Len(t, train, len(data))
	assert.Empty(t, test)
	assert.True(t, YearSpan(test).Empty)
	assert.Equal(t, "-", YearSpan(test).String())
}

func TestYearSpan(t *testing.T) {
	span := YearSpan(laggedSample())
	assert.Equal(t, YearRange{Min: 2010, Max: 2019}, span)
	assert.Equal(t, "2010 - 2019", span.String())
}

func TestRandomSplitDeterministic(t *testing.T) {
	data := laggedSample()
	train1, test1, err := RandomSplit(data, 0.2, 42)
	require.NoError(t, err)
	train2, test2, err := RandomSplit(data, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, train1, train2)
	assert.Equal(t, test1, test2)
	assert.Len(t, test1, 6)
	assert.Len(t, train1, 24)

	seen := make(map[string]bool)
	for _, rec := range append(train1, test1...) {
		seen[recKey(rec)] = true
	}
	assert.Len(t, seen, len(data))
}

func TestRandomSplitInvalidFraction(t *testing.T) {
	_, _, err := RandomSplit(laggedSample(), 0, 1)
	assert.Error(t, err)
	_, _, err = RandomSplit(laggedSample(), 1, 1)
	assert.Error(t, err)
}
