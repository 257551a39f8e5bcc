package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankAgainstEmptyCohortFails(t *testing.T) {
	_, err := Rank(1.0, nil)
	assert.ErrorIs(t, err, ErrEmptyCohort)
}

func TestRankOfMidCohortValue(t *testing.T) {
	rank, err := Rank(25, []float64{10, 20, 30, 40, 50})
	assert.Nil(t, err)
	assert.Equal(t, 40, rank)
}

func TestRankBelowEntireCohortIsZero(t *testing.T) {
	rank, err := Rank(5, []float64{10, 20, 30, 40, 50})
	assert.Nil(t, err)
	assert.Equal(t, 0, rank)
}

func TestRankAboveEntireCohortIsHundred(t *testing.T) {
	rank, err := Rank(99, []float64{10, 20, 30, 40, 50})
	assert.Nil(t, err)
	assert.Equal(t, 100, rank)
}

func TestRankJustBelowTopOfCohortIsHundred(t *testing.T) {
	// the first strictly-greater cohort value is the last one
	rank, err := Rank(45, []float64{10, 20, 30, 40, 50})
	assert.Nil(t, err)
	assert.Equal(t, 100, rank)
}

func TestRankIsMonotonicInValue(t *testing.T) {
	cohort := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5}
	sorted := SortedValues(map[string]float64{
		"s0": 3, "s1": 1, "s2": 4, "s3": 1.5, "s4": 5, "s5": 9,
		"s6": 2, "s7": 6, "s8": 5.5, "s9": 3.5, "s10": 5.1,
	})
	assert.Equal(t, len(cohort), len(sorted))

	previous := -1
	for value := 0.0; value <= 10.0; value += 0.5 {
		rank, err := Rank(value, sorted)
		assert.Nil(t, err)
		assert.GreaterOrEqual(t, rank, previous)
		assert.GreaterOrEqual(t, rank, 0)
		assert.LessOrEqual(t, rank, 100)
		previous = rank
	}
}

func TestMedianSplitHalvesTheCohort(t *testing.T) {
	samples := []SampleValue{
		{Sample: "a", Value: 5},
		{Sample: "b", Value: 1},
		{Sample: "c", Value: 3},
		{Sample: "d", Value: 4},
		{Sample: "e", Value: 2},
	}

	below, above, cutoff := MedianSplit(samples)

	// odd cohort: the larger half is below the cut
	assert.Len(t, below, 3)
	assert.Len(t, above, 2)
	assert.Equal(t, 3.0, cutoff)

	for _, lower := range below {
		for _, upper := range above {
			assert.LessOrEqual(t, lower.Value, upper.Value)
		}
	}
}

func TestQuartileSplitPartitionsTheCohort(t *testing.T) {
	var samples []SampleValue
	for i := 1; i <= 8; i++ {
		samples = append(samples, SampleValue{Sample: string(rune('a' + i)), Value: float64(i)})
	}

	groups, cutoffs := QuartileSplit(samples)

	total := 0
	for _, group := range groups {
		total += len(group)
	}
	assert.Equal(t, len(samples), total)

	assert.Equal(t, [3]float64{2, 4, 6}, cutoffs)
	assert.Len(t, groups[0], 2)
	assert.Len(t, groups[1], 2)
	assert.Len(t, groups[2], 2)
	assert.Len(t, groups[3], 2)
}

func TestSortedValuesAscending(t *testing.T) {
	sorted := SortedValues(map[string]float64{"a": 3, "b": 1, "c": 2})
	assert.Equal(t, []float64{1, 2, 3}, sorted)
}
