package junction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedianOfOddList(t *testing.T) {
	assert.Equal(t, 3.0, medianOf([]float64{5, 1, 3, 2, 4}))
}

func TestMedianOfEvenListTakesUpperMiddle(t *testing.T) {
	assert.Equal(t, 3.0, medianOf([]float64{4, 1, 3, 2}))
}

func TestMedianOfEmptyListIsZero(t *testing.T) {
	assert.Equal(t, 0.0, medianOf(nil))
}
