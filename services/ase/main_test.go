package ase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDp4(t *testing.T) {
	refFwd, refRev, altFwd, altRev, ok := parseDp4("DP=60;DP4=20,18,11,9;MQ=50")

	assert.True(t, ok)
	assert.Equal(t, 20, refFwd)
	assert.Equal(t, 18, refRev)
	assert.Equal(t, 11, altFwd)
	assert.Equal(t, 9, altRev)
}

func TestParseDp4MissingField(t *testing.T) {
	_, _, _, _, ok := parseDp4("DP=60;MQ=50")
	assert.False(t, ok)
}

func TestParseDp4Malformed(t *testing.T) {
	_, _, _, _, ok := parseDp4("DP4=1,2,3")
	assert.False(t, ok)

	_, _, _, _, ok = parseDp4("DP4=a,b,c,d")
	assert.False(t, ok)
}
