package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFloats(t *testing.T) {
	got, err := parseFloats(" 1.5, 2,,2.5 ")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2, 2.5}, got)

	got, err = parseFloats("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = parseFloats("1,two")
	assert.Error(t, err)
}

func TestOptionalFormatting(t *testing.T) {
	x := 12.345
	n := 2031
	assert.Equal(t, "12.35", optFloat(&x))
	assert.Equal(t, "n/a", optFloat(nil))
	assert.Equal(t, "2031", optInt(&n))
	assert.Equal(t, "never", optInt(nil))

	rate := 0.01234
	assert.Equal(t, "0.0123", optRate(&rate))
	assert.Equal(t, "n/a", optRate(nil))
}
