package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCount(t *testing.T) {
	tests := map[string]string{
		"12.0":  "12",
		"":      "0",
		" 7 ":   "7",
		"3":     "3",
		".5":    "0",
		"n/a":   "n/a",
		"1.2.3": "1",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeCount(in), "input %q", in)
	}
}

func TestIsCount(t *testing.T) {
	assert.True(t, IsCount("0"))
	assert.True(t, IsCount("30301"))
	assert.False(t, IsCount(""))
	assert.False(t, IsCount("-1"))
	assert.False(t, IsCount("12a"))
	assert.False(t, IsCount("Cumulative"))
}

func TestCount(t *testing.T) {
	norm, n, ok := Count("45.0")
	require.True(t, ok)
	assert.Equal(t, "45", norm)
	assert.Equal(t, int64(45), n)

	_, n, ok = Count("")
	require.True(t, ok)
	assert.Zero(t, n)

	_, _, ok = Count("header")
	assert.False(t, ok)
}

type sample struct {
	Name   string   `validate:"required"`
	Window int      `validate:"gt=0"`
	Areas  []string `validate:"min=1,dive,required"`
	URL    string   `validate:"required,url"`
}

func TestStruct(t *testing.T) {
	ok := sample{Name: "x", Window: 7, Areas: []string{"London"}, URL: "https://example.com/a.csv"}
	require.NoError(t, Struct(ok))

	err := Struct(sample{Window: 0, URL: "not a url"})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"sample.Name", "sample.Window", "sample.Areas", "sample.URL"}, fields)
	assert.Contains(t, err.Error(), "must be greater than 0")
}
