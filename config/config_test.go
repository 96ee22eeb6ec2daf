package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.Bayesian.UseMedianFit, "MAP restore is the default")
}

func TestLoad(t *testing.T) {
	cfg, err := Load(strings.NewReader("bayesian:\n  use_median_fit: true\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Bayesian.UseMedianFit)
}

func TestLoadEmpty(t *testing.T) {
	cfg, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(strings.NewReader("bayesian: [not a mapping"))
	assert.Error(t, err)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("/nonexistent/bayesfit.yaml")
	assert.Error(t, err)
}
