package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "chatty"
	require.ErrorContains(t, cfg.Validate(), "log level")
}

func TestValidate_OutputFormat(t *testing.T) {
	cfg := DefaultConfig()
	for _, format := range []string{"text", "json", "csv", "xlsx", ""} {
		cfg.Output.Format = format
		assert.NoError(t, cfg.Validate(), format)
	}

	cfg.Output.Format = "pdf"
	require.ErrorContains(t, cfg.Validate(), "output format")
}

func TestValidate_Extraction(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extraction.Shape = "spreadsheet"
	require.ErrorContains(t, cfg.Validate(), "shape")

	cfg = DefaultConfig()
	cfg.Extraction.ClusterTolerance = 0
	require.ErrorContains(t, cfg.Validate(), "cluster tolerance")

	cfg = DefaultConfig()
	cfg.Extraction.TimeoutSec = -1
	require.ErrorContains(t, cfg.Validate(), "timeout")
}

func TestValidate_Server(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = 0
	require.ErrorContains(t, cfg.Validate(), "port")

	cfg = DefaultConfig()
	cfg.Server.Port = 70000
	require.ErrorContains(t, cfg.Validate(), "port")

	cfg = DefaultConfig()
	cfg.Server.MaxUploadMB = 0
	require.ErrorContains(t, cfg.Validate(), "upload")
}

func TestValidate_BatchWorkers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Batch.Workers = 0
	require.ErrorContains(t, cfg.Validate(), "workers")
}

func TestToBatchConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extraction.Shape = "prose"
	cfg.Extraction.TimeoutSec = 5
	cfg.Batch.Workers = 2
	cfg.Batch.Merge = true
	cfg.Output.Format = "csv"
	cfg.Output.File = "out.csv"

	bc := cfg.ToBatchConfig()
	assert.Equal(t, "prose", bc.Shape)
	assert.Equal(t, 5*time.Second, bc.Timeout)
	assert.Equal(t, 2, bc.Workers)
	assert.True(t, bc.Merge)
	assert.Equal(t, "csv", bc.Format)
	assert.Equal(t, "out.csv", bc.OutputFile)
}

func TestToPipelineBuilder(t *testing.T) {
	cfg := DefaultConfig()
	p, err := cfg.ToPipelineBuilder().Build()
	require.NoError(t, err)
	assert.NotNil(t, p)
}
