package loader

import (
	"runtime"
	"testing"
	"time"

	"github.com/poiesic/bulkload/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, runtime.NumCPU(), cfg.Parallelism)
	assert.Equal(t, ModeConcurrent, cfg.Mode)
	assert.Equal(t, DrainEachFile, cfg.DrainEach)
	assert.False(t, cfg.ContinueOnError)
	assert.Equal(t, 1, cfg.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryDelay)
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithDatabase("bookstore"),
		WithBatchSize(7),
		WithParallelism(3),
		WithMode(ModeSequential),
		WithDrain(DrainEachRun),
		WithContinueOnError(true),
		WithRetry(5, time.Second),
		WithReportInterval(10),
	)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, &Config{
		Database:        "bookstore",
		BatchSize:       7,
		Parallelism:     3,
		Mode:            ModeSequential,
		DrainEach:       DrainEachRun,
		ContinueOnError: true,
		MaxAttempts:     5,
		RetryDelay:      time.Second,
		ReportInterval:  10,
	}, cfg)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		opt    ConfigOption
		target error
	}{
		{"zero batch size", WithBatchSize(0), core.ErrInvalidBatchSize},
		{"negative batch size", WithBatchSize(-3), core.ErrInvalidBatchSize},
		{"empty database", WithDatabase(""), core.ErrInvalidDatabaseName},
		{"database with colon", WithDatabase("a:b"), core.ErrInvalidDatabaseName},
		{"zero parallelism", WithParallelism(0), ErrInvalidConfig},
		{"unknown mode", WithMode("eager"), ErrInvalidConfig},
		{"unknown drain", WithDrain("never"), ErrInvalidConfig},
		{"zero attempts", WithRetry(0, 0), ErrInvalidMaxAttempts},
		{"negative delay", WithRetry(2, -time.Second), ErrInvalidConfig},
		{"negative report interval", WithReportInterval(-1), ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig(tt.opt).Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}
