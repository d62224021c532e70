package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// writerConfig mimics the configuration structs the writer and catalog
// packages drive through this package.
type writerConfig struct {
	capacity int
	backing  string
}

func withCapacity(n int) Option[*writerConfig] {
	return New(func(c *writerConfig) error {
		if n <= 0 {
			return errors.New("capacity must be positive")
		}
		c.capacity = n

		return nil
	})
}

func withBacking(name string) Option[*writerConfig] {
	return NoError(func(c *writerConfig) {
		c.backing = name
	})
}

func TestApply_InOrder(t *testing.T) {
	cfg := &writerConfig{}

	err := Apply(cfg, withCapacity(64), withBacking("mmap"))
	require.NoError(t, err)
	require.Equal(t, 64, cfg.capacity)
	require.Equal(t, "mmap", cfg.backing)
}

func TestApply_NoOptions(t *testing.T) {
	cfg := &writerConfig{capacity: 7}
	require.NoError(t, Apply(cfg))
	require.Equal(t, 7, cfg.capacity)
}

func TestApply_StopsAtFirstError(t *testing.T) {
	cfg := &writerConfig{}

	err := Apply(cfg, withCapacity(1), withCapacity(-5), withBacking("mmap"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "capacity must be positive")
	require.Equal(t, 1, cfg.capacity)
	require.Empty(t, cfg.backing) // later options never run
}

func TestNoError_NeverFails(t *testing.T) {
	cfg := &writerConfig{}

	require.NoError(t, withBacking("buffered").apply(cfg))
	require.Equal(t, "buffered", cfg.backing)
}
