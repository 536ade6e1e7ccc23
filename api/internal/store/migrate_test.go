package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations(t *testing.T) {
	ms, err := loadMigrations()
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "001", ms[0].version)
	assert.Equal(t, "002", ms[1].version)
	assert.Contains(t, ms[1].sql, "ordenes_telegram")
	assert.Len(t, ms[0].checksum, 64)
}
