package keyValStore

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValStore_InMemory(t *testing.T) {
	kv, err := NewKeyValStore(StoreConfig{InMemory: true, Logger: logrus.New()})
	require.NoError(t, err)
	defer kv.Close()

	_, found, err := kv.Get("dir-blocks")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set("dir-blocks", []byte("payload")))
	value, found, err := kv.Get("dir-blocks")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("payload"), value)

	reads, writes := kv.Counters()
	assert.Equal(t, uint64(2), reads)
	assert.Equal(t, uint64(1), writes)
}

func TestKeyValStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	kv, err := NewKeyValStore(StoreConfig{Paths: []string{dir}})
	require.NoError(t, err)
	require.NoError(t, kv.Set("non-dir-blocks", []byte{1, 2, 3}))
	require.NoError(t, kv.Close())

	kv, err = NewKeyValStore(StoreConfig{Paths: []string{dir}})
	require.NoError(t, err)
	defer kv.Close()

	value, found, err := kv.Get("non-dir-blocks")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte{1, 2, 3}, value)
}

func TestKeyValStore_NoPath(t *testing.T) {
	_, err := NewKeyValStore(StoreConfig{})
	assert.Error(t, err)
}

func TestKeyValStore_NotEnoughSpace(t *testing.T) {
	_, err := NewKeyValStore(StoreConfig{Paths: []string{t.TempDir()}, MinimumFreeSpace: 1 << 30})
	assert.Error(t, err)
}
