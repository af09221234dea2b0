package simstore

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedder_Dimensions(t *testing.T) {
	e := HashEmbedder{}
	assert.Equal(t, 384, e.Dimensions())

	vec, err := e.Embed(context.Background(), "port is already allocated")
	require.NoError(t, err)
	assert.Len(t, vec, 384)
}

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := HashEmbedder{}
	a, err := e.Embed(context.Background(), "Bind for 0.0.0.0:80 failed: port is already allocated")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "Bind for 0.0.0.0:80 failed: port is already allocated")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestHashEmbedder_Normalized(t *testing.T) {
	e := HashEmbedder{}
	vec, err := e.Embed(context.Background(), "database connection timeout while deploying")
	require.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-4)
}

func TestHashEmbedder_DistinctTextsDiffer(t *testing.T) {
	e := HashEmbedder{}
	a, err := e.Embed(context.Background(), "imagepullbackoff on pod web-1")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), `relation "users" does not exist`)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashEmbedder_EmptyText(t *testing.T) {
	e := HashEmbedder{}
	vec, err := e.Embed(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, vec, 384)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestHashEmbedder_CaseInsensitive(t *testing.T) {
	e := HashEmbedder{}
	a, err := e.Embed(context.Background(), "PORT ALREADY ALLOCATED")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "port already allocated")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
