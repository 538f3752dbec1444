package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCache_RendersRequestedPageOnce(t *testing.T) {
	var calls []int
	cache := newPageCache(func(index int) ([]byte, error) {
		calls = append(calls, index)
		return []byte{byte(index)}, nil
	})

	img, err := cache.get(4)
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, img)

	img, err = cache.get(4)
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, img)
	assert.Equal(t, []int{4}, calls)
}

func TestPageCache_RemembersFailures(t *testing.T) {
	calls := 0
	cache := newPageCache(func(int) ([]byte, error) {
		calls++
		return nil, errors.New("pdftoppm exited 1")
	})

	_, err := cache.get(0)
	require.Error(t, err)
	_, err = cache.get(0)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
