package sequence

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAllocator_Sequential(t *testing.T) {
	sut := NewMemoryAllocator()

	for i := int64(1); i <= 5; i++ {
		v, err := sut.Next(context.Background(), "order")
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
}

func TestMemoryAllocator_IndependentNames(t *testing.T) {
	sut := NewMemoryAllocator()

	v1, err := sut.Next(context.Background(), "order")
	require.NoError(t, err)
	v2, err := sut.Next(context.Background(), "invoice")
	require.NoError(t, err)

	assert.Equal(t, int64(1), v1)
	assert.Equal(t, int64(1), v2)
}

func TestMemoryAllocator_UniqueUnderConcurrency(t *testing.T) {
	const n = 200
	sut := NewMemoryAllocator()

	var wg sync.WaitGroup
	values := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := sut.Next(context.Background(), "order")
			assert.NoError(t, err)
			values <- v
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[int64]bool, n)
	for v := range values {
		assert.False(t, seen[v], "value %d allocated twice", v)
		seen[v] = true
		assert.GreaterOrEqual(t, v, int64(1))
		assert.LessOrEqual(t, v, int64(n))
	}
	assert.Len(t, seen, n)
	assert.Equal(t, int64(n), sut.Current("order"))
}
