package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexLocks_SerialisesSameIndex(t *testing.T) {
	locks := NewIndexLocks()

	unlock := locks.Lock("verses")
	assert.Nil(t, locks.TryLock("verses"), "busy index")

	other := locks.TryLock("other")
	require.NotNil(t, other, "different index is independent")
	other()

	unlock()
	again := locks.TryLock("verses")
	require.NotNil(t, again)
	again()
}

func TestIndexLocks_Concurrent(t *testing.T) {
	locks := NewIndexLocks()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("verses")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}
