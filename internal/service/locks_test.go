package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockTable_MutualExclusionPerKey(t *testing.T) {
	table := newLockTable()

	const goroutines = 32
	const iterations = 200

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				table.lock("listing-1")
				counter++
				table.unlock("listing-1")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*iterations, counter)
}

func TestLockTable_EntriesAreReclaimed(t *testing.T) {
	table := newLockTable()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n))
			for j := 0; j < 50; j++ {
				table.lock(key)
				table.unlock(key)
			}
		}(i)
	}
	wg.Wait()

	table.mu.Lock()
	defer table.mu.Unlock()
	assert.Empty(t, table.locks, "released keys must not accumulate in the table")
}

func TestLockTable_IndependentKeysDoNotBlock(t *testing.T) {
	table := newLockTable()

	table.lock("listing-1")

	acquired := make(chan struct{})
	go func() {
		table.lock("listing-2")
		close(acquired)
		table.unlock("listing-2")
	}()

	<-acquired
	table.unlock("listing-1")
}
