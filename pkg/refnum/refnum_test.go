package refnum

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsUniqueUnderConcurrency(t *testing.T) {
	const workers, perWorker = 16, 250

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, New(CasePrefix))
			}
			mu.Lock()
			for _, n := range local {
				seen[n] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*perWorker)
}

func TestValid(t *testing.T) {
	n := New(ContractPrefix)
	assert.True(t, Valid(ContractPrefix, n))
	assert.False(t, Valid(CasePrefix, n))
	assert.False(t, Valid(CasePrefix, "CASE-123"))
}
