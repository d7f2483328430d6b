package battle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Battles resolve turns in parallel while sharing the manager's single
// random source, so the source must be safe for concurrent use. Run
// with -race.
func TestNewRandSafeAcrossConcurrentBattles(t *testing.T) {
	rng := NewRand()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 300; i++ {
				s := basicWildMatchup(100, 50)
				events := ResolveWildTurn(s, rng)
				if len(events) == 0 {
					t.Error("turn resolved without events")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestNewRandRanges(t *testing.T) {
	rng := NewRand()
	for i := 0; i < 1000; i++ {
		f := rng.Float64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
		assert.Less(t, rng.Intn(3), 3)
	}
}
