package joblog_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/rohmanhakim/docs-crawler/internal/joblog"
	"github.com/stretchr/testify/assert"
)

func TestRing_SnapshotBeforeFull(t *testing.T) {
	r := joblog.NewRing(5)
	r.Append("a")
	r.Append("b")

	assert.Equal(t, []string{"a", "b"}, r.Snapshot())
}

func TestRing_EvictsOldestWhenFull(t *testing.T) {
	r := joblog.NewRing(3)
	r.Append("a")
	r.Append("b")
	r.Append("c")
	r.Append("d")

	assert.Equal(t, []string{"b", "c", "d"}, r.Snapshot())
}

func TestRing_WrapsMultipleTimes(t *testing.T) {
	r := joblog.NewRing(2)
	for i := 0; i < 7; i++ {
		r.Append(fmt.Sprintf("line-%d", i))
	}

	assert.Equal(t, []string{"line-5", "line-6"}, r.Snapshot())
}

func TestRing_DefaultSizeUsedWhenNonPositive(t *testing.T) {
	r := joblog.NewRing(0)
	r.Append("only")
	assert.Equal(t, []string{"only"}, r.Snapshot())
}

func TestRing_ConcurrentAppendIsSafe(t *testing.T) {
	r := joblog.NewRing(100)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Append(fmt.Sprintf("line-%d", i))
		}(i)
	}
	wg.Wait()

	assert.Len(t, r.Snapshot(), 50)
}
