package ws

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_SubscribeUnsubscribe(t *testing.T) {
	h := NewHub()

	assert.True(t, h.Subscribe("R", "a"))
	assert.False(t, h.Subscribe("R", "a"), "duplicate subscribe")
	assert.True(t, h.Subscribe("R", "b"))
	assert.True(t, h.Subscribe("S", "a"))

	assert.ElementsMatch(t, []string{"a", "b"}, h.Snapshot("R"))
	assert.Equal(t, []string{"R", "S"}, h.Rooms())

	assert.True(t, h.Unsubscribe("R", "a"))
	assert.False(t, h.Unsubscribe("R", "a"))
	assert.False(t, h.Unsubscribe("missing", "a"))

	assert.True(t, h.Unsubscribe("R", "b"))
	assert.Empty(t, h.Snapshot("R"))
	assert.Equal(t, []string{"S"}, h.Rooms(), "empty room pruned")
}

func TestHub_SnapshotIsACopy(t *testing.T) {
	h := NewHub()
	h.Subscribe("R", "a")

	snap := h.Snapshot("R")
	h.Subscribe("R", "b")
	h.Unsubscribe("R", "a")

	assert.Equal(t, []string{"a"}, snap)
	assert.Equal(t, []string{"b"}, h.Snapshot("R"))
}

func TestHub_Stats(t *testing.T) {
	h := NewHub()
	h.Subscribe("R", "a")
	h.Subscribe("R", "b")
	h.Subscribe("S", "a")

	st := h.Stats()
	assert.Equal(t, 2, st.Rooms)
	assert.Equal(t, 3, st.Subscriptions)
	assert.Equal(t, map[string]int{"R": 2, "S": 1}, st.PerRoom)
}

func TestHub_Concurrent(t *testing.T) {
	h := NewHub()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			h.Subscribe("R", id)
			_ = h.Snapshot("R")
			if i%2 == 0 {
				h.Unsubscribe("R", id)
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, h.Snapshot("R"), 25)
}
