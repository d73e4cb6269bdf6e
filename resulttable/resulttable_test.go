package resulttable

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinishWakesAwaiters(t *testing.T) {
	rt := New(2)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		rt.AwaitFinished()
	}()

	time.Sleep(10 * time.Millisecond)
	rt.Finish()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("AwaitFinished did not wake up after Finish")
	}
	assert.Equal(t, Finished, rt.Status())
}

func TestAbortClearsDataAndWakesWaiters(t *testing.T) {
	rt := New(1)
	require.NoError(t, rt.Data.PushBack([]uint64{1}))
	rt.Abort()
	assert.Equal(t, Aborted, rt.Status())
	assert.Equal(t, 0, rt.Size())
}

func TestTerminalStatesAreAbsorbing(t *testing.T) {
	rt := New(1)
	rt.Finish()
	rt.Abort()
	assert.Equal(t, Finished, rt.Status())
}

func TestIDToOptionalStringLocalVocabOnly(t *testing.T) {
	rt := New(1)
	rt.LocalVocab = []string{"alice", "bob"}

	s, ok := rt.IDToOptionalString(1)
	assert.True(t, ok)
	assert.Equal(t, "bob", s)

	_, ok = rt.IDToOptionalString(5)
	assert.False(t, ok)
}
