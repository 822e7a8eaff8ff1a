package jobqueue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingFlusher struct {
	calls atomic.Int32
	err   error
}

func (f *countingFlusher) Flush(context.Context) (int64, error) {
	f.calls.Add(1)
	return 1, f.err
}

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager(NewQueue(nil, 1), nil, 0)
	assert.Equal(t, DefaultCounterFlushInterval, m.flushInterval)
	assert.False(t, m.IsRunning())
	assert.NotNil(t, m.GetQueue())
}

func TestManager_StopWithoutStart(t *testing.T) {
	m := NewManager(NewQueue(nil, 1), nil, 0)
	m.Stop()
	assert.False(t, m.IsRunning())
}

func TestManager_FlushesCounters(t *testing.T) {
	q, _ := newTestQueue(t)
	flusher := &countingFlusher{}
	m := NewManager(q, flusher, 10*time.Millisecond)

	m.Start()
	assert.True(t, m.IsRunning())
	assert.Eventually(t, func() bool { return flusher.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)

	before := flusher.calls.Load()
	m.Stop()
	assert.False(t, m.IsRunning())
	assert.GreaterOrEqual(t, flusher.calls.Load(), before+1, "stop runs a final flush")
}

func TestManager_FlushCountersOnce(t *testing.T) {
	m := NewManager(NewQueue(nil, 1), &countingFlusher{err: errors.New("db down")}, time.Second)
	assert.EqualError(t, m.FlushCountersOnce(), "db down")

	assert.NoError(t, NewManager(NewQueue(nil, 1), nil, time.Second).FlushCountersOnce())
}
