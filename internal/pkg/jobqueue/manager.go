package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

const DefaultCounterFlushInterval = 5 * time.Second

// CounterFlusher moves buffered counters from Redis to the database.
type CounterFlusher interface {
	Flush(ctx context.Context) (int64, error)
}

// Manager runs the job queue together with the periodic background tasks
type Manager struct {
	queue              *Queue
	flusher            CounterFlusher
	flushInterval      time.Duration
	counterFlushTicker *time.Ticker
	stopCh             chan struct{}
	wg                 sync.WaitGroup
	mu                 sync.Mutex
	running            bool
}

// NewManager wires a queue with an optional counter flusher. A non-positive
// interval falls back to DefaultCounterFlushInterval.
func NewManager(queue *Queue, flusher CounterFlusher, flushInterval time.Duration) *Manager {
	if flushInterval <= 0 {
		flushInterval = DefaultCounterFlushInterval
	}
	return &Manager{
		queue:         queue,
		flusher:       flusher,
		flushInterval: flushInterval,
	}
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	if m.flusher != nil {
		m.counterFlushTicker = time.NewTicker(m.flushInterval)
		m.wg.Add(1)
		go m.counterFlushWorker(m.stopCh, m.counterFlushTicker)
	}

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.counterFlushTicker != nil {
		m.counterFlushTicker.Stop()
	}

	close(m.stopCh)
	m.running = false
	m.wg.Wait()

	// one last flush so buffered views survive a restart
	if m.flusher != nil {
		if err := m.FlushCountersOnce(); err != nil {
			log.Errorf("[JobQueue Manager] Final counter flush error: %v", err)
		}
	}

	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// counterFlushWorker periodically flushes buffered counters from Redis to DB
func (m *Manager) counterFlushWorker(stopCh <-chan struct{}, ticker *time.Ticker) {
	defer m.wg.Done()
	for {
		select {
		case <-stopCh:
			log.Info("[JobQueue Manager] Counter flush worker stopping")
			return
		case <-ticker.C:
			if err := m.FlushCountersOnce(); err != nil {
				log.Errorf("[JobQueue Manager] Counter flush error: %v", err)
			}
		}
	}
}

// FlushCountersOnce runs a single counter flush.
func (m *Manager) FlushCountersOnce() error {
	if m.flusher == nil {
		return nil
	}
	n, err := m.flusher.Flush(context.Background())
	if err != nil {
		return err
	}
	if n > 0 {
		log.Debugf("[JobQueue Manager] Flushed %d listing views", n)
	}
	return nil
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
