package jobqueue

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/nibiaa/TenantDesk/internal/pkg/env"
)

// SyncFunc pulls the billing feed and returns the number of synced records.
type SyncFunc func(ctx context.Context) (int, error)

// Manager manages the global job queue and background tasks
type Manager struct {
	queue      *Queue
	syncFunc   SyncFunc
	syncTicker *time.Ticker
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		workers := 2
		if v, err := strconv.Atoi(env.GetEnv("JOB_QUEUE_WORKERS", "2")); err == nil && v > 0 {
			workers = v
		}
		globalManager = &Manager{
			queue:  NewQueue(workers),
			stopCh: make(chan struct{}),
		}
		globalManager.queue.RegisterProcessor(JobTypeProvisionNotify, processProvisionNotify)
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// SetSyncFunc attaches the periodic billing sync. Must be called before Start.
func (m *Manager) SetSyncFunc(fn SyncFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncFunc = fn
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

	if m.syncFunc != nil {
		interval := 30 * time.Minute
		if v, err := strconv.Atoi(env.GetEnv("BILLING_SYNC_INTERVAL_MINUTES", "30")); err == nil && v > 0 {
			interval = time.Duration(v) * time.Minute
		}
		m.syncTicker = time.NewTicker(interval)
		m.wg.Add(1)
		go m.billingSyncWorker()
	}
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	log.Info("[JobQueue Manager] Stopping")
	close(m.stopCh)
	m.running = false
	if m.syncTicker != nil {
		m.syncTicker.Stop()
	}
	m.mu.Unlock()

	m.wg.Wait()
	m.queue.Stop()
}

// billingSyncWorker keeps the local subscription mirror fresh in the
// background so the subscription list does not depend on manual syncs.
func (m *Manager) billingSyncWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			return
		case <-m.syncTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			count, err := m.syncFunc(ctx)
			cancel()
			if err != nil {
				log.Errorf("[JobQueue Manager] Background billing sync failed: %v", err)
				continue
			}
			log.Infof("[JobQueue Manager] Background billing sync done, %d records", count)
		}
	}
}
