package jobqueue

import (
	"sync"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/SupplierComply/internal/pkg/cache"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/env"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/mail"
)

// Manager owns the process-wide queue.
type Manager struct {
	queue   *Queue
	mu      sync.Mutex
	running bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton). Mail jobs are
// delivered over SMTP.
func GetManager() *Manager {
	managerOnce.Do(func() {
		q := NewQueue(cache.GetClient(), env.GetEnvInt("JOBQUEUE_WORKERS", 3))
		q.RegisterHandler(JobTypeSendEmail, SendEmailHandler(mail.NewSMTPMailer(mail.LoadSMTPConfig())))
		globalManager = &Manager{queue: q}
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue")
	m.queue.Start()
}

func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.queue.Stop()
	m.running = false
	log.Info("[JobQueue Manager] Stopped successfully")
}
