package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/SupplierComply/internal/pkg/cache"
)

// HealthCacheKey holds the last StoreHealth as JSON.
const HealthCacheKey = "storage_health:barcodes"

// health monitor state
var (
	healthStopCh chan struct{}
)

// StoreHealth is the cached result of the last store check.
type StoreHealth struct {
	Backend   string    `json:"backend"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// StartHealthMonitor pings the store periodically and caches the result in Redis.
func StartHealthMonitor(store ObjectStore, interval time.Duration) {
	if healthStopCh != nil {
		return
	}
	if interval <= 0 {
		interval = 60 * time.Second
	}
	healthStopCh = make(chan struct{})
	stop := healthStopCh
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		log.Infof("[StorageHealth] Monitor started (interval: %s)", interval)

		// run once immediately
		RunHealthCheckOnce(store)

		for {
			select {
			case <-stop:
				log.Info("[StorageHealth] Monitor stopped")
				return
			case <-ticker.C:
				RunHealthCheckOnce(store)
			}
		}
	}()
}

// StopHealthMonitor stops the heartbeat
func StopHealthMonitor() {
	if healthStopCh != nil {
		close(healthStopCh)
		healthStopCh = nil
	}
}

// RunHealthCheckOnce checks the store and caches the result.
func RunHealthCheckOnce(store ObjectStore) StoreHealth {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h := StoreHealth{Backend: store.Backend(), Healthy: true, CheckedAt: time.Now()}
	if err := store.Ping(ctx); err != nil {
		h.Healthy = false
		h.Error = err.Error()
		log.Errorf("[StorageHealth] %s store unhealthy: %v", h.Backend, err)
	}

	b, _ := json.Marshal(h)
	if err := cache.Set(HealthCacheKey, string(b), 3*time.Minute); err != nil {
		log.Warnf("[StorageHealth] Cache set failed: %v", err)
	}
	return h
}

// CachedHealth returns the last cached result, if any.
func CachedHealth() (*StoreHealth, bool) {
	raw, err := cache.Get(HealthCacheKey)
	if err != nil || raw == "" {
		return nil, false
	}
	var h StoreHealth
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		return nil, false
	}
	return &h, true
}
