package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus is the latest snapshot of backing-store reachability.
type HealthStatus struct {
	Mongo     bool      `json:"mongo"`
	Redis     bool      `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	healthMu      sync.RWMutex
)

// GetHealthStatus returns the latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

// StartHealthMonitor pings the backing stores periodically and keeps an
// in-memory snapshot for the health endpoint, so health checks never hit
// the stores on the request path.
func StartHealthMonitor(redisClient *redis.Client, mongoClient *mongo.Client) {
	check := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		snapshot := HealthStatus{CheckedAt: time.Now()}
		if redisClient != nil {
			snapshot.Redis = redisClient.Ping(ctx).Err() == nil
		}
		if mongoClient != nil {
			snapshot.Mongo = mongoClient.Ping(ctx, nil) == nil
		}

		healthMu.Lock()
		currentHealth = snapshot
		healthMu.Unlock()
	}

	go func() {
		check()
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			check()
		}
	}()
}
