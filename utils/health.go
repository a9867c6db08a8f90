package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// CatalogHealth reports the state of the in-memory catalog snapshot.
type CatalogHealth struct {
	Loaded    bool      `json:"loaded"`
	Products  int       `json:"products"`
	FetchedAt time.Time `json:"fetchedAt,omitempty"`
	AgeHours  float64   `json:"ageHours"`
}

// HealthStatus represents current status of the service's dependencies.
type HealthStatus struct {
	Mongo     bool          `json:"mongo"`
	Redis     []bool        `json:"redis"`
	Catalog   CatalogHealth `json:"catalog"`
	CheckedAt time.Time     `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	healthMu      sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

// StartHealthMonitor performs periodic health checks and updates in-memory
// state. catalogStats reports the catalog snapshot's size and fetch time; a
// zero fetch time means no snapshot is held yet.
func StartHealthMonitor(redisClients []*redis.Client, mongoClient *mongo.Client, catalogStats func() (int, time.Time)) {
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()

		ctx := context.Background()

		for range ticker.C {
			var redisHealth []bool
			for _, client := range redisClients {
				err := client.Ping(ctx).Err()
				redisHealth = append(redisHealth, err == nil)
			}

			mongoHealthy := mongoClient.Ping(ctx, nil) == nil

			var catalog CatalogHealth
			if catalogStats != nil {
				products, fetchedAt := catalogStats()
				catalog = CatalogHealth{
					Loaded:    !fetchedAt.IsZero(),
					Products:  products,
					FetchedAt: fetchedAt,
				}
				if catalog.Loaded {
					catalog.AgeHours = time.Since(fetchedAt).Hours()
				}
			}

			healthMu.Lock()
			currentHealth = HealthStatus{
				Mongo:     mongoHealthy,
				Redis:     redisHealth,
				Catalog:   catalog,
				CheckedAt: time.Now(),
			}
			healthMu.Unlock()
		}
	}()
}
