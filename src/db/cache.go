package db

import (
	"log"
	"sync"

	"github.com/dgraph-io/ristretto"
)

// Cache keys are tracked per entity type so a whole type can be invalidated
// at once (a transaction sync must drop every cached profile, an allocation
// must drop the owner's goal listings).
var (
	Cache            *ristretto.Cache
	ProfileCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
	GoalCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
)

func InitCache() {
	var err error
	Cache, err = ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}
}

// Profile Cache Functions
func SetProfileCache(cacheKey string, value interface{}) {
	ProfileCacheKeys.Lock()
	ProfileCacheKeys.m[cacheKey] = struct{}{}
	ProfileCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func DelProfileCache(cacheKey string) {
	ProfileCacheKeys.Lock()
	delete(ProfileCacheKeys.m, cacheKey)
	ProfileCacheKeys.Unlock()
	Cache.Del(cacheKey)
}

func ClearAllProfileCaches() {
	ProfileCacheKeys.Lock()
	for key := range ProfileCacheKeys.m {
		Cache.Del(key)
	}
	ProfileCacheKeys.m = make(map[string]struct{})
	ProfileCacheKeys.Unlock()
}

// Goal Cache Functions
func SetGoalCache(cacheKey string, value interface{}) {
	GoalCacheKeys.Lock()
	GoalCacheKeys.m[cacheKey] = struct{}{}
	GoalCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func DelGoalCache(cacheKey string) {
	GoalCacheKeys.Lock()
	delete(GoalCacheKeys.m, cacheKey)
	GoalCacheKeys.Unlock()
	Cache.Del(cacheKey)
}

func ClearAllGoalCaches() {
	GoalCacheKeys.Lock()
	for key := range GoalCacheKeys.m {
		Cache.Del(key)
	}
	GoalCacheKeys.m = make(map[string]struct{})
	GoalCacheKeys.Unlock()
}
