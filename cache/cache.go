// Package cache holds large objects that are read from disk once and then
// shared, such as strategy weight files. A long-running bot evaluates many
// positions with the same weights.
package cache

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/domino14/checkers/config"
)

type cache struct {
	sync.Mutex
	objects map[string]any
}

type loadFunc func(cfg *config.Config, key string) (any, error)

var (
	globalObjectCache *cache
	createOnce        sync.Once
)

func (c *cache) get(cfg *config.Config, key string, load loadFunc) (any, error) {
	c.Lock()
	defer c.Unlock()
	if obj, ok := c.objects[key]; ok {
		log.Debug().Str("key", key).Msg("getting-obj-from-cache")
		return obj, nil
	}
	log.Debug().Str("key", key).Msg("loading-into-cache")
	obj, err := load(cfg, key)
	if err != nil {
		return nil, err
	}
	c.objects[key] = obj
	return obj, nil
}

// Load returns the object for key, calling load the first time the key is
// seen. Failed loads are not cached.
func Load(cfg *config.Config, key string, load loadFunc) (any, error) {
	return global().get(cfg, key, load)
}

func global() *cache {
	createOnce.Do(func() {
		globalObjectCache = &cache{objects: make(map[string]any)}
	})
	return globalObjectCache
}

// Evict drops key so the next Load reads it again.
func Evict(key string) {
	c := global()
	c.Lock()
	defer c.Unlock()
	delete(c.objects, key)
}
