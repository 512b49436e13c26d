package cache

import (
	"github.com/canvascheck/canvascheck/pkg/config"
)

// Open picks a backend from configuration: Redis when an address is
// set, local files otherwise.
func Open(cfg config.CacheConfig) (Backend, error) {
	if cfg.Redis != "" {
		return NewRedisBackend(DefaultRedisConfig(cfg.Redis))
	}
	return NewDirBackend(cfg.Dir, 0)
}
