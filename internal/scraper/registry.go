package scraper

import (
	"fmt"
	"sort"

	"arcompras/comprasworker/config"
	"arcompras/comprasworker/services/cache"
)

// Registry keys, one per source adapter.
const (
	KeyBoletinTercera   = "boletin_tercera"
	KeyComprarTICs      = "comprar_tics"
	KeyComprarTICsRobot = "comprar_tics_robot"
)

// Factory builds one adapter from the run configuration.
type Factory func(cfg *config.Config, cacheSvc cache.CacheService) Scraper

var registry = map[string]Factory{
	KeyBoletinTercera: func(cfg *config.Config, cacheSvc cache.CacheService) Scraper {
		return NewBoletin(cfg, cacheSvc)
	},
	KeyComprarTICs: func(cfg *config.Config, cacheSvc cache.CacheService) Scraper {
		return NewComprar(cfg, cacheSvc)
	},
	KeyComprarTICsRobot: func(cfg *config.Config, cacheSvc cache.CacheService) Scraper {
		return NewComprarRobot(cfg, cacheSvc)
	},
}

// New builds the adapter registered under key.
func New(key string, cfg *config.Config, cacheSvc cache.CacheService) (Scraper, error) {
	factory, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("unknown scraper %q, available: %v", key, Keys())
	}
	return factory(cfg, cacheSvc), nil
}

// Keys lists the registered adapter keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
