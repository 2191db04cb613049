package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// StrategyRegistry stores pricing strategies by name.
type StrategyRegistry struct {
	mu         sync.RWMutex
	strategies map[string]PricingStrategy
}

// NewStrategyRegistry creates a new in-memory strategy registry.
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		mu:         sync.RWMutex{},
		strategies: make(map[string]PricingStrategy),
	}
}

// Register adds or replaces a strategy under name.
func (r *StrategyRegistry) Register(name string, strategy PricingStrategy) error {
	if name == "" {
		return errors.New("strategy name cannot be empty")
	}

	if strategy == nil {
		return errors.New("strategy cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.strategies[name] = strategy
	return nil
}

// Get retrieves a strategy by name.
func (r *StrategyRegistry) Get(name string) (PricingStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	strategy, exists := r.strategies[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q (registered: %s)",
			ErrStrategyNotFound, name, strings.Join(r.sortedNames(), ", "))
	}

	return strategy, nil
}

// sortedNames returns the registered names; the caller holds the lock.
func (r *StrategyRegistry) sortedNames() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
