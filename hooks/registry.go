package hooks

import (
	"fmt"
	"sync"

	"github.com/example/info_propagation_sim/core"
)

// ConsumerFactory installs world-wide hooks into the broker.
type ConsumerFactory func(broker *Broker) error

// RealmConsumerFactory installs hooks scoped to one realm, typically an AI
// that only wants deliveries addressed to its own provinces.
type RealmConsumerFactory func(realm core.RealmID, broker *Broker) error

type registryEntry struct {
	desc    ConsumerDescriptor
	factory ConsumerFactory
}

type realmRegistryEntry struct {
	desc    ConsumerDescriptor
	factory RealmConsumerFactory
}

// Registry keeps consumer factories that can be activated by name from
// configuration or scenario files.
type Registry struct {
	mu     sync.RWMutex
	broker *Broker

	global map[string]registryEntry
	realm  map[string]realmRegistryEntry
}

// NewRegistry creates an empty consumer registry bound to a broker.
func NewRegistry(broker *Broker) *Registry {
	if broker == nil {
		broker = NewBroker()
	}
	return &Registry{
		broker: broker,
		global: make(map[string]registryEntry),
		realm:  make(map[string]realmRegistryEntry),
	}
}

// Broker returns the broker the registry installs consumers into.
func (r *Registry) Broker() *Broker {
	if r == nil {
		return nil
	}
	return r.broker
}

// RegisterGlobal registers a world-wide consumer factory.
func (r *Registry) RegisterGlobal(name string, desc ConsumerDescriptor, factory ConsumerFactory) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	if name == "" {
		return fmt.Errorf("consumer name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("consumer factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.global[name]; exists {
		return fmt.Errorf("global consumer already registered: %s", name)
	}

	r.global[name] = registryEntry{desc: desc, factory: factory}
	return nil
}

// RegisterRealm registers a realm-scoped consumer factory.
func (r *Registry) RegisterRealm(name string, desc ConsumerDescriptor, factory RealmConsumerFactory) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	if name == "" {
		return fmt.Errorf("consumer name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("consumer factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.realm[name]; exists {
		return fmt.Errorf("realm consumer already registered: %s", name)
	}

	r.realm[name] = realmRegistryEntry{desc: desc, factory: factory}
	return nil
}

// LoadGlobal activates the requested world-wide consumers.
func (r *Registry) LoadGlobal(names []string) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	for _, name := range names {
		entry, err := r.getGlobal(name)
		if err != nil {
			return err
		}
		if err := entry.factory(r.broker); err != nil {
			return fmt.Errorf("global consumer %s failed: %w", name, err)
		}
		r.broker.RegisterConsumerMetadata(entry.desc)
	}
	return nil
}

// LoadForRealm activates the requested realm-scoped consumers.
func (r *Registry) LoadForRealm(realm core.RealmID, names []string) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	for _, name := range names {
		entry, err := r.getRealm(name)
		if err != nil {
			return err
		}
		if err := entry.factory(realm, r.broker); err != nil {
			return fmt.Errorf("realm consumer %s failed: %w", name, err)
		}
		r.broker.RegisterConsumerMetadata(entry.desc)
	}
	return nil
}

// Descriptor returns metadata registered under the provided name.
func (r *Registry) Descriptor(name string) (ConsumerDescriptor, bool) {
	if r == nil {
		return ConsumerDescriptor{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, ok := r.global[name]; ok {
		return entry.desc, true
	}
	if entry, ok := r.realm[name]; ok {
		return entry.desc, true
	}
	return ConsumerDescriptor{}, false
}

func (r *Registry) getGlobal(name string) (registryEntry, error) {
	r.mu.RLock()
	entry, ok := r.global[name]
	r.mu.RUnlock()
	if !ok {
		return registryEntry{}, fmt.Errorf("global consumer not found: %s", name)
	}
	return entry, nil
}

func (r *Registry) getRealm(name string) (realmRegistryEntry, error) {
	r.mu.RLock()
	entry, ok := r.realm[name]
	r.mu.RUnlock()
	if !ok {
		return realmRegistryEntry{}, fmt.Errorf("realm consumer not found: %s", name)
	}
	return entry, nil
}
