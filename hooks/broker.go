// Package hooks is the engine's output port: consumers register interest in
// delivery, drop, and propagation-run events, and the broker fans each event
// out synchronously in registration order. Emission is fire-and-forget; a
// panicking consumer is contained and never unwinds into the engine.
package hooks

import (
	"sync"
	"time"

	"github.com/example/info_propagation_sim/core"
)

// ConsumerCategory represents the high-level role of a consumer.
type ConsumerCategory string

const (
	// ConsumerCategoryAI covers realm decision systems reacting to news.
	ConsumerCategoryAI ConsumerCategory = "ai"
	// ConsumerCategoryInstrumentation covers metrics and diagnostics.
	ConsumerCategoryInstrumentation ConsumerCategory = "instrumentation"
	// ConsumerCategoryTrace covers logging and replay capture.
	ConsumerCategoryTrace ConsumerCategory = "trace"
)

// ConsumerDescriptor describes a consumer registered with the broker.
type ConsumerDescriptor struct {
	Name        string
	Category    ConsumerCategory
	Description string
}

// RunTrace summarizes one finished propagation for instrumentation hooks.
type RunTrace struct {
	Packet     core.InformationPacket
	Targeted   bool
	Deliveries int
	Dropped    uint64
	Elapsed    time.Duration
}

// DeliveryHook receives one event per province that accepted a packet.
type DeliveryHook func(ev core.DeliveryEvent)

// DropHook receives one event per cut propagation branch.
type DropHook func(ev core.DropEvent)

// RunHook receives one summary per propagation run.
type RunHook func(tr RunTrace)

// DeliverySink is the engine's delivery output dependency.
type DeliverySink interface {
	EmitDelivery(ev core.DeliveryEvent)
}

// DropSink receives drop events; sinks may implement it in addition to
// DeliverySink.
type DropSink interface {
	EmitDrop(ev core.DropEvent)
}

// RunSink receives run summaries.
type RunSink interface {
	EmitRun(tr RunTrace)
}

// HookBundle groups the handlers belonging to one consumer.
type HookBundle struct {
	Delivery []DeliveryHook
	Drop     []DropHook
	Run      []RunHook
}

// Broker coordinates consumer registration and event fan-out.
type Broker struct {
	mu sync.RWMutex

	deliveryHooks []DeliveryHook
	dropHooks     []DropHook
	runHooks      []RunHook

	consumerCatalog map[ConsumerCategory][]ConsumerDescriptor
	consumerIndex   map[string]ConsumerDescriptor
}

// NewBroker creates an empty broker instance.
func NewBroker() *Broker {
	return &Broker{
		consumerCatalog: make(map[ConsumerCategory][]ConsumerDescriptor),
		consumerIndex:   make(map[string]ConsumerDescriptor),
	}
}

// RegisterDelivery adds a hook executed for every successful delivery.
func (b *Broker) RegisterDelivery(h DeliveryHook) {
	if b == nil || h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deliveryHooks = append(b.deliveryHooks, h)
}

// RegisterDrop adds a hook executed for every dropped branch.
func (b *Broker) RegisterDrop(h DropHook) {
	if b == nil || h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dropHooks = append(b.dropHooks, h)
}

// RegisterRun adds a hook executed once per propagation run.
func (b *Broker) RegisterRun(h RunHook) {
	if b == nil || h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.runHooks = append(b.runHooks, h)
}

// EmitDelivery fans a delivery out to all registered hooks.
func (b *Broker) EmitDelivery(ev core.DeliveryEvent) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]DeliveryHook, len(b.deliveryHooks))
	copy(handlers, b.deliveryHooks)
	b.mu.RUnlock()
	for _, handler := range handlers {
		safeCall(func() { handler(ev) })
	}
}

// EmitDrop fans a drop out to all registered hooks.
func (b *Broker) EmitDrop(ev core.DropEvent) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]DropHook, len(b.dropHooks))
	copy(handlers, b.dropHooks)
	b.mu.RUnlock()
	for _, handler := range handlers {
		safeCall(func() { handler(ev) })
	}
}

// EmitRun fans a run summary out to all registered hooks.
func (b *Broker) EmitRun(tr RunTrace) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]RunHook, len(b.runHooks))
	copy(handlers, b.runHooks)
	b.mu.RUnlock()
	for _, handler := range handlers {
		safeCall(func() { handler(tr) })
	}
}

// safeCall contains consumer panics so one bad hook cannot abort a
// propagation or starve later hooks.
func safeCall(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}

// RegisterBundle registers a consumer descriptor together with all of its
// hook handlers.
func (b *Broker) RegisterBundle(desc ConsumerDescriptor, bundle HookBundle) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.registerDescriptorLocked(desc)

	if len(bundle.Delivery) > 0 {
		b.deliveryHooks = append(b.deliveryHooks, bundle.Delivery...)
	}
	if len(bundle.Drop) > 0 {
		b.dropHooks = append(b.dropHooks, bundle.Drop...)
	}
	if len(bundle.Run) > 0 {
		b.runHooks = append(b.runHooks, bundle.Run...)
	}
}

// RegisterConsumerMetadata stores consumer metadata without hooks.
func (b *Broker) RegisterConsumerMetadata(desc ConsumerDescriptor) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registerDescriptorLocked(desc)
}

// ListConsumers returns descriptors for consumers in the given category.
func (b *Broker) ListConsumers(category ConsumerCategory) []ConsumerDescriptor {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	catalog := b.consumerCatalog[category]
	if len(catalog) == 0 {
		return nil
	}
	out := make([]ConsumerDescriptor, len(catalog))
	copy(out, catalog)
	return out
}

// ListAllConsumers returns descriptors of every registered consumer.
func (b *Broker) ListAllConsumers() []ConsumerDescriptor {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]ConsumerDescriptor, 0, len(b.consumerIndex))
	for _, desc := range b.consumerIndex {
		out = append(out, desc)
	}
	return out
}

func (b *Broker) registerDescriptorLocked(desc ConsumerDescriptor) {
	if desc.Name == "" {
		return
	}
	if _, exists := b.consumerIndex[desc.Name]; exists {
		return
	}
	b.consumerIndex[desc.Name] = desc
	b.consumerCatalog[desc.Category] = append(b.consumerCatalog[desc.Category], desc)
}
