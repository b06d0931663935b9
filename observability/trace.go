package observability

import (
	"github.com/rs/zerolog"

	"github.com/example/info_propagation_sim/core"
	"github.com/example/info_propagation_sim/hooks"
)

// TraceHooks returns a hook bundle that logs every delivery, drop and run
// summary through the given logger.
func TraceHooks(logger zerolog.Logger) (hooks.ConsumerDescriptor, hooks.HookBundle) {
	desc := hooks.ConsumerDescriptor{
		Name:        "trace",
		Category:    hooks.ConsumerCategoryTrace,
		Description: "logs every delivery, drop and run summary",
	}
	bundle := hooks.HookBundle{
		Delivery: []hooks.DeliveryHook{func(ev core.DeliveryEvent) {
			logger.Info().
				Uint32("province", uint32(ev.Receiver)).
				Uint32("realm", uint32(ev.ReceiverRealm)).
				Str("kind", string(ev.Packet.Type)).
				Str("relevance", ev.Relevance.String()).
				Uint32("hops", ev.HopCount).
				Float64("accuracy", ev.Accuracy).
				Float64("delay_days", ev.DelayDays).
				Msg("delivered")
		}},
		Drop: []hooks.DropHook{func(ev core.DropEvent) {
			logger.Debug().
				Uint32("province", uint32(ev.Province)).
				Str("reason", string(ev.Reason)).
				Uint32("hops", ev.HopCount).
				Msg("dropped")
		}},
		Run: []hooks.RunHook{func(tr hooks.RunTrace) {
			logger.Debug().
				Str("kind", string(tr.Packet.Type)).
				Int("deliveries", tr.Deliveries).
				Uint64("dropped", tr.Dropped).
				Dur("elapsed", tr.Elapsed).
				Msg("propagation finished")
		}},
	}
	return desc, bundle
}
