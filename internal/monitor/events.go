package monitor

import "solana-price-sentinel/internal/domain"

// EventSink receives scheduler events. Delivery is best-effort and must
// not block: a slow subscriber is the subscriber's problem.
type EventSink interface {
	Publish(env domain.Envelope)
}

// SinkFunc adapts a function to the EventSink interface.
type SinkFunc func(env domain.Envelope)

func (f SinkFunc) Publish(env domain.Envelope) {
	f(env)
}

// TriggerDispatcher receives fired alerts for asynchronous action
// execution, off the polling path.
type TriggerDispatcher interface {
	Dispatch(ev *domain.TriggerEvent)
}
