// Package natssensor wires a goap.Sensor to a NATS subject: an example
// of a concrete sensor probe living outside the planning core. The core
// never imports this package; cmd/agent-demo wires it in only when
// NATS_URL is configured.
package natssensor

import (
	"encoding/json"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"goap-runtime/internal/goap"
)

// FactMessage is the wire shape published/consumed on a fact subject.
type FactMessage struct {
	Value goap.Value `json:"value"`
}

// Listener subscribes to a NATS subject and caches the most recently
// received value, so a goap.Sensor.Exec can return it synchronously
// without blocking on the network on every tick.
type Listener struct {
	mu      sync.RWMutex
	value   goap.Value
	has     bool
	subject string
}

// NewListener subscribes nc to subject and returns a Listener whose
// current value tracks the latest FactMessage received on it.
func NewListener(nc *nats.Conn, subject string) (*Listener, error) {
	l := &Listener{subject: subject}

	_, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		var fm FactMessage
		if err := json.Unmarshal(msg.Data, &fm); err != nil {
			log.Error().Err(err).Str("subject", subject).Msg("natssensor: failed to unmarshal fact message")
			return
		}
		l.mu.Lock()
		l.value = fm.Value
		l.has = true
		l.mu.Unlock()
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Sensor builds a goap.Sensor bound to binding that reports the
// Listener's latest value. Exec errors until at least one message has
// arrived, matching the automaton's "fact not added, binding unchanged"
// contract for a failing sensor.
func (l *Listener) Sensor(name, binding string, preconditions goap.State) *goap.Sensor {
	return &goap.Sensor{
		Name:          name,
		Binding:       binding,
		Preconditions: preconditions,
		Exec: func() (goap.Value, error) {
			l.mu.RLock()
			defer l.mu.RUnlock()
			if !l.has {
				return nil, errNoFactYet{subject: l.subject}
			}
			return l.value, nil
		},
	}
}

type errNoFactYet struct{ subject string }

func (e errNoFactYet) Error() string {
	return "natssensor: no fact received yet on subject " + e.subject
}

// Publish publishes value as the concrete binding for subject, for use
// from an Action's Execute as an effector counterpart to Listener,
// e.g. an action whose service effect is fulfilled by announcing a
// resolved value to the rest of the fleet over NATS.
func Publish(nc *nats.Conn, subject string, value goap.Value) error {
	data, err := json.Marshal(FactMessage{Value: value})
	if err != nil {
		return err
	}
	return nc.Publish(subject, data)
}
