// Package redisfact mirrors an automaton's per-cycle working memory to
// Redis for cross-process observability. It is strictly read-side: no
// plan or world state is ever restored from it, so nothing the planner
// consumes survives a process restart.
package redisfact

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"goap-runtime/internal/goap"
)

// Mirror writes an automaton's working memory to Redis under a
// per-agent key, with a short TTL so a crashed agent's last-known facts
// age out rather than being mistaken for live state.
type Mirror struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMirror builds a Mirror over client. ttl bounds how long a mirrored
// snapshot survives after the agent stops writing; zero defaults to 30s.
func NewMirror(client *redis.Client, ttl time.Duration) *Mirror {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Mirror{client: client, ttl: ttl}
}

func key(agent string) string {
	return fmt.Sprintf("goap:working_memory:%s", agent)
}

// record is the JSON shape written per fact; goap.Fact itself is not
// marshaled directly so the wire shape is decoupled from the core type.
type record struct {
	Binding      string     `json:"binding"`
	Value        goap.Value `json:"value"`
	SourceSensor string     `json:"source_sensor"`
	Timestamp    time.Time  `json:"timestamp"`
}

// Save overwrites the mirrored snapshot for agent with facts, intended
// to be called once per tick with Automaton.WorkingMemory().
func (m *Mirror) Save(ctx context.Context, agent string, facts []goap.Fact) error {
	records := make([]record, len(facts))
	for i, f := range facts {
		records[i] = record{
			Binding:      f.Binding,
			Value:        f.Value,
			SourceSensor: f.SourceSensor,
			Timestamp:    f.Timestamp,
		}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return m.client.Set(ctx, key(agent), data, m.ttl).Err()
}

// Load returns the last-mirrored working memory for agent, or nil if
// nothing has been mirrored (or it has expired). For operator
// observability only, never consulted by the planner or automaton.
func (m *Mirror) Load(ctx context.Context, agent string) ([]goap.Fact, error) {
	data, err := m.client.Get(ctx, key(agent)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	facts := make([]goap.Fact, len(records))
	for i, r := range records {
		facts[i] = goap.Fact{
			Binding:      r.Binding,
			Value:        r.Value,
			SourceSensor: r.SourceSensor,
			Timestamp:    r.Timestamp,
		}
	}
	return facts, nil
}
