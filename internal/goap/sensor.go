package goap

import "time"

// Sensor is the declaration for a single perception capability: the
// world-state key it writes, an optional gating precondition, and the
// probe itself.
type Sensor struct {
	// Name identifies the sensor within an agent's sensor set.
	Name string

	// Binding is the world-state key this sensor writes.
	Binding string

	// Preconditions, if non-empty, gate whether this sensor runs this
	// pass: it runs only when the current world state matches every key.
	Preconditions State

	// Exec produces the new atom for Binding. Errors propagate as
	// SensorError; the fact is not added and the binding is left
	// unchanged for that pass.
	Exec func() (Value, error)
}

// Fact is a working-memory entry: a sensor reading with provenance and a
// timestamp.
type Fact struct {
	Binding      string
	Value        Value
	SourceSensor string
	Timestamp    time.Time
}
