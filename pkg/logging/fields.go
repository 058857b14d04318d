package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Component(name string) Field {
	return String("component", name)
}

func Operation(op string) Field {
	return String("operation", op)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

// Domain fields

func PathID(id string) Field {
	return String("path_id", id)
}

func NodeName(name string) Field {
	return String("node", name)
}

func ScenarioID(id string) Field {
	return String("scenario_id", id)
}

// Slot names the request slot (graph, analysis, scenario, explanation, focus)
func Slot(slot string) Field {
	return String("slot", slot)
}

// Seq is a request sequence number within a slot
func Seq(n uint64) Field {
	return Uint64("seq", n)
}

func RequestID(id string) Field {
	return String("request_id", id)
}
