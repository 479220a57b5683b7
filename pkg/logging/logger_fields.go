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

func Int64(key string, value int64) Field {
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

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Domain field helpers

func Component(name string) Field {
	return String("component", name)
}

func Strategy(name string) Field {
	return String("strategy", name)
}

func RequestID(id string) Field {
	return String("request_id", id)
}

func RunID(id string) Field {
	return String("run_id", id)
}

func EmployeeID(id int64) Field {
	return Int64("employee_id", id)
}

func ProjectID(id int64) Field {
	return Int64("project_id", id)
}

func Line(n int) Field {
	return Int("line", n)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

func File(name string) Field {
	return String("file", name)
}
