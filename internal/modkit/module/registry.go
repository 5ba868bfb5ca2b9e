package module

import (
	"fmt"
	"sync"
)

// process wide registry of port sets, filled during bootstrap in main
var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register stores a port set for a module name; nil ports are ignored
func Register(name string, ports any) {
	if ports == nil {
		return
	}
	mu.Lock()
	reg[name] = ports
	mu.Unlock()
}

// PortsAs fetches and type asserts a port set for name
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	v, ok := reg[name]
	mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	out, ok := v.(T)
	return out, ok
}

// MustPortsAs is PortsAs that panics when name is missing or of another type
func MustPortsAs[T any](name string) T {
	v, ok := PortsAs[T](name)
	if !ok {
		panic(fmt.Sprintf("module: no ports of type %T registered as %q", v, name))
	}
	return v
}

// Reset clears the registry for tests
func Reset() {
	mu.Lock()
	reg = map[string]any{}
	mu.Unlock()
}
