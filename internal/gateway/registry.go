package gateway

import (
	"fmt"
	"sort"
	"sync"
)

// Options carries driver configuration. Drivers pick what they need.
type Options struct {
	Token string
}

// Driver opens a connection to a chat platform.
type Driver interface {
	Open(opts Options) (Client, error)
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// Register makes a platform driver available under the given name. It panics
// on duplicate registration, matching database/sql semantics.
func Register(name string, driver Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if driver == nil {
		panic("gateway: Register driver is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("gateway: Register called twice for driver " + name)
	}
	drivers[name] = driver
}

// Open connects using a registered driver.
func Open(name string, opts Options) (Client, error) {
	driversMu.RLock()
	driver, ok := drivers[name]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("gateway: unknown driver %q (registered: %v)", name, driverNames())
	}
	return driver.Open(opts)
}

func driverNames() []string {
	var names []string
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
