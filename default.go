// --- File: default.go ---
package cclog

// Global registry for package-level functions
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry behind the package-level functions
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Setup installs metrics storage in the default registry
func Setup(m *Metrics) error {
	return defaultRegistry.Setup(m)
}

// Teardown detaches the default registry's storage
func Teardown() {
	defaultRegistry.Teardown()
}

// New creates a logger bound to the default registry
func New(path string, capacity uint32, opts ...Option) (*Logger, error) {
	return Create(defaultRegistry, path, capacity, opts...)
}

// Snapshot copies the default registry's counters
func Snapshot() (MetricsSnapshot, error) {
	return defaultRegistry.Snapshot()
}
