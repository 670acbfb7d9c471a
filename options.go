package metricslog

type registryConfig struct {
	// when true, Metrics returns metrics sorted by name instead of insertion order.
	nameOrder bool
	logger    Logger
}

// RegistryOption configures a Registry constructed by NewRegistry.
type RegistryOption func(*registryConfig)

// WithNameOrder makes Metrics (and therefore every flushed line) list metrics
// sorted by name. The default is registration order.
func WithNameOrder() RegistryOption {
	return func(cfg *registryConfig) { cfg.nameOrder = true }
}

// WithRegistryLogger sets the logger used for registration events.
func WithRegistryLogger(l Logger) RegistryOption {
	return func(cfg *registryConfig) { cfg.logger = l }
}
