package metricslog

// Entry describes a registered metric for admin/debug listings.
type Entry struct {
	Type   MetricType
	Name   string
	Config InstrumentConfig // defensive copy
}

// Entries returns a snapshot of every registered metric's metadata in
// registry order. Configs are defensive copies; mutating them does not
// change the registry.
func (r *Registry) Entries() []Entry {
	ms := r.Metrics()
	out := make([]Entry, 0, len(ms))
	for _, m := range ms {
		out = append(out, Entry{Type: m.Type(), Name: m.Name(), Config: m.Config()})
	}
	return out
}
