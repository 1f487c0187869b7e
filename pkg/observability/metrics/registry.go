package metrics

import (
	"sort"
	"strings"
	"sync"
)

// Registry 管理一组指标并统一导出。
type Registry struct {
	mu      sync.RWMutex
	metrics map[string]Metric
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{metrics: make(map[string]Metric)}
}

// Register 注册指标，同名指标会被替换。
func (r *Registry) Register(ms ...Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range ms {
		r.metrics[m.Name()] = m
	}
}

// Unregister removes the metric called name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.metrics, name)
}

// Export 按名称排序导出全部指标。
func (r *Registry) Export() string {
	r.mu.RLock()
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		r.mu.RLock()
		m, ok := r.metrics[name]
		r.mu.RUnlock()
		if ok {
			sb.WriteString(m.Describe())
		}
	}
	return sb.String()
}
