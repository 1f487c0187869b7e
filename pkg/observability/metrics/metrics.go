// Package metrics 提供最小化的 Prometheus 文本格式指标原语。
package metrics

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// MetricType 指标类型。
type MetricType string

const (
	TypeCounter   MetricType = "counter"
	TypeGauge     MetricType = "gauge"
	TypeHistogram MetricType = "histogram"
)

// DefaultBuckets 是以秒为单位的默认耗时分桶。
var DefaultBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// Metric 是所有指标的公共接口。
type Metric interface {
	Name() string
	Help() string
	Type() MetricType
	// Describe 返回 Prometheus 文本格式，包含 HELP/TYPE 行。
	Describe() string
}

// Counter 单调递增计数器。
type Counter interface {
	Metric
	Inc()
	Add(float64)
	Get() float64
}

// Gauge 可增可减的瞬时值。
type Gauge interface {
	Metric
	Set(float64)
	Inc()
	Dec()
	Add(float64)
	Sub(float64)
	Get() float64
}

// Histogram 按分桶统计观测值。
type Histogram interface {
	Metric
	Observe(float64)
	Count() uint64
	Sum() float64
}

// CounterVec 按标签区分的一组计数器。
type CounterVec interface {
	Metric
	With(labels map[string]string) Counter
	// Sum 返回所有标签组合的合计值。
	Sum() float64
}

// HistogramVec 按标签区分的一组直方图。
type HistogramVec interface {
	Metric
	With(labels map[string]string) Histogram
}

type desc struct {
	name string
	help string
	typ  MetricType
}

func (d *desc) Name() string     { return d.name }
func (d *desc) Help() string     { return d.help }
func (d *desc) Type() MetricType { return d.typ }

func (d *desc) header(sb *strings.Builder) {
	fmt.Fprintf(sb, "# HELP %s %s\n", d.name, d.help)
	fmt.Fprintf(sb, "# TYPE %s %s\n", d.name, d.typ)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// atomicFloat 以 uint64 位模式存储 float64。
type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) add(v float64) {
	for {
		old := f.bits.Load()
		if f.bits.CompareAndSwap(old, math.Float64bits(math.Float64frombits(old)+v)) {
			return
		}
	}
}

func (f *atomicFloat) set(v float64) { f.bits.Store(math.Float64bits(v)) }
func (f *atomicFloat) get() float64  { return math.Float64frombits(f.bits.Load()) }

type counter struct {
	desc
	labels string
	val    atomicFloat
}

// NewCounter creates a counter.
func NewCounter(name, help string) Counter {
	return &counter{desc: desc{name: name, help: help, typ: TypeCounter}}
}

func (c *counter) Inc() { c.Add(1) }

// Add 忽略负数。
func (c *counter) Add(v float64) {
	if v > 0 {
		c.val.add(v)
	}
}

func (c *counter) Get() float64 { return c.val.get() }

func (c *counter) sample(sb *strings.Builder) {
	fmt.Fprintf(sb, "%s%s %s\n", c.name, c.labels, formatValue(c.Get()))
}

func (c *counter) Describe() string {
	var sb strings.Builder
	c.header(&sb)
	c.sample(&sb)
	return sb.String()
}

type gauge struct {
	desc
	val atomicFloat
}

// NewGauge creates a gauge.
func NewGauge(name, help string) Gauge {
	return &gauge{desc: desc{name: name, help: help, typ: TypeGauge}}
}

func (g *gauge) Set(v float64) { g.val.set(v) }
func (g *gauge) Inc()          { g.val.add(1) }
func (g *gauge) Dec()          { g.val.add(-1) }
func (g *gauge) Add(v float64) { g.val.add(v) }
func (g *gauge) Sub(v float64) { g.val.add(-v) }
func (g *gauge) Get() float64  { return g.val.get() }

func (g *gauge) Describe() string {
	var sb strings.Builder
	g.header(&sb)
	fmt.Fprintf(&sb, "%s %s\n", g.name, formatValue(g.Get()))
	return sb.String()
}

type histogram struct {
	desc
	labels  map[string]string
	buckets []float64

	mu     sync.Mutex
	counts []uint64
	count  uint64
	sum    float64
}

// NewHistogram creates a histogram; empty buckets use DefaultBuckets.
func NewHistogram(name, help string, buckets []float64) Histogram {
	return newHistogram(name, help, buckets, nil)
}

func newHistogram(name, help string, buckets []float64, labels map[string]string) *histogram {
	if len(buckets) == 0 {
		buckets = DefaultBuckets
	}
	b := append([]float64(nil), buckets...)
	sort.Float64s(b)
	return &histogram{
		desc:    desc{name: name, help: help, typ: TypeHistogram},
		labels:  labels,
		buckets: b,
		counts:  make([]uint64, len(b)),
	}
}

func (h *histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += v
	for i, le := range h.buckets {
		if v <= le {
			h.counts[i]++
		}
	}
}

func (h *histogram) Count() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

func (h *histogram) Sum() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sum
}

func (h *histogram) sample(sb *strings.Builder) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, le := range h.buckets {
		fmt.Fprintf(sb, "%s_bucket%s %d\n", h.name, labelString(h.labels, "le", formatValue(le)), h.counts[i])
	}
	fmt.Fprintf(sb, "%s_bucket%s %d\n", h.name, labelString(h.labels, "le", "+Inf"), h.count)
	fmt.Fprintf(sb, "%s_sum%s %s\n", h.name, labelString(h.labels, "", ""), formatValue(h.sum))
	fmt.Fprintf(sb, "%s_count%s %d\n", h.name, labelString(h.labels, "", ""), h.count)
}

func (h *histogram) Describe() string {
	var sb strings.Builder
	h.header(&sb)
	h.sample(&sb)
	return sb.String()
}

// labelString 按键排序输出 {k="v",...}，extraKey 非空时追加一个标签。
func labelString(labels map[string]string, extraKey, extraValue string) string {
	pairs := make([]string, 0, len(labels)+1)
	for k, v := range labels {
		pairs = append(pairs, k+"="+strconv.Quote(v))
	}
	sort.Strings(pairs)
	if extraKey != "" {
		pairs = append(pairs, extraKey+"="+strconv.Quote(extraValue))
	}
	if len(pairs) == 0 {
		return ""
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

type counterVec struct {
	desc
	children sync.Map // labelString -> *counter
}

// NewCounterVec creates a labelled counter family.
func NewCounterVec(name, help string) CounterVec {
	return &counterVec{desc: desc{name: name, help: help, typ: TypeCounter}}
}

func (v *counterVec) With(labels map[string]string) Counter {
	key := labelString(labels, "", "")
	if c, ok := v.children.Load(key); ok {
		return c.(*counter)
	}
	c, _ := v.children.LoadOrStore(key, &counter{desc: v.desc, labels: key})
	return c.(*counter)
}

func (v *counterVec) Sum() float64 {
	var total float64
	v.children.Range(func(_, c any) bool {
		total += c.(*counter).Get()
		return true
	})
	return total
}

func (v *counterVec) Describe() string {
	var sb strings.Builder
	v.header(&sb)
	for _, key := range sortedKeys(&v.children) {
		c, _ := v.children.Load(key)
		c.(*counter).sample(&sb)
	}
	return sb.String()
}

type histogramVec struct {
	desc
	buckets  []float64
	children sync.Map // labelString -> *histogram
}

// NewHistogramVec creates a labelled histogram family.
func NewHistogramVec(name, help string, buckets []float64) HistogramVec {
	return &histogramVec{desc: desc{name: name, help: help, typ: TypeHistogram}, buckets: buckets}
}

func (v *histogramVec) With(labels map[string]string) Histogram {
	key := labelString(labels, "", "")
	if h, ok := v.children.Load(key); ok {
		return h.(*histogram)
	}
	copied := make(map[string]string, len(labels))
	for k, val := range labels {
		copied[k] = val
	}
	h, _ := v.children.LoadOrStore(key, newHistogram(v.name, v.help, v.buckets, copied))
	return h.(*histogram)
}

func (v *histogramVec) Describe() string {
	var sb strings.Builder
	v.header(&sb)
	for _, key := range sortedKeys(&v.children) {
		h, _ := v.children.Load(key)
		h.(*histogram).sample(&sb)
	}
	return sb.String()
}

func sortedKeys(m *sync.Map) []string {
	var keys []string
	m.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}
