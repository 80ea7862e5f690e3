// Package observability exposes Prometheus collectors for the RPC surface
// and the five protocol engines, following the lazily-initialised
// sync.Once registry pattern the teacher's observability/metrics.go used
// per subsystem.
package observability

import (
	"math"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type moduleMetrics struct {
	requests  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	throttles *prometheus.CounterVec
}

type poolMetrics struct {
	exchangeRate  prometheus.Gauge
	liquidityBuf  prometheus.Gauge
	ammReserves   *prometheus.GaugeVec
	lendingHealth prometheus.Histogram
}

var (
	moduleMetricsOnce sync.Once
	moduleRegistry    *moduleMetrics

	poolMetricsOnce sync.Once
	poolRegistry    *poolMetrics
)

// ModuleMetrics returns the lazily-initialised RPC module metrics registry.
func ModuleMetrics() *moduleMetrics {
	moduleMetricsOnce.Do(func() {
		moduleRegistry = &moduleMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "xlmstake",
				Subsystem: "module",
				Name:      "requests_total",
				Help:      "Total JSON-RPC module requests segmented by module and method.",
			}, []string{"module", "method", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "xlmstake",
				Subsystem: "module",
				Name:      "errors_total",
				Help:      "Total JSON-RPC module errors segmented by module, method, and status code.",
			}, []string{"module", "method", "status"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "xlmstake",
				Subsystem: "module",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for JSON-RPC module handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"module", "method"}),
			throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "xlmstake",
				Subsystem: "module",
				Name:      "throttles_total",
				Help:      "Count of module requests rejected due to throttling policies.",
			}, []string{"module", "reason"}),
		}
		prometheus.MustRegister(
			moduleRegistry.requests,
			moduleRegistry.errors,
			moduleRegistry.latency,
			moduleRegistry.throttles,
		)
	})
	return moduleRegistry
}

// Observe records the outcome of a module request. status should be the
// HTTP status ultimately written to the response writer.
func (m *moduleMetrics) Observe(module, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if module == "" {
		module = "unknown"
	}
	if method == "" {
		method = "unknown"
	}
	outcome := "success"
	if status >= 400 {
		outcome = "error"
	}
	m.requests.WithLabelValues(module, method, outcome).Inc()
	if status >= 400 {
		m.errors.WithLabelValues(module, method, statusLabel(status)).Inc()
	}
	m.latency.WithLabelValues(module, method).Observe(duration.Seconds())
}

// RecordThrottle increments the throttle counter for the supplied module and
// reason ("rate_limit", "duplicate_tx", ...).
func (m *moduleMetrics) RecordThrottle(module, reason string) {
	if m == nil {
		return
	}
	if module == "" {
		module = "unknown"
	}
	if reason = strings.TrimSpace(reason); reason == "" {
		reason = "unspecified"
	}
	m.throttles.WithLabelValues(module, reason).Inc()
}

// PoolMetrics returns the lazily-initialised gauge registry the keeper
// (cmd/xlmstaked's cron loop) publishes staking/amm snapshots to. The
// lending health histogram is filled only by RecordHealthFactor callers;
// the keeper does not sample it.
func PoolMetrics() *poolMetrics {
	poolMetricsOnce.Do(func() {
		poolRegistry = &poolMetrics{
			exchangeRate: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "xlmstake",
				Subsystem: "staking",
				Name:      "exchange_rate",
				Help:      "XLM per sXLM, scaled by RATE_PRECISION (1e7).",
			}),
			liquidityBuf: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "xlmstake",
				Subsystem: "staking",
				Name:      "liquidity_buffer",
				Help:      "XLM available for instant withdrawal, base units.",
			}),
			ammReserves: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "xlmstake",
				Subsystem: "amm",
				Name:      "reserve",
				Help:      "Pool reserve balance, base units, segmented by asset.",
			}, []string{"asset"}),
			lendingHealth: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: "xlmstake",
				Subsystem: "lending",
				Name:      "health_factor",
				Help:      "Distribution of borrower health factors as plain ratios (RATE_PRECISION divided out).",
				Buckets:   []float64{0.5, 0.8, 1.0, 1.1, 1.5, 2, 5, 10},
			}),
		}
		prometheus.MustRegister(
			poolRegistry.exchangeRate,
			poolRegistry.liquidityBuf,
			poolRegistry.ammReserves,
			poolRegistry.lendingHealth,
		)
	})
	return poolRegistry
}

func (m *poolMetrics) RecordExchangeRate(rate *big.Int) {
	if m == nil {
		return
	}
	m.exchangeRate.Set(bigToFloat(rate))
}

func (m *poolMetrics) RecordLiquidityBuffer(buf *big.Int) {
	if m == nil {
		return
	}
	m.liquidityBuf.Set(bigToFloat(buf))
}

func (m *poolMetrics) RecordAMMReserves(xlm, sxlm *big.Int) {
	if m == nil {
		return
	}
	m.ammReserves.WithLabelValues("xlm").Set(bigToFloat(xlm))
	m.ammReserves.WithLabelValues("sxlm").Set(bigToFloat(sxlm))
}

func (m *poolMetrics) RecordHealthFactor(rate *big.Int) {
	if m == nil {
		return
	}
	m.lendingHealth.Observe(bigToFloat(rate) / 1e7)
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}

func bigToFloat(value *big.Int) float64 {
	if value == nil {
		return 0
	}
	floatVal, acc := new(big.Float).SetInt(value).Float64()
	if acc != big.Exact {
		if math.IsNaN(floatVal) || math.IsInf(floatVal, 0) {
			return 0
		}
	}
	return floatVal
}
