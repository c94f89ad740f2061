// Package metrics instrumentación Prometheus del servicio: HTTP, fabricaciones,
// movimientos y reintentos de la unidad de trabajo.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados de una fabricación.
const (
	ResultOK       = "ok"
	ResultAborted  = "aborted"
	ResultInvalid  = "invalid"
	ResultConflict = "conflict"
	ResultError    = "error"
)

var registry = prometheus.NewRegistry()

var (
	// FabricationsTotal fabricaciones por resultado.
	FabricationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insumos",
			Subsystem: "fabrication",
			Name:      "total",
			Help:      "Fabricaciones por resultado.",
		},
		[]string{"result"},
	)

	// MovementUnitsTotal unidades movidas por tipo (entrada/salida).
	MovementUnitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insumos",
			Subsystem: "movement",
			Name:      "units_total",
			Help:      "Unidades de producto registradas en movimientos.",
		},
		[]string{"type"},
	)

	// TxRetriesTotal re-ejecuciones de unidades de trabajo por conflicto.
	TxRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insumos",
			Subsystem: "tx",
			Name:      "retries_total",
			Help:      "Reintentos de unidades de trabajo por conflicto de concurrencia.",
		},
		[]string{"store"},
	)

	// RequestDuration latencia HTTP por método, ruta y estado.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "insumos",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duración de las peticiones HTTP en segundos.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		FabricationsTotal,
		MovementUnitsTotal,
		TxRetriesTotal,
		RequestDuration,
	)
}

// ObserveFabrication cuenta una fabricación con el resultado dado.
func ObserveFabrication(result string) {
	FabricationsTotal.WithLabelValues(result).Inc()
}

// ObserveMovement suma las unidades de un movimiento registrado.
func ObserveMovement(movType string, qty int64) {
	MovementUnitsTotal.WithLabelValues(movType).Add(float64(qty))
}

// ObserveTxRetry cuenta un reintento de unidad de trabajo.
func ObserveTxRetry(store string) {
	TxRetriesTotal.WithLabelValues(store).Inc()
}

// Handler expone las métricas en formato Prometheus.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Middleware mide la latencia de cada petición Fiber usando la ruta registrada (no la URL).
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		RequestDuration.
			WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}
