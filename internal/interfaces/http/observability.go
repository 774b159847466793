package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jhoicas/bitumen-api/pkg/logger"
)

// HTTPMetrics contadores de peticiones. Las rutas se etiquetan con el patrón de Fiber
// (/api/clients/:id), no con la URL, para no disparar la cardinalidad.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registra las métricas en reg.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bitumen",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Peticiones HTTP atendidas.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bitumen",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duración de las peticiones HTTP en segundos.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// RequestLogger registra cada petición con zerolog y, si metrics no es nil, la cuenta.
// Se monta antes de las rutas para ver también los errores de los middlewares.
func RequestLogger(log *logger.Logger, metrics *HTTPMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// El ErrorHandler global escribe la respuesta; se invoca aquí para conocer el status.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()
		elapsed := time.Since(start)
		route := c.Route().Path

		if metrics != nil {
			metrics.requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
			metrics.duration.WithLabelValues(c.Method(), route).Observe(elapsed.Seconds())
		}

		ev := log.Info()
		if status < fiber.StatusBadRequest && (route == "/health" || route == "/metrics") {
			// Sondas de orquestador y scraper: solo en debug.
			if !log.Enabled(zerolog.DebugLevel) {
				return nil
			}
			ev = log.Debug()
		} else if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", elapsed).
			Str("ip", c.IP()).
			Msg("request")
		return nil
	}
}

// MetricsHandler expone el registro de Prometheus en /metrics.
func MetricsHandler(gatherer prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
