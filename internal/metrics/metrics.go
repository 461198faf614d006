package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Métricas del flujo OAuth 1.0a y del gate de client tokens. Viven en un paquete
// aparte para que oauth1, social y middlewares las usen sin ciclos de imports.

var (
	ProviderRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oauth1_provider_requests_total",
		Help: "Requests firmadas enviadas a providers OAuth 1.0a por resultado",
	}, []string{"provider", "step", "result"}) // result: ok|rejected|error

	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "oauth1_provider_request_duration_seconds",
		Help:    "Latencia de las requests a providers OAuth 1.0a",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider", "step"})

	FlowOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oauth1_flow_total",
		Help: "Transiciones terminales del flujo three-legged por provider",
	}, []string{"provider", "outcome"})

	ClientTokenRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "client_token_rejections_total",
		Help: "Requests rechazadas por el gate de bearer tokens",
	}, []string{"reason"}) // reason: missing|invalid

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Requests HTTP atendidas por ruta, método y status",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de las requests HTTP por ruta",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
)

// ObserveProviderRequest registra la latencia de una request a un provider.
func ObserveProviderRequest(provider, step string, d time.Duration) {
	ProviderRequestDuration.WithLabelValues(provider, step).Observe(d.Seconds())
}

// Register registra las métricas en el registry dado (o el default si es nil).
// Tolera AlreadyRegisteredError para que se pueda llamar más de una vez.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		ProviderRequests,
		ProviderRequestDuration,
		FlowOutcomes,
		ClientTokenRejections,
		HTTPRequests,
		HTTPRequestDuration,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
