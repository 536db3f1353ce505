package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultAccepted  = "accepted"
	resultRejected  = "rejected"
	resultTransport = "transport_error"
)

var (
	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xrelay_relay_batches_total",
		Help: "Header batches submitted to the light client, by outcome",
	}, []string{"direction", "result"})
	headersSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xrelay_relay_headers_submitted_total",
		Help: "Headers accepted by the light client",
	}, []string{"direction"})
	nextBlockGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "xrelay_relay_next_block",
		Help: "Number of the next source block to relay",
	}, []string{"direction"})
	backoffStepsGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "xrelay_relay_backoff_steps",
		Help: "Steps back taken since the last accepted batch",
	}, []string{"direction"})
	resyncsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xrelay_relay_resyncs_total",
		Help: "Resyncs from the light client chain endpoint",
	}, []string{"direction"})
)
