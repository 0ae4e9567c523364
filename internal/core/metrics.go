package core

import "github.com/prometheus/client_golang/prometheus"

// Prometheus collectors, registered on the default registry and served by
// the web server at /metrics.
var (
	importsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shelflife",
		Name:      "imports_total",
		Help:      "Reference imports by outcome.",
	}, []string{"outcome"})

	verificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shelflife",
		Name:      "verifications_total",
		Help:      "Verifications by verdict (pass, fail or the error kind).",
	}, []string{"verdict"})

	referenceRows = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "shelflife",
		Name:      "reference_rows",
		Help:      "Materials in the loaded reference table.",
	})
)

func init() {
	prometheus.MustRegister(importsTotal, verificationsTotal, referenceRows)
}

func observeImport(err error) {
	outcome := "ok"
	if err != nil {
		outcome = errorKind(err)
	}
	importsTotal.WithLabelValues(outcome).Inc()
}

func observeVerify(res VerificationResult, err error) {
	switch {
	case err != nil:
		verificationsTotal.WithLabelValues(errorKind(err)).Inc()
	case res.Pass:
		verificationsTotal.WithLabelValues("pass").Inc()
	default:
		verificationsTotal.WithLabelValues("fail").Inc()
	}
}
