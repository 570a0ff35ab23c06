package metrics

import "github.com/prometheus/client_golang/prometheus"

// DomainMetrics exposes counters for the request/stock workflow. All methods
// tolerate a nil receiver so tests can pass metrics-free services.
type DomainMetrics struct {
	requestsSubmitted prometheus.Counter
	requestsProcessed *prometheus.CounterVec
	stockMovements    *prometheus.CounterVec
	ledgerDrift       prometheus.Gauge
}

// NewDomainMetrics registers the workflow metrics on the provided registerer.
func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	submitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "requests_submitted_total",
		Help: "Inventory requests accepted through the public intake.",
	})
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "requests_processed_total",
		Help: "Requests moved to a terminal status, by outcome.",
	}, []string{"outcome"})
	movements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_total",
		Help: "Stock ledger rows appended, by change type.",
	}, []string{"change_type"})
	drift := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ledger_drift_items",
		Help: "Items whose stock disagrees with the ledger at the last reconcile.",
	})
	reg.MustRegister(submitted, processed, movements, drift)
	return &DomainMetrics{
		requestsSubmitted: submitted,
		requestsProcessed: processed,
		stockMovements:    movements,
		ledgerDrift:       drift,
	}
}

// IncRequestSubmitted counts an accepted public submission.
func (d *DomainMetrics) IncRequestSubmitted() {
	if d == nil || d.requestsSubmitted == nil {
		return
	}
	d.requestsSubmitted.Inc()
}

// IncRequestProcessed counts a terminal transition with its outcome label.
func (d *DomainMetrics) IncRequestProcessed(outcome string) {
	if d == nil || d.requestsProcessed == nil {
		return
	}
	d.requestsProcessed.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncStockMovement counts an appended ledger row by change type.
func (d *DomainMetrics) IncStockMovement(changeType string) {
	if d == nil || d.stockMovements == nil {
		return
	}
	d.stockMovements.WithLabelValues(normalizeLabel(changeType)).Inc()
}

// SetLedgerDrift records the number of drifting items from a reconcile pass.
func (d *DomainMetrics) SetLedgerDrift(count int) {
	if d == nil || d.ledgerDrift == nil {
		return
	}
	d.ledgerDrift.Set(float64(count))
}
