package metrics

import "github.com/prometheus/client_golang/prometheus"

// PollMetrics tracks the notification poller.
type PollMetrics struct {
	fetches   *prometheus.CounterVec
	skipped   prometheus.Counter
	delivered prometheus.Counter
}

func NewPollMetrics(reg prometheus.Registerer) *PollMetrics {
	if reg == nil {
		return &PollMetrics{}
	}
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_poll_fetches_total",
		Help: "Notification fetches by result.",
	}, []string{"result"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_poll_skipped_total",
		Help: "Poll ticks skipped because a fetch was still in flight.",
	})
	delivered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_delivered_total",
		Help: "Notifications handed to the consumer.",
	})
	reg.MustRegister(fetches, skipped, delivered)
	return &PollMetrics{fetches: fetches, skipped: skipped, delivered: delivered}
}

func (p *PollMetrics) IncFetch(ok bool) {
	if p == nil || p.fetches == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	p.fetches.WithLabelValues(result).Inc()
}

func (p *PollMetrics) IncSkipped() {
	if p == nil || p.skipped == nil {
		return
	}
	p.skipped.Inc()
}

func (p *PollMetrics) AddDelivered(n int) {
	if p == nil || p.delivered == nil || n <= 0 {
		return
	}
	p.delivered.Add(float64(n))
}
