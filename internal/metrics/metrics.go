package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Exchange order calls attempted"},
		[]string{"symbol", "side"},
	)
	OrderErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "order_errors_total", Help: "Exchange order calls that failed"},
		[]string{"symbol", "side"},
	)
	PricePollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "price_polls_total", Help: "Market price samples fetched"},
		[]string{"symbol"},
	)
	PollErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "poll_errors_total", Help: "Price polls that failed"},
		[]string{"symbol"},
	)
	StreamTicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stream_ticks_total", Help: "Ticker messages received over the websocket feed"},
		[]string{"symbol"},
	)
	TriggersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "triggers_total", Help: "Monitor threshold crossings"},
		[]string{"symbol", "side"},
	)
	AlertsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "alerts_total", Help: "Alert notifications sent"},
	)
)

func init() {
	prometheus.MustRegister(OrdersTotal, OrderErrorsTotal, PricePollsTotal, PollErrorsTotal, StreamTicksTotal, TriggersTotal, AlertsTotal)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
