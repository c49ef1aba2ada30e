package mid

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/quartzledger/quartz/foundation/web"
)

var (
	requests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quartz_http_requests_total",
		Help: "HTTP requests handled",
	})

	errCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quartz_http_errors_total",
		Help: "HTTP requests that returned an error",
	})

	panics = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quartz_http_panics_total",
		Help: "HTTP requests that panicked",
	})
)

// Metrics updates program counters.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Call the next handler.
			err := handler(ctx, w, r)

			// Increment the request and errors counters.
			requests.Inc()
			if err != nil {
				errCount.Inc()
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}
