package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/punchamoorthee/momoledger/internal/auth"
	"github.com/rs/zerolog"
)

// NewRouter wires the transaction routes. Everything under /transactions
// requires Basic credentials; /health and /metrics are open.
func NewRouter(h *Handler, users auth.Users, log zerolog.Logger) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.MethodNotAllowed)
	r.Use(Instrument)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	txs := r.PathPrefix("/transactions").Subrouter()
	txs.Use(users.Middleware)
	txs.MethodNotAllowedHandler = users.Middleware(http.HandlerFunc(h.MethodNotAllowed))
	for _, collection := range []string{"", "/"} {
		txs.HandleFunc(collection, h.ListTransactions).Methods(http.MethodGet)
		txs.HandleFunc(collection, h.CreateTransaction).Methods(http.MethodPost)
	}
	for _, item := range []string{"/{id}", "/{id}/"} {
		txs.HandleFunc(item, h.GetTransaction).Methods(http.MethodGet)
		txs.HandleFunc(item, h.UpdateTransaction).Methods(http.MethodPut)
		txs.HandleFunc(item, h.DeleteTransaction).Methods(http.MethodDelete)
	}

	return RequestLogger(log)(Recovery(r))
}
