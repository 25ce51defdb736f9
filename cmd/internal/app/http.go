package app

import (
	"net/http"

	"uptime/cmd/internal/api"
)

func registerHTTP(mux *http.ServeMux, m *Metrics, apiHandler *api.Handler) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	if m != nil {
		mux.Handle("/metrics", m.Handler())
	}

	if apiHandler != nil {
		apiHandler.Register(mux)
	}
}
