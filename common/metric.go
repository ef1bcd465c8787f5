package common

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var log = NewLog("common")

func NewMetricServer() {
	port := ":9000"
	log.Info("Starting metric server", "listen", port)
	http.Handle("/metrics", handlers.CombinedLoggingHandler(os.Stdout, promhttp.Handler()))
	go func() {
		if err := http.ListenAndServe(port, nil); err != nil {
			panic(err)
		}
	}()
}
