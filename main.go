package main

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"corrix-analytics-service/logger"

	_ "corrix-analytics-service/service"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PORT = 8080
)

func init() {
	logger.InitLogger()

	if val := os.Getenv("LISTEN_PORT"); val != "" {
		PORT, _ = strconv.Atoi(val)
	}
}

// 聚合管道本身由内部调度器驱动，这里只暴露运维端点
func main() {
	mux := chi.NewRouter()

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	if err := http.ListenAndServe(":"+strconv.Itoa(PORT), mux); err != nil && err != http.ErrServerClosed {
		log.Fatalf("error: %v", err)
	}
}
