package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/olids-ncl/record-explorer/pkg/common/config"
	"github.com/olids-ncl/record-explorer/pkg/common/database"
	"github.com/olids-ncl/record-explorer/pkg/common/logger"
	"github.com/olids-ncl/record-explorer/pkg/common/middleware"
	"github.com/olids-ncl/record-explorer/pkg/explorer"
	"github.com/olids-ncl/record-explorer/pkg/observability/metrics"
	"github.com/olids-ncl/record-explorer/pkg/patient"
	"github.com/olids-ncl/record-explorer/pkg/records"
)

func main() {
	logger.Init()
	cfg := config.Load()

	// Connection failure is fatal by contract: there is nothing to browse
	// without the warehouse, and nothing retries.
	db, err := database.GetWarehouse()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to warehouse")
	}

	patientRepo := patient.NewRepository(db, cfg.Tables)
	patientSvc := patient.NewService(patientRepo)
	recordRepo := records.NewRepository(db, cfg.Tables)
	recordSvc := records.NewService(recordRepo, patientSvc, cfg.MaxRecordRows)

	handler := explorer.NewHandler(patientSvc, recordSvc, cfg)

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	handler.Register(api)

	var root http.Handler = router
	root = middleware.BodyLimit(cfg.MaxRequestBody)(root)
	root = middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)(root)
	root = middleware.CORS(root)
	root = middleware.Logging(root)
	root = middleware.Recovery(root)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      root,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Record Explorer started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Record Explorer...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}
	if err := database.CloseWarehouse(); err != nil {
		logger.Log.WithError(err).Error("Failed to close warehouse connection")
	}

	logger.Log.Info("Record Explorer stopped")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
