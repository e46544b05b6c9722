package main

import (
	"log"
	"net/http"
	"time"

	"payment-service/internal/config"
	"payment-service/internal/db"
	"payment-service/internal/event"
	"payment-service/internal/handler"
	"payment-service/internal/kafka"
	"payment-service/internal/logging"
	"payment-service/internal/metrics"
	"payment-service/internal/payment"
	"payment-service/internal/paypal"

	"github.com/go-resty/resty/v2"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoadConfig("./config")

	logger := logging.GetLogger(cfg.Logs)
	metrics.Setup(cfg.Metrics)

	connStr := db.ConnString(cfg.Database)
	db.RunMigrations(connStr, "./migrations")

	dbpool, err := db.GetPool(connStr)
	if err != nil {
		log.Fatal(err)
	}
	defer dbpool.Close()

	paymentRepo := db.NewPaymentRepository(dbpool)
	jobRepo := db.NewJobRepository(dbpool)
	payeeRepo := db.NewPayeeRepository(dbpool)

	httpClient := resty.New().SetTimeout(time.Duration(cfg.PayPal.TimeoutMs) * time.Millisecond)
	tokens := paypal.NewTokenSource(cfg.PayPal, httpClient, logger)
	client := paypal.NewClient(tokens, httpClient, logger)

	writer := kafka.NewWriter(cfg.Kafka.Broker.URL, cfg.Kafka.Topic.SettlementEvents)
	defer writer.Close()
	publisher := event.NewPublisher(writer, logger)

	ledger := payment.NewLedger(paymentRepo, jobRepo, logger)
	orchestrator := payment.NewOrchestrator(
		paymentRepo, jobRepo, payeeRepo,
		client, publisher, &payment.LogJobStateHook{Logger: logger},
		cfg.PayPal, cfg.Application, logger,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /liveness", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler.NewPaymentHandler(ledger, orchestrator, logger).RegisterRoutes(mux)

	logger.Info("Starting payment service", "port", cfg.Server.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Server.Port, mux))
}
