package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/mbaxter/cashflow-service/internal/config"
	"github.com/mbaxter/cashflow-service/internal/handler"
	"github.com/mbaxter/cashflow-service/internal/integrations/rates"
	"github.com/mbaxter/cashflow-service/internal/middleware"
	"github.com/mbaxter/cashflow-service/internal/repository"
	"github.com/mbaxter/cashflow-service/internal/service"
	"github.com/mbaxter/cashflow-service/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	ratesClient := rates.NewClient(cfg, logger)
	svc := service.NewService(repo, ratesClient, logger, cfg)
	h := handler.NewHandler(svc)
	sender := email.NewSender(cfg, logger)

	// Schedule the daily reminder pass
	reminder := service.NewReminder(svc, sender)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.ReminderCron, reminder.Run); err != nil {
		logger.Fatalf("Failed to schedule reminders: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	r.HandleFunc("/state", h.GetState).Methods("GET")
	r.HandleFunc("/state", h.PutState).Methods("PUT")
	r.HandleFunc("/forecast", h.GetForecast).Methods("GET")
	r.HandleFunc("/simulate", h.Simulate).Methods("POST")
	r.HandleFunc("/project", h.Project).Methods("POST")
	r.HandleFunc("/safe-to-spend", h.GetSafeToSpend).Methods("GET")
	r.HandleFunc("/bill-windows", h.GetBillWindows).Methods("GET")
	r.HandleFunc("/cashflow", h.GetCashFlow).Methods("GET")
	r.HandleFunc("/checklist", h.GetChecklist).Methods("GET")
	r.HandleFunc("/checklist/mark", h.MarkChecklist).Methods("POST")
	r.HandleFunc("/investment-outlook", h.GetInvestmentOutlook).Methods("GET")
	r.HandleFunc("/recurring/suggest", h.GetSuggestions).Methods("GET")
	r.HandleFunc("/transactions", h.GetTransactions).Methods("GET")
	r.HandleFunc("/transactions", h.PostTransaction).Methods("POST")
	r.HandleFunc("/alerts", h.GetAlerts).Methods("GET")
	r.HandleFunc("/summary/weekly", h.GetWeeklySummary).Methods("GET")
	// Reference-rate endpoint
	r.HandleFunc("/reference-rate", func(w http.ResponseWriter, r *http.Request) {
		rate, err := ratesClient.GetAnnualReturn()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get reference rate: %v", err), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"annual_return_pct": %s}`, rate)
	}).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
