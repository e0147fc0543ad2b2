package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"pocketflow/internal/config"
	internalhttp "pocketflow/internal/http"
	"pocketflow/internal/ledger"
	"pocketflow/internal/metrics"
	"pocketflow/internal/models"
	"pocketflow/internal/service"
	"pocketflow/internal/store"
	"pocketflow/pkg/logging"
)

func main() {
	// .env is optional; real env vars win either way
	_ = godotenv.Load()
	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	st := store.New()
	lg := ledger.New(st)
	reminders := &logReminders{}
	flow := service.NewEntryFlow(st, lg, reminders)
	editor := service.NewEditor(st, lg, reminders)

	if cfg.SeedDemoData {
		seedDemo(st, lg)
		slog.Info("Demo data seeded")
	}

	srv := internalhttp.NewServer(cfg.Port, st, lg, flow, editor)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.EntryStaleAfter > 0 {
		go sweepStaleEntries(ctx, flow, cfg.EntryStaleAfter)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}
}

// sweepStaleEntries periodically abandons an in-progress entry left idle
// past the threshold, the way the app resets after sitting in the
// background. The sweep is a plain delayed callback with no ordering
// guarantee relative to other edits.
func sweepStaleEntries(ctx context.Context, flow *service.EntryFlow, threshold time.Duration) {
	ticker := time.NewTicker(threshold)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if flow.ResetIfStale(threshold) {
				metrics.StaleEntriesReset.Inc()
			}
		}
	}
}

// logReminders is the stand-in reminder scheduler: it hands back opaque
// ids and logs instead of talking to a notification service.
type logReminders struct{}

func (*logReminders) Schedule(amount float64) string {
	id := uuid.New().String()
	slog.Info("Reminder scheduled", "reminder_id", id, "amount", amount)
	return id
}

func (*logReminders) Cancel(id string) {
	slog.Info("Reminder cancelled", "reminder_id", id)
}

// seedDemo loads the small fixture the app historically booted with: two
// expenses and two friends carrying debt.
func seedDemo(st *store.Store, lg *ledger.DebtLedger) {
	now := time.Now()
	st.AddTransaction(transaction("Food", 150, now))
	st.AddTransaction(transaction("Travel", 450, now.AddDate(0, 0, -2)))
	_ = lg.AddFriendDebt("Aditya", "", 300, now, "Lunch Bill")
	_ = lg.AddFriendDebt("Rahul", "", 500, now, "Concert Ticket")
}

func transaction(category string, amount float64, date time.Time) models.Transaction {
	return models.Transaction{Category: category, Amount: amount, Date: date}
}
