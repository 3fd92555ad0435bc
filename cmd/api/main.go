package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tally/internal/auth"
	"github.com/MrJamesThe3rd/tally/internal/category"
	categoryStore "github.com/MrJamesThe3rd/tally/internal/category/store"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/expense"
	expenseStore "github.com/MrJamesThe3rd/tally/internal/expense/store"
	"github.com/MrJamesThe3rd/tally/internal/export"
	tallyHttp "github.com/MrJamesThe3rd/tally/internal/http"
	categoryHandler "github.com/MrJamesThe3rd/tally/internal/http/category"
	expenseHandler "github.com/MrJamesThe3rd/tally/internal/http/expense"
	exportHandler "github.com/MrJamesThe3rd/tally/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/tally/internal/http/importcsv"
	incomeHandler "github.com/MrJamesThe3rd/tally/internal/http/income"
	matchingHandler "github.com/MrJamesThe3rd/tally/internal/http/matching"
	savingsHandler "github.com/MrJamesThe3rd/tally/internal/http/savings"
	userHandler "github.com/MrJamesThe3rd/tally/internal/http/user"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/importer/cgd"
	"github.com/MrJamesThe3rd/tally/internal/income"
	incomeStore "github.com/MrJamesThe3rd/tally/internal/income/store"
	"github.com/MrJamesThe3rd/tally/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/tally/internal/matching/store"
	"github.com/MrJamesThe3rd/tally/internal/savings"
	"github.com/MrJamesThe3rd/tally/internal/user"
	userStore "github.com/MrJamesThe3rd/tally/internal/user/store"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	var (
		tokens          = auth.NewManager(cfg.Auth.Secret, cfg.Auth.TokenTTL, cfg.App.Name)
		userService     = user.NewService(userStore.New(db))
		categoryService = category.NewService(categoryStore.New(db), category.NewVocabulary(cfg.Categories.Titles))
		expenseService  = expense.NewService(expenseStore.New(db))
		incomeService   = income.NewService(incomeStore.New(db))
		matchingService = matching.NewService(matchingStore.New(db))
		savingsCalc     = savings.NewCalculator(expenseService, categoryService, incomeService)
		importService   = importer.NewService(map[importer.Bank]importer.Parser{
			importer.BankCGD: cgd.NewParser(),
		})
		exportService = export.NewService(expenseService, categoryService)
	)

	router := tallyHttp.New(tokens, cfg.CORS.AllowedOrigins, tallyHttp.Handlers{
		Users:      userHandler.NewHandler(userService, tokens),
		Categories: categoryHandler.NewHandler(categoryService),
		Expenses:   expenseHandler.NewHandler(expenseService),
		Income:     incomeHandler.NewHandler(incomeService),
		Savings:    savingsHandler.NewHandler(savingsCalc),
		Import:     importHandler.NewHandler(importService, expenseService, matchingService),
		Rules:      matchingHandler.NewHandler(matchingService),
		Export:     exportHandler.NewHandler(exportService),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("starting server", "addr", srv.Addr, "app", cfg.App.Name)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
