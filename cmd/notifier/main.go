package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bin_collection_notifier/internal/app"
	"bin_collection_notifier/internal/domain/browser"
	"bin_collection_notifier/internal/domain/notification"
	"bin_collection_notifier/internal/infra/config"
	idb "bin_collection_notifier/internal/infra/database"
	"bin_collection_notifier/internal/infra/email"
	"bin_collection_notifier/internal/infra/jokes"
	"bin_collection_notifier/internal/infra/logger"
	"bin_collection_notifier/internal/infra/rediskv"
	"bin_collection_notifier/internal/infra/scheduler"
	"bin_collection_notifier/internal/infra/secrets"
	"bin_collection_notifier/internal/infra/telegram"

	"github.com/redis/go-redis/v9"
)

func main() {
	once := flag.Bool("once", false, "run a single notification pass and exit")
	force := flag.Bool("force", false, "force-notify override: bypass the tomorrow-only and already-notified gates")
	flag.Parse()

	fmt.Println("Bin Collection Notifier starting...")

	mainLogger := log.New(os.Stdout, "MAIN: ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	appLog := logger.Get()
	mainLogger.Printf("INFO: Configuration loaded. LogLevel: %s, Environment: %s, Addresses: %d",
		cfg.LogLevel, cfg.Environment, len(cfg.Addresses))

	ctx := context.Background()

	// Durable state store, selected by the STATE_STORE scheme.
	states, cleanup, err := buildStateRepository(ctx, cfg.StateStoreURL)
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not initialize state store: %v", err)
	}
	defer cleanup()
	mainLogger.Println("INFO: State store initialized.")

	// Browser capability. Without it there is nothing to scrape, so this
	// is the one collaborator whose absence is fatal.
	b, err := browser.Acquire(ctx)
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not acquire browser capability: %v", err)
	}
	defer b.Close(ctx)
	mainLogger.Println("INFO: Browser capability acquired.")

	sender, err := email.NewGmailSender(ctx, cfg.GmailSender, secrets.EnvProvider{})
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not initialize email sender: %v", err)
	}
	mainLogger.Println("INFO: Email sender initialized.")

	runService := app.NewRunService(
		b,
		app.NewNavigator(appLog),
		states,
		sender,
		jokes.NewClient(""),
		cfg.Addresses,
		cfg.Timezone,
		cfg.CollectionURL,
		cfg.MessageSuffix,
		appLog,
	)

	var reporter notification.Reporter
	if cfg.TelegramToken != "" {
		tgReporter, err := telegram.NewSummaryReporter(cfg.TelegramToken, cfg.TelegramAdminChatID)
		if err != nil {
			mainLogger.Fatalf("FATAL: Could not create Telegram reporter: %v", err)
		}
		reporter = tgReporter
		mainLogger.Println("INFO: Telegram run-summary reporter initialized.")
	}

	if *once {
		runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()
		summary, err := runService.Run(runCtx, app.RunOptions{ForceNotify: *force})
		if err != nil {
			mainLogger.Fatalf("FATAL: Run failed: %v", err)
		}
		if reporter != nil {
			if err := reporter.ReportSummary(summary); err != nil {
				mainLogger.Printf("ERROR: Could not deliver run summary: %v", err)
			}
		}
		fmt.Print(summary.String())
		return
	}

	schedulerLogger := log.New(os.Stdout, "SCHEDULER: ", log.LstdFlags|log.Lshortfile)
	runScheduler := scheduler.NewRunScheduler(runService, reporter, schedulerLogger, cfg.CronSpec, cfg.Timezone)
	runScheduler.Start()

	mainLogger.Println("INFO: Application setup complete. Scheduler is running.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLogger.Println("INFO: Shutting down application...")
	runScheduler.Stop()
	mainLogger.Println("INFO: Application shut down gracefully.")
}

// buildStateRepository wires the repository implementation the deployment
// asked for. Both satisfy notification.Repository.
func buildStateRepository(ctx context.Context, storeURL string) (notification.Repository, func(), error) {
	switch {
	case strings.HasPrefix(storeURL, "redis://"), strings.HasPrefix(storeURL, "rediss://"):
		opts, err := redis.ParseURL(storeURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis STATE_STORE: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("pinging redis: %w", err)
		}
		return rediskv.NewStateRepository(client), func() { client.Close() }, nil
	case strings.HasPrefix(storeURL, "postgres://"), strings.HasPrefix(storeURL, "postgresql://"):
		db, err := idb.NewPostgresConnection(storeURL)
		if err != nil {
			return nil, nil, err
		}
		repo := idb.NewPostgresStateRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported STATE_STORE scheme in %q", storeURL)
	}
}
