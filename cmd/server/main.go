package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"brigadeportal/internal/adapters/dlb"
	web "brigadeportal/internal/adapters/http"
	"brigadeportal/internal/adapters/scheduler"
	"brigadeportal/internal/adapters/storage"
	eventStore "brigadeportal/internal/adapters/storage/event"
	memberStore "brigadeportal/internal/adapters/storage/member"
	musterStore "brigadeportal/internal/adapters/storage/muster"
	synclogStore "brigadeportal/internal/adapters/storage/synclog"
	"brigadeportal/internal/application/orchestrators"
	"brigadeportal/internal/config"
	"brigadeportal/internal/domain/holiday"
	"brigadeportal/internal/domain/synclog"
	"brigadeportal/internal/domain/training"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	// Initialize database with WAL mode, foreign keys, and busy timeout
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize schema: %v", err)
	}
	log.Println("Database initialized successfully!")

	// Wrap DB with slow-query instrumentation
	timedDB := storage.NewTimedDB(db)

	stores := &web.Stores{
		MemberStore:     memberStore.NewSQLiteStore(timedDB),
		AttendanceStore: musterStore.NewSQLiteStore(timedDB),
		SyncEntryStore:  synclogStore.NewSQLiteStore(timedDB),
		SyncStateStore:  synclogStore.NewSQLiteStore(timedDB),
		EventStore:      eventStore.NewSQLiteStore(timedDB),
	}

	// DLB client: real HTTP client when configured, stub otherwise so the
	// portal still runs without upstream access.
	var dlbClient dlb.Client
	if cfg.DLBBaseURL != "" {
		dlbClient = dlb.NewHTTPClient(cfg.DLBBaseURL, cfg.DLBAPIToken, cfg.DLBTimeout)
		log.Printf("DLB client configured for %s", cfg.DLBBaseURL)
	} else {
		dlbClient = dlb.NewStubClient()
		log.Println("WARNING: DLB_BASE_URL is not set — pull sync is running against a stub")
	}

	// Nightly pull sync
	runSync := func(ctx context.Context, input orchestrators.PullSyncInput) (synclog.Counts, error) {
		return orchestrators.ExecutePullSync(ctx, input, orchestrators.PullSyncDeps{
			DLB:             dlbClient,
			MemberStore:     stores.MemberStore,
			AttendanceStore: stores.AttendanceStore,
			EntryStore:      stores.SyncEntryStore,
			StateStore:      stores.SyncStateStore,
			GenerateID:      uuid.NewString,
			Now:             time.Now,
		})
	}
	sched := scheduler.New(cfg.BrigadeID, cfg.SyncCron, cfg.DLBTimeout, runSync)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start sync scheduler: %v", err)
	}
	defer sched.Stop()

	mux := web.NewMux(stores, web.Deps{
		BrigadeID:     cfg.BrigadeID,
		Region:        cfg.Region,
		WebhookSecret: cfg.WebhookSecret,
		DLB:           dlbClient,
		Generator:     training.NewGenerator(holiday.NewCalendar()),
		Training: web.TrainingDefaults{
			Weekday:         cfg.TrainingWeekday,
			StartTime:       cfg.TrainingTime,
			DurationMinutes: cfg.TrainingDuration,
			HorizonMonths:   cfg.TrainingHorizon,
		},
	})

	log.Printf("Brigade portal %s starting on %s (brigade=%s, region=%s)", version, cfg.Addr, cfg.BrigadeID, cfg.Region)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
