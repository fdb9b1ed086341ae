package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Ghost247-bot/ulster-sub001/internal/catalog"
	"github.com/Ghost247-bot/ulster-sub001/internal/config"
	"github.com/Ghost247-bot/ulster-sub001/internal/db"
	"github.com/Ghost247-bot/ulster-sub001/internal/handlers"
	"github.com/Ghost247-bot/ulster-sub001/internal/realtime"
	"github.com/Ghost247-bot/ulster-sub001/internal/retry"
	"github.com/Ghost247-bot/ulster-sub001/internal/services"
	"github.com/Ghost247-bot/ulster-sub001/internal/store"
	"github.com/Ghost247-bot/ulster-sub001/internal/websocket"
)

func main() {
	cfg := config.Load()

	database, err := connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	// The privileged handle is optional: without it the server still runs,
	// just without user provisioning and raw statements. A configured but
	// unreachable DSN is a deployment error and fatal.
	var privileged *sqlx.DB
	if cfg.ServiceDatabaseURL != "" {
		privileged, err = connect(cfg.ServiceDatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect service database: %v", err)
		}
		defer privileged.Close()
	} else {
		log.Println("SERVICE_DATABASE_URL not set; privileged routes disabled")
	}

	cat := loadCatalog(database)

	userStore := store.NewUserStore(database)
	profileStore := store.NewProfileStore(database)
	accountStore := store.NewAccountStore(database)
	transactionStore := store.NewTransactionStore(database)
	cardStore := store.NewCardStore(database)
	notificationStore := store.NewNotificationStore(database)
	auditStore := store.NewAuditStore(database)

	accountService := services.NewAccountService(database, accountStore, notificationStore, auditStore)
	transactionService := services.NewTransactionService(database, accountStore, transactionStore)

	editorDB := database
	if privileged != nil {
		editorDB = privileged
	}
	tableStore := store.NewTableStore(editorDB)
	tableEditor := services.NewTableEditor(cat, tableStore)

	hub := websocket.NewHub()
	bridge := startBridge(cfg.DatabaseURL, accountStore, hub)
	if bridge != nil {
		defer bridge.Close()
	}

	var provisioner *handlers.Provisioner
	var rawExecutor handlers.RawExecutor
	if privileged != nil {
		provisioner = &handlers.Provisioner{
			Tx:       db.NewTxRunner(privileged),
			Users:    store.NewUserStore(privileged),
			Profiles: store.NewProfileStore(privileged),
			Accounts: store.NewAccountStore(privileged),
		}
		rawExecutor = tableStore
	}

	router := handlers.NewRouter(handlers.Deps{
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		Auth: handlers.NewAuthHandler(cfg.JWTSecret, cfg.TokenTTL, db.NewTxRunner(database),
			userStore, profileStore, accountStore, notificationStore),
		Profile:           handlers.NewProfileHandler(profileStore),
		Accounts:          handlers.NewAccountHandler(accountService),
		Transactions:      handlers.NewTransactionHandler(transactionService),
		Cards:             handlers.NewCardHandler(database, cardStore, accountService),
		Notifications:     handlers.NewNotificationHandler(notificationStore),
		Admin:             handlers.NewAdminHandler(accountService, auditStore, provisioner),
		Tables:            handlers.NewTableHandler(tableEditor, rawExecutor, auditStore),
		AdminStore:        profileStore,
		Hub:               hub,
		PrivilegedEnabled: privileged != nil,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("listening on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-shutdown
	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// connect retries the initial database connection; the database regularly
// comes up after the server in container deployments.
func connect(dsn string) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return retry.Do(ctx, func(context.Context) (*sqlx.DB, error) {
		return db.Connect(dsn)
	}, 5, time.Second)
}

// loadCatalog introspects the live schema, verifies it against the static
// catalog, and falls back to the static copy when introspection is
// unavailable. Drift between the two is fatal.
func loadCatalog(database *sqlx.DB) *catalog.Catalog {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	live, err := retry.Do(ctx, func(ctx context.Context) (*catalog.Catalog, error) {
		return catalog.Load(ctx, database)
	}, 3, 500*time.Millisecond)
	if err != nil {
		log.Printf("catalog introspection failed, using static catalog: %v", err)
		return catalog.Static()
	}
	if err := catalog.Verify(live, catalog.Static()); err != nil {
		log.Fatalf("%v", err)
	}
	return live
}

func startBridge(databaseURL string, accounts realtime.AccountLookup, hub *websocket.Hub) *realtime.Bridge {
	listener := pq.NewListener(databaseURL, 10*time.Second, time.Minute, func(event pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("realtime listener: %v", err)
		}
	})
	bridge, err := realtime.New(listener, accounts, hub)
	if err != nil {
		log.Printf("realtime bridge disabled: %v", err)
		_ = listener.Close()
		return nil
	}
	go bridge.Run(context.Background())
	return bridge
}
