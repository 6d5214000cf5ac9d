package main

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"marketfront/auth"
	"marketfront/auth/store"
	"marketfront/config"
	"marketfront/market"
	"marketfront/server"
)

// Options are the command line flags; everything else comes from the
// environment (see the config package).
type Options struct {
	EnvFile    string `short:"e" long:"env" description:"path to a .env file to load"`
	ListenAddr string `short:"l" long:"listen" description:"listen address, overrides LISTEN_ADDR"`
}

func main() {
	options := &Options{}
	if _, err := flags.Parse(options); err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load(options.EnvFile)
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	if options.ListenAddr != "" {
		cfg.ListenAddr = options.ListenAddr
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	db, err := sql.Open("sqlite3", cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()
	users, err := store.NewSQLUsers(db)
	if err != nil {
		logger.Fatal("failed to initialize user store", zap.Error(err))
	}

	var sessionStore auth.SessionStore = store.NewMemory()
	if cfg.RedisAddress != "" {
		client, err := store.Connect(&store.RedisConfig{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		sessionStore = store.NewRedisSessions(client)
		logger.Info("using redis client-token cache", zap.String("address", cfg.RedisAddress))
	}

	manager := auth.New(&auth.Config{
		BaseURL:        cfg.MarketBaseURI,
		Client:         auth.Credentials{ID: cfg.ClientID, Secret: cfg.ClientSecret},
		PasswordClient: auth.Credentials{ID: cfg.PasswordClientID, Secret: cfg.PasswordClientSecret},
		RedirectURL:    cfg.RedirectURL,
		Scopes:         cfg.Scopes,
	}, sessionStore, users, auth.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}))

	marketClient := market.New(cfg.MarketBaseURI, manager,
		market.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}))

	srv := server.New(manager, marketClient, users,
		server.NewSessions([]byte(cfg.SessionSecret)),
		server.WithLogger(logger))

	logger.Info("storefront listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("market", cfg.MarketBaseURI))
	if err := http.ListenAndServe(cfg.ListenAddr, srv); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	atomic, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = atomic
	return cfg.Build()
}
