package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"crowdfund-sync/annotations"
	"crowdfund-sync/chain"
	"crowdfund-sync/db"
	"crowdfund-sync/handlers"
	"crowdfund-sync/logger"
	"crowdfund-sync/models"
	"crowdfund-sync/registry"
	"crowdfund-sync/repository"
	"crowdfund-sync/routers"
	"crowdfund-sync/submit"
)

func main() {
	// Load config
	viper.SetConfigFile("config/config.yaml")
	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("Config file error:", err)
		os.Exit(1)
	}

	appLogFile := viper.GetString("log.app_log_file")
	logLevel := viper.GetString("log.level")

	if err := logger.InitLogger(appLogFile, logLevel); err != nil {
		fmt.Println("Failed to initialize logger:", err)
		os.Exit(1)
	}

	logger.Logger.Info("Starting campaign sync server...")

	ctx := context.Background()

	// Wallet provider for the already-authorized session account
	wallet := &chain.StaticWallet{
		Account: chainAccount(),
		Chain:   viper.GetUint64("wallet.chain_id"),
	}

	// Known ledger deployments per chain. Only the in-process simulated
	// ledger has a local binding; real deployments are resolved by an
	// external node binding and rejected here.
	deployments := make(map[uint64]chain.Deployment)
	for id, address := range viper.GetStringMapString("deployments") {
		chainID, err := parseChainID(id)
		if err != nil {
			logger.Logger.Fatal("Invalid deployment chain id", zap.String("chain_id", id), zap.Error(err))
		}
		if address != "memory" {
			logger.Logger.Warn("No local binding for deployment, skipping",
				zap.Uint64("chain_id", chainID), zap.String("address", address))
			continue
		}
		deployments[chainID] = chain.Deployment{Address: address, Handle: chain.NewMemoryLedger()}
	}

	client := chain.NewClient(wallet, deployments)
	account, err := client.Connect(ctx)
	if err != nil {
		logger.Logger.Fatal("Wallet connection failed", zap.Error(err))
	}
	ledger, err := client.ResolveLedger(ctx)
	if err != nil {
		logger.Logger.Fatal("Ledger resolution failed", zap.Error(err))
	}

	// Initialize the campaign registry and pull the first snapshot. A failed
	// first discovery is not fatal; the registry stays stale until the next
	// refresh succeeds.
	reg := registry.New(ledger, viper.GetInt("discovery.workers"))
	if err := reg.Refresh(ctx); err != nil {
		logger.Logger.Warn("Initial campaign discovery failed", zap.Error(err))
	}

	sub := submit.New(ledger, reg, account)

	// Annotation store, optionally persisted in LevelDB
	var repo annotations.Repository
	if path := viper.GetString("annotations.leveldb_path"); path != "" {
		ldb, err := db.NewLevelDB(path)
		if err != nil {
			logger.Logger.Fatal("Failed to open leveldb", zap.Error(err))
		}
		defer ldb.Close()
		repo = repository.NewAnnotationRepository(ldb)
	}
	store, err := annotations.NewStore(repo)
	if err != nil {
		logger.Logger.Fatal("Failed to load annotations", zap.Error(err))
	}

	// Initialize HTTP handlers
	h := handlers.NewHandler(reg, sub, store, account)

	// Setup router
	r := mux.NewRouter()
	routers.RegisterRoutes(r, h)

	// HTTP Server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", viper.GetInt("server.port")),
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			logger.Logger.Info("Server stopped", zap.Error(err))
		}
	}()

	logger.Logger.Info("Server running on port", zap.Int("port", viper.GetInt("server.port")))

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Logger.Info("Shutdown signal received, exiting...")
	srv.Close()
}

func chainAccount() models.Account {
	return models.Account(viper.GetString("wallet.account"))
}

func parseChainID(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
