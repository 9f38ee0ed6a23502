package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-wallet-registry/internal/connector"
	"github.com/sirosfoundation/go-wallet-registry/internal/connector/flagstore"
	"github.com/sirosfoundation/go-wallet-registry/internal/connector/provider"
	"github.com/sirosfoundation/go-wallet-registry/internal/connector/registry"
	"github.com/sirosfoundation/go-wallet-registry/internal/connector/rpcprovider"
	"github.com/sirosfoundation/go-wallet-registry/internal/domain"
	"github.com/sirosfoundation/go-wallet-registry/pkg/config"
	"github.com/sirosfoundation/go-wallet-registry/pkg/logging"
)

var (
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
	providerURL = flag.String("provider", "", "Wallet provider WebSocket URL (empty means no provider)")
	registryURL = flag.String("registry", "", "Wallet registry base URL (overrides config)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *registryURL != "" {
		cfg.Connector.RegistryURL = *registryURL
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Dial the wallet provider if one was given. A nil provider drives
	// the same not-installed path the connector shows end users.
	var prov provider.Provider
	if *providerURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := rpcprovider.Dial(ctx, *providerURL, logger)
		cancel()
		if err != nil {
			logger.Fatal("Failed to dial wallet provider", zap.Error(err))
		}
		defer func() { _ = client.Close() }()
		prov = client
	}

	reporter := registry.NewClient(
		cfg.Connector.RegistryURL,
		time.Duration(cfg.Connector.ReportTimeout)*time.Second,
		logger,
	)
	flags := flagstore.NewFileStore(cfg.Connector.FlagPath)

	conn := connector.New(prov, flags, logger,
		connector.WithReporter(reporter),
		connector.WithReportTimeout(time.Duration(cfg.Connector.ReportTimeout)*time.Second),
		connector.WithReloadHook(func() {
			fmt.Println("Network changed, session restarting...")
		}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	conn.Start(ctx)

	if state := conn.State(); !state.Connected {
		conn.Connect(ctx)
	}
	cancel()

	printState(conn.State())

	// Keep the session alive so provider events (account switches,
	// chain changes) are handled until interrupted.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	conn.Stop()
	logger.Info("Connector exited")
}

func printState(state connector.State) {
	if state.Err != "" {
		fmt.Println(state.Err)
		return
	}
	if !state.Connected {
		fmt.Println("Not connected")
		return
	}
	fmt.Printf("Connected: %s (%s)\n",
		domain.ShortAddress(state.Account),
		domain.ChecksumAddress(state.Account),
	)
	fmt.Printf("Network: %s\n", state.NetworkName)
}
