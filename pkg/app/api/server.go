// Package api implements app.Runner for the middleware server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/eatglobe/globe-middleware/pkg/api"
	"github.com/eatglobe/globe-middleware/pkg/app/httpserver"
	"github.com/eatglobe/globe-middleware/pkg/auth"
	"github.com/eatglobe/globe-middleware/pkg/config"
	"github.com/eatglobe/globe-middleware/pkg/ledger"
	"github.com/eatglobe/globe-middleware/pkg/pgutil"
	"github.com/eatglobe/globe-middleware/pkg/placestore"
	recservice "github.com/eatglobe/globe-middleware/pkg/recs/service"
	"github.com/eatglobe/globe-middleware/pkg/session"
	"github.com/eatglobe/globe-middleware/pkg/signer"
	"github.com/eatglobe/globe-middleware/pkg/wallet"
)

const defaultRequestTimeout = 60

// accountPollInterval is how often the bridge is polled for out-of-band
// account changes.
const accountPollInterval = 5 * time.Second

// Server holds cfg to init the api server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes new api server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("api server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting globe middleware",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	var placeCache recservice.PlaceCache
	if cfg.Database.Enabled() {
		dbBun, err := pgutil.ConnectDB(&cfg.Database)
		if err != nil {
			return err
		}
		defer func() { _ = dbBun.Close() }()
		placeCache = placestore.NewStore(dbBun)
	} else {
		logger.Info("No read-model database configured, serving from memory only")
	}

	providers := buildProviders(&cfg.Wallets, logger)
	if len(providers) == 0 {
		logger.Warn("No wallet bridges configured, all connects will fail")
	}

	factory := signer.NewFactory(signer.Config{UploadURL: cfg.Ledger.UploadURL}, providers, logger)
	sessions := session.NewManager(factory, logger)

	watcher := wallet.NewWatcher(providers, sessions.HandleAccountEvent, accountPollInterval, logger)
	watcher.Start(ctx)
	defer watcher.Stop()

	reader := ledger.NewClient(
		cfg.Ledger.GraphQLURL,
		cfg.Ledger.GatewayURL,
		logger,
		ledger.WithPageSize(cfg.Ledger.PageSize),
	)
	publisher := ledger.NewPublisher(cfg.App.Name, logger)

	recService := recservice.NewService(
		recservice.Config{AppName: cfg.App.Name, DedupByAuthor: cfg.App.DedupByAuthor},
		sessions,
		factory,
		publisher,
		reader,
		placeCache,
		logger,
	)

	tokens, err := auth.NewTokenIssuer([]byte(cfg.Auth.ServerSeed), cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("setup token issuer: %w", err)
	}

	router := s.setupRouter(sessions, providers, recService, tokens, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	err = httpserver.ServeAndWait(ctx, logger, srv, cfg.Shutdown.Timeout)

	// Stop polling before deferred closes kick in.
	watcher.Stop()

	return err
}

func (s *Server) setupRouter(
	sessions *session.Manager,
	providers map[wallet.Chain]wallet.Provider,
	recService recservice.Service,
	tokens *auth.TokenIssuer,
	logger *zap.Logger,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Second * defaultRequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	apihttp.RegisterRoutes(r, sessions, providers, recService, tokens, logger)

	return r
}

func buildProviders(cfg *config.WalletsConfig, logger *zap.Logger) map[wallet.Chain]wallet.Provider {
	providers := make(map[wallet.Chain]wallet.Provider)
	if cfg.EthereumBridgeURL != "" {
		providers[wallet.ChainEthereum] = wallet.NewBridgeProvider(wallet.ChainEthereum, cfg.EthereumBridgeURL, logger)
	}
	if cfg.SolanaBridgeURL != "" {
		providers[wallet.ChainSolana] = wallet.NewBridgeProvider(wallet.ChainSolana, cfg.SolanaBridgeURL, logger)
	}
	if cfg.ArweaveBridgeURL != "" {
		providers[wallet.ChainArweave] = wallet.NewBridgeProvider(wallet.ChainArweave, cfg.ArweaveBridgeURL, logger)
	}
	return providers
}
