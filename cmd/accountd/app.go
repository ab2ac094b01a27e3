package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aliyevdev/accountd/internal/db"
	"github.com/aliyevdev/accountd/internal/handlers"
	"github.com/aliyevdev/accountd/internal/logger"
	"github.com/aliyevdev/accountd/internal/notifier"
	"github.com/aliyevdev/accountd/internal/repository/postgres"
	"github.com/aliyevdev/accountd/internal/service/auth"
	"github.com/aliyevdev/accountd/internal/service/auth/tokenmanager"
	"github.com/aliyevdev/accountd/internal/service/verification"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	userRepo := &postgres.UserRepo{DB: pool}
	refreshRepo := &postgres.RefreshTokenRepo{DB: pool}
	codeRepo := &postgres.VerifyCodeRepo{DB: pool}

	// Initialize code delivery
	// Channels without configured gateways silently drop codes, useful for
	// local runs
	var sms notifier.Notifier = notifier.NoOp{}
	if c.SMSGatewayURL != "" {
		sms = notifier.NewSMS(notifier.SMSConfig{
			GatewayURL: c.SMSGatewayURL,
			APIKey:     c.SMSAPIKey,
			Sender:     c.SMSSender,
		})
	}
	var email notifier.Notifier = notifier.NoOp{}
	if c.SMTPHost != "" {
		email = notifier.NewEmail(notifier.EmailConfig{
			Host:     c.SMTPHost,
			Port:     c.SMTPPort,
			Username: c.SMTPUsername,
			Password: c.SMTPPassword,
			From:     c.SMTPFrom,
		})
	}

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		SecretKey:  c.SecretKey,
		AccessTTL:  c.AccessTokenTTL,
		RefreshTTL: c.RefreshTokenTTL,
	}, refreshRepo)
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	codes, err := verification.NewService(verification.Config{
		CodeTTL:    c.CodeTTL,
		CodeLength: c.CodeLength,
	}, codeRepo, sms, email, logger)
	if err != nil {
		return nil, fmt.Errorf("error while creating verification service. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{}, tokenManager, userRepo, codes, logger)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	mux := handlers.NewRouter(authService, logger)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		logger:     logger,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
