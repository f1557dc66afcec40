package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mkrupp/userapi/internal/infra/config"
	"github.com/mkrupp/userapi/internal/infra/logging"
	"github.com/mkrupp/userapi/internal/infra/transport/http"
	"github.com/mkrupp/userapi/internal/repo/user"
	"github.com/mkrupp/userapi/internal/svc/apisvc"
	"github.com/mkrupp/userapi/internal/svc/authsvc"
	"github.com/mkrupp/userapi/internal/svc/authsvc/authclient"
	"github.com/mkrupp/userapi/internal/svc/usersvc"
)

const (
	appName = "userapi"
	svcName = "usersvc"
)

type Config struct {
	config.EnvConfig

	Log  logging.LoggerConfig        `envPrefix:"LOG_"`
	Auth authsvc.AuthConfig          `envPrefix:"AUTH_"`
	HTTP http.HTTPTransportConfig    `envPrefix:"HTTP_"`
	User user.RepositoryConfig       `envPrefix:"USER_"`
	Gate authclient.HTTPClientConfig `envPrefix:"GATE_"`
}

func main() {
	var (
		cfg Config

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.usersvc")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", logging.Err(err))
		} else {
			log.InfoContext(ctx, "shutdown")
		}
	}()

	repoFactory, err := user.NewRepositoryFactory(cfg.User)
	if err != nil {
		return fmt.Errorf("new repository factory: %w", err)
	}

	userRepo, err := repoFactory(ctx)
	if err != nil {
		return fmt.Errorf("new user repo: %w", err)
	}

	defer func() {
		if cerr := userRepo.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close user repo: %w", cerr))
		}
	}()

	authSvc, err := authsvc.NewAuthService(userRepo, cfg.Auth)
	if err != nil {
		return fmt.Errorf("new auth service: %w", err)
	}

	userSvc := usersvc.NewUserService(userRepo, authSvc)

	// Gated routes verify tokens locally unless a remote verifier is configured
	var authClient authclient.AuthClient = authSvc
	if cfg.Gate.AuthURL != "" {
		authClient = authclient.NewHTTPClient(cfg.Gate, nil)
	}

	httpTransport := apisvc.NewHTTPTransport(
		authsvc.NewHTTPTransport(authSvc),
		usersvc.NewHTTPTransport(userSvc),
		authClient,
	)

	log.InfoContext(ctx, "starting", "driver", cfg.User.Driver, "token_ttl", authSvc.Codec.TTL())

	if err := http.ListenAndServe(ctx, httpTransport, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
