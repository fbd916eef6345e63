package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mkrupp/socialsvc/internal/infra/config"
	"github.com/mkrupp/socialsvc/internal/infra/logging"
	"github.com/mkrupp/socialsvc/internal/infra/transport/http"
	"github.com/mkrupp/socialsvc/internal/repo/account"
	"github.com/mkrupp/socialsvc/internal/repo/message"
	"github.com/mkrupp/socialsvc/internal/repo/sqldb"
	"github.com/mkrupp/socialsvc/internal/svc/socialsvc"
)

const (
	appName = "social"
	svcName = "socialsvc"
)

type Config struct {
	config.EnvConfig

	Log  logging.LoggerConfig          `envPrefix:"LOG_"`
	HTTP socialsvc.HTTPTransportConfig `envPrefix:"HTTP_"`
	DB   sqldb.Config                  `envPrefix:"DB_"`
}

func main() {
	var (
		cfg Config

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.Parse(ctx, &cfg, configPrefix, config.WithDotEnv(".env")); err != nil {
		fmt.Fprintln(os.Stderr, "parse config:", err)
		os.Exit(2)
	}

	if err := logging.Configure(ctx, cfg.Log, loggerName); err != nil {
		fmt.Fprintln(os.Stderr, "configure logging:", err)
		os.Exit(2)
	}

	if err := run(ctx, cfg); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.socialsvc")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)

			return
		}

		log.InfoContext(ctx, "shutdown")
	}()

	db, err := sqldb.Open(ctx, cfg.DB, logging.GetLogger("repo.sqldb"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	accounts := account.NewSQLAccountRepository(db, logging.GetLogger("repo.account"))
	messages := message.NewSQLMessageRepository(db, logging.GetLogger("repo.message"))
	validator := socialsvc.NewValidator(accounts, messages)

	accountSvc := socialsvc.NewAccountService(accounts, validator, db, logging.GetLogger("svc.socialsvc.account_service"))
	messageSvc := socialsvc.NewMessageService(messages, validator, db, logging.GetLogger("svc.socialsvc.message_service"))

	defer func() {
		err = errors.Join(err, accountSvc.Close(), messageSvc.Close(), db.Close())
	}()

	httpTransport := socialsvc.NewHTTPTransport(
		accountSvc,
		messageSvc,
		db,
		cfg.HTTP,
		logging.GetLogger("svc.socialsvc.http_transport"),
	)

	if err := http.ListenAndServe(
		ctx, httpTransport, cfg.HTTP.HTTPTransportConfig, logging.GetLogger("infra.transport.http"),
	); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
