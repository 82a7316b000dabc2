package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	httpadp "retailbank-backoffice/internal/adapter/http"
	idemp "retailbank-backoffice/internal/adapter/middleware"
	notifyadp "retailbank-backoffice/internal/adapter/notify"
	"retailbank-backoffice/internal/adapter/repository/mysql"
	"retailbank-backoffice/internal/config"
	"retailbank-backoffice/internal/domain/notify"
	"retailbank-backoffice/internal/infrastructure/cache"
	"retailbank-backoffice/internal/infrastructure/db"
	"retailbank-backoffice/internal/usecase/account"
	"retailbank-backoffice/internal/usecase/card"
	"retailbank-backoffice/internal/usecase/loan"
	"retailbank-backoffice/internal/usecase/loanpayment"
	"retailbank-backoffice/internal/usecase/notice"
	"retailbank-backoffice/internal/usecase/numbering"
	"retailbank-backoffice/internal/usecase/underwriting"
	"retailbank-backoffice/pkg/clock"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), log)
	if err != nil {
		log.WithError(err).Fatal("mysql")
	}
	if err := mysql.AutoMigrate(gdb); err != nil {
		log.WithError(err).Fatal("migrate")
	}

	rdb, err := cache.OpenRedis(context.Background(), cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Fatal("redis")
	}
	defer rdb.Close()

	var sink notify.Sink = notifyadp.NewLogSink(log)
	if cfg.NotifyEnabled {
		sink = notifyadp.NewSMTPSink(notifyadp.SMTPConfig{
			Host: cfg.SMTPHost, Port: cfg.SMTPPort, User: cfg.SMTPUser, Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom, InsecureVerify: cfg.SMTPInsecureVerify,
		}, log)
	}

	uow := mysql.NewGormUoW(gdb)
	dispatcher := notice.NewDispatcher(mysql.NewUserDirectory(gdb), sink, log)
	clk := clock.System{}
	numbers := numbering.New(cfg.NumberMaxAttempts, log)

	accountUC := account.NewUsecase(uow, numbers, dispatcher, clk, log)
	loanUC := loan.NewUsecase(uow, dispatcher, clk, log)
	underwritingUC := underwriting.NewUsecase(uow, numbers, dispatcher, clk, log)
	paymentUC := loanpayment.NewUsecase(uow, dispatcher, clk, log)
	cardUC := card.NewUsecase(uow, numbers, dispatcher, clk, log)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURIPath: true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method": v.Method, "path": v.URIPath, "status": v.Status, "latency_ms": v.Latency.Milliseconds(),
			})
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("request")
			return nil
		},
	}))

	httpadp.Register(e, httpadp.Handlers{
		Health:   httpadp.NewHandler(),
		Loans:    httpadp.NewLoanHandler(underwritingUC, loanUC, paymentUC),
		Cards:    httpadp.NewCardHandler(cardUC),
		Accounts: httpadp.NewAccountHandler(accountUC),
	}, idemp.Idempotency(rdb, idemp.IdempotencyOptions{TTL: cfg.IdempotencyTTL(), Log: log}))

	sched := cron.New()
	if _, err := sched.AddFunc(cfg.ArrearsCron, func() {
		n, err := loanUC.RefreshArrears(context.Background())
		if err != nil {
			log.WithError(err).Error("arrears refresh failed")
			return
		}
		log.WithField("changed", n).Info("arrears refreshed")
	}); err != nil {
		log.WithError(err).Fatal("schedule arrears refresh")
	}
	sched.Start()

	go func() {
		addr := ":" + cfg.AppPort
		log.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	<-sched.Stop().Done()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown")
	}
}
