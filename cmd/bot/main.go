package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"attendance-bot/internal/config"
	"attendance-bot/internal/handler"
	"attendance-bot/internal/httpapi"
	"attendance-bot/internal/repository"
	"attendance-bot/internal/service"
	"attendance-bot/internal/upstream"
	"attendance-bot/pkg/attendance"
	"attendance-bot/pkg/telegram"
	"attendance-bot/pkg/weekends"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	logrus.Info("Initializing config...")
	cfg := config.GetBotConfig()
	logrus.Info("Config initialized...")

	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// Инициализируем SQLite базу данных: токены сессий и нерабочие дни
	gormLogLevel := gormlogger.Warn
	if cfg.Debug {
		gormLogLevel = gormlogger.Info
	}
	db, err := gorm.Open(sqlite.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		logrus.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatal("Failed to get database instance:", err)
	}

	sessionRepo, err := repository.NewGormSessionRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create session repository")
	}

	nonWorkingDayRepo, err := repository.NewGormNonWorkingDayRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create non-working day repository")
	}

	nonWorkingDayService, err := service.NewNonWorkingDayService(nonWorkingDayRepo)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load non-working days")
	}

	// Загружаем производственный календарь, если он указан
	if len(cfg.NonWorkingDaysFile) > 0 {
		calendar, err := weekends.LoadCalendar(cfg.NonWorkingDaysFile...)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to load non-working days calendar")
		}
		added, err := nonWorkingDayService.ImportCalendar(calendar.Days())
		if err != nil {
			logrus.WithError(err).Fatal("Failed to import non-working days calendar")
		}
		logrus.Infof("Calendar has %d non-working days, %d new", calendar.Len(), added)
	}

	goals := attendance.Goals{
		DailyHours: cfg.DailyGoalHours,
		Calendar:   nonWorkingDayService,
	}

	attendanceClient := upstream.NewClient(upstream.Config{
		URL:                cfg.AttendanceURL,
		Timeout:            cfg.FetchTimeout,
		CacheTTL:           cfg.CacheTTL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	sessionService := service.NewSessionService(sessionRepo)
	attendanceService := service.NewAttendanceService(attendanceClient, cfg.Location, goals)

	// Создаем клиент Telegram
	client, err := telegram.NewClient(cfg.TelegramToken, cfg.Debug)
	if err != nil {
		logrus.Fatal("Failed to create Telegram client:", err)
	}

	logrus.Infof("Authorized on account %s", client.UserName())
	if cfg.OwnerChatID != 0 {
		logrus.Infof("Bot is locked to chat ID: %d", cfg.OwnerChatID)
	}

	botHandler := handler.NewHandler(client.Bot, sessionService, attendanceService, nonWorkingDayService, cfg)

	// Обработка сигналов для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		botHandler.HandleUpdates(ctx, client.Updates())
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		client.Stop()
		return nil
	})

	if cfg.HTTPAddr != "" {
		server := httpapi.NewServer(cfg.HTTPAddr, attendanceService)
		g.Go(func() error {
			return server.Run(ctx)
		})
	}

	logrus.Info("Bot started. Press Ctrl+C to stop.")

	exitCode := 0
	if err := g.Wait(); err != nil {
		logrus.WithError(err).Error("Service stopped with error")
		exitCode = 1
	}
	stop()

	// Закрываем соединение с БД
	if err := sqlDB.Close(); err != nil {
		logrus.Infof("Error closing database: %v", err)
	}

	logrus.Info("Bot stopped gracefully")
	os.Exit(exitCode)
}
