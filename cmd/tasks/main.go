package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/logger"
	"taskboard/internal/server"
	inmemory "taskboard/repository/inmemory"
	"taskboard/repository/mongodb"

	"go.uber.org/zap"
)

func main() {
	cfg := server.ReadConfig()

	if err := logger.Init(cfg.DevLog); err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("запуск сервиса задач...")

	var userRepo server.UserRepository
	var taskRepo server.TaskRepository

	mongoStorage, err := mongodb.NewStorage(cfg.MongoURI, cfg.DBName)
	if err != nil {
		logger.Warn("не удалось подключиться к БД, используем память", zap.Error(err))
		inmem := inmemory.NewStorage()
		userRepo = inmem
		taskRepo = inmem
	} else {
		userRepo = mongoStorage
		taskRepo = mongoStorage
		defer func() {
			closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer closeCancel()
			if err := mongoStorage.Close(closeCtx); err != nil {
				logger.Error("ошибка при закрытии соединения с БД", err)
			}
		}()
	}

	api := server.NewTaskAPI(cfg, userRepo, taskRepo)
	if api == nil {
		logger.Error("не удалось инициализировать API", nil)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("сервис запущен", zap.String("addr", cfg.ServerAddr()))
		if err := api.Start(); err != nil {
			serverErr <- err
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info("получен сигнал, начинаем graceful shutdown...", zap.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := api.Shutdown(shutdownCtx); err != nil {
			logger.Error("ошибка при graceful shutdown", err)
		} else {
			logger.Info("graceful shutdown выполнен успешно")
		}

	case err := <-serverErr:
		logger.Error("ошибка сервера", err)
	}

	logger.Info("сервис завершен")
}
