// Package main (in journal-subfolder) serves the run journal over HTTP
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnendingLoop/BatchWatermark/internal/model"
	"github.com/UnendingLoop/BatchWatermark/internal/mwlogger"
	"github.com/UnendingLoop/BatchWatermark/internal/repository"
	"github.com/UnendingLoop/BatchWatermark/internal/service"
	"github.com/UnendingLoop/BatchWatermark/internal/transport"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"
)

const envFile = "./.env"

type JournalAPIService interface {
	GetList(ctx context.Context, req *model.ListRequest) ([]model.Run, error)
	Get(ctx context.Context, id string) (*model.Run, error)
	GetFiles(ctx context.Context, id string) ([]model.FileEvent, error)
}

func main() {
	// инициализировать конфиг/ считать энвы
	appConfig := config.New()
	appConfig.EnableEnv("")
	if _, err := os.Stat(envFile); err == nil {
		if err := appConfig.LoadEnvFiles(envFile); err != nil {
			log.Fatalf("Failed to load envs: %s\nExiting app...", err)
		}
	}

	// стартуем логгер
	zlog.InitConsole()
	level := appConfig.GetString("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	if err := zlog.SetLevel(level); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// готовим заранее слушатель прерываний - контекст для всего приложения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// подключиться к базе
	dbConn, err := repository.ConnectWithRetries(appConfig, 5, 10*time.Second)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v\nExiting the app...", err)
	}
	// накатываем миграцию
	migrations := appConfig.GetString("MIGRATIONS_PATH")
	if migrations == "" {
		migrations = "./migrations"
	}
	if err := repository.MigrateWithRetries(dbConn.Master, migrations, 10, 15*time.Second); err != nil {
		shutdown(dbConn)
		log.Fatalf("Failed to migrate DB: %v\nExiting the app...", err)
	}

	// создаем экземпляр репо и сервиса
	repo := repository.NewPostgresJournalRepo(dbConn)
	var svc JournalAPIService = service.NewJournalService(repo)
	// cоздаем экземпляр хендлера HTTP
	handlers := transport.NewJournalHandler(svc)
	// сетапим сервер
	mode := appConfig.GetString("GIN_MODE")
	engine := ginext.New(mode)

	engine.GET("/ping", handlers.SimplePinger)
	engine.GET("/runs", handlers.GetAllRuns)            // список запусков с пагинацией и сортировкой
	engine.GET("/runs/:id", handlers.GetRun)            // один запуск
	engine.GET("/runs/:id/files", handlers.GetRunFiles) // результаты по файлам

	port := appConfig.GetString("APP_PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mwlogger.NewMWLogger(engine, zlog.Logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Server launch
	go func() {
		log.Printf("Server running on http://localhost%s\n", srv.Addr)
		err := srv.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				log.Println("Server gracefully stopping...")
			default:
				log.Printf("Server stopped: %v", err)
				stop()
			}
		}
	}()

	// ждем отмены контекста для запуска грейсфул закрытия сервера и бд
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("Failed to shutdown server gracefully:", err)
	}

	shutdown(dbConn)
	log.Println("Exiting journal...")
}

func shutdown(dbConn *dbpg.DB) {
	log.Println("Starting shutdown sequence...")

	// Closing DB connection
	if err := dbConn.Master.Close(); err != nil {
		log.Println("Failed to close DB-conn correctly:", err)
		return
	}
	log.Println("DBconn closed")
}
