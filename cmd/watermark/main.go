// Package main (in watermark-subfolder) runs one watermarking batch over an input folder
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnendingLoop/BatchWatermark/internal/imageproc"
	"github.com/UnendingLoop/BatchWatermark/internal/model"
	"github.com/UnendingLoop/BatchWatermark/internal/storage"
	"github.com/UnendingLoop/BatchWatermark/internal/worker"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/zlog"
)

const envFile = "./.env"

const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// инициализировать конфиг/ считать энвы, .env необязателен
	appConfig := config.New()
	appConfig.EnableEnv("")
	if _, err := os.Stat(envFile); err == nil {
		if err := appConfig.LoadEnvFiles(envFile); err != nil {
			log.Printf("Failed to load envs from %s: %s", envFile, err)
			return exitUsage
		}
	}

	opts, err := parseFlags(args, appConfig, os.Stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		log.Printf("Invalid options: %v", err)
		return exitUsage
	}

	// стартуем логгер
	zlog.InitConsole()
	if err := zlog.SetLevel(opts.logLevel); err != nil {
		log.Printf("Failed to init logger: %v", err)
		return exitUsage
	}
	logger := zlog.Logger

	if opts.spacingDefaulted {
		logger.Warn().Msgf("Spacing not set, using %dpx (library default is %dpx)", model.CLISpacing, model.DefaultSpacing)
	}

	// Ctrl+C дает дообработать текущий файл и останавливает батч
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs := afero.NewOsFs()

	// папки для результатов и ошибок появляются даже если водяной знак не загрузится
	sink, err := storage.NewImgStorage(appConfig, fs, opts.batch.OutputDir, 3, 5*time.Second, logger)
	if err != nil {
		logger.Error().Err(err).Msgf("Failed to init output %s", opts.batch.OutputDir)
		return exitFatal
	}
	if err := worker.PrepareFolders(ctx, fs, sink, opts.batch); err != nil {
		logger.Error().Err(err).Msg("Failed to prepare folders")
		return exitFatal
	}

	mark, err := imageproc.LoadWatermark(fs, opts.watermark, logger)
	if err != nil {
		logger.Error().Err(err).Msgf("Failed to load watermark %s", opts.watermark.Path)
		return exitFatal
	}
	size := mark.Size()
	logger.Info().Msgf("Watermark %s prepared: %dx%d", opts.watermark.Path, size.X, size.Y)

	pub, closePub := newPublisher(ctx, appConfig, logger)
	defer closePub()
	journal, closeJournal := newJournal(appConfig, logger)
	defer closeJournal()

	w := worker.NewWorkerInstance(fs, sink, pub, journal, mark, opts.batch, logger)
	if _, _, err := w.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Batch could not start")
		return exitFatal
	}

	return exitOK
}
