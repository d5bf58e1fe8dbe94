// Command sync runs the dataset sync once and prints the per-dataset report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kapu/repfinder-go/internal/app"
	"github.com/kapu/repfinder-go/internal/config"
	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/util"
	"go.uber.org/zap"
)

func main() {
	datasetsFlag := flag.String("datasets", "", "comma separated datasets to sync (default: all)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var datasets []domain.Dataset
	for _, name := range config.ParseCommaSeparated(*datasetsFlag) {
		ds, ok := domain.ParseDataset(name)
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown dataset: %s\n", name)
			os.Exit(2)
		}
		datasets = append(datasets, ds)
	}

	buildCtx, buildCancel := context.WithTimeout(context.Background(), 30*time.Second)
	container, err := app.Build(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble application services", zap.Error(err))
		os.Exit(1)
	}

	if !cfg.Redis.Enabled() {
		logger.Warn("Syncing into process memory; results are discarded on exit")
	}

	report := container.Job.Run(context.Background(), datasets...)
	container.Close()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.Error("Failed to encode report", zap.Error(err))
		os.Exit(1)
	}

	if report.Failed() > 0 {
		os.Exit(1)
	}
}
