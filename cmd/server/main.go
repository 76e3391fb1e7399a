package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"arc_router/pkg/api"
	"arc_router/pkg/logger"
	"arc_router/pkg/solver"
	"arc_router/pkg/util"
)

func main() {
	if err := util.ReadConfig(); err != nil {
		log.Fatalf("Failed to read config: %v", err)
	}

	port := flag.Int("port", viper.GetInt("API_PORT"), "HTTP port")
	corsOrigin := flag.String("cors-origin", viper.GetString("CORS_ORIGIN"), "CORS allowed origin (empty = same-origin)")
	flag.Parse()

	zlog, err := logger.New()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	solverCommand := viper.GetStringSlice("SOLVER_COMMAND")
	solve := func(ctx context.Context, instancePath string) ([]byte, error) {
		return solver.Run(ctx, solverCommand, instancePath)
	}

	cfg := api.DefaultConfig(fmt.Sprintf(":%d", *port))
	cfg.CORSOrigin = *corsOrigin
	cfg.MaxConcurrent = viper.GetInt("MAX_CONCURRENT")
	cfg.RequestTimeout = viper.GetDuration("SOLVER_TIMEOUT")
	cfg.WriteTimeout = cfg.RequestTimeout + cfg.ReadTimeout

	handlers := api.NewHandlers(solve, zlog)
	srv := api.NewServer(cfg, handlers, zlog)

	if err := api.ListenAndServe(srv, zlog); err != nil {
		zlog.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
