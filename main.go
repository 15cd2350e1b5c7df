package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ChenBigdata421/jxt-latency-probe/sdk/config"
	"github.com/ChenBigdata421/jxt-latency-probe/sdk/pkg/logger"
	"github.com/ChenBigdata421/jxt-latency-probe/sdk/pkg/probe"
)

func main() {
	configFile := flag.String("config", "config/settings.yml", "配置文件路径")
	flag.Parse()

	if err := run(*configFile); err != nil {
		logger.Logger.Error("Latency probe run failed", zap.Error(err))
		os.Exit(1)
	}
}

// run 加载配置并执行一次完整的测量
func run(configFile string) error {
	if err := config.Setup(configFile); err != nil {
		return fmt.Errorf("load config %s: %w", configFile, err)
	}
	logger.Setup()

	p, err := probe.New(config.AppConfig.Probe)
	if err != nil {
		return err
	}
	defer p.Close()

	// Ctrl+C / SIGTERM 取消测量
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return p.Run(ctx)
}
