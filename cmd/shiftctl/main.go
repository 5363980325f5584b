package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sysu-ecnc-dev/shift-manager/client/internal/cli"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/config"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
)

func main() {
	os.Exit(run())
}

func run() int {
	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("无法加载配置", "error", err)
		return 1
	}

	/**********************************************
	 * 创建 logger
	 **********************************************/
	// 标准输出留给命令的结果，日志写到标准错误
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)

	// 日历日期统一按配置的时区判断
	domain.Location = cfg.Location()

	/**********************************************
	 * 执行命令
	 **********************************************/
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(cfg, logger)
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("关闭连接失败", "error", err)
		}
	}()

	if err := cli.NewRootCmd(app).ExecuteContext(ctx); err != nil {
		if !cli.Reported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}
