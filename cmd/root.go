package cmd

import (
	"fmt"
	"os"

	"LrcSync/config"
	"LrcSync/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lrcsync",
	Short: "LrcSync 同步歌词服务与命令行工具",
	Long:  `解析 LRC 歌词，按播放进度定位当前行，并提供歌词存储与同步服务。`,
}

// loadConfig 读取配置并初始化日志，所有子命令共用
func loadConfig() *config.Config {
	cfg, envLoaded := config.Load()

	if err := logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		Console:    cfg.LogConsole,
		OutputPath: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	if !envLoaded {
		logger.Debug("未找到 .env 文件，使用环境变量和默认值")
	}
	return cfg
}

// Execute executes the root command.
func Execute() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
