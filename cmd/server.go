package cmd

import (
	"LrcSync/logger"
	"LrcSync/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动歌词服务",
	Long:  `启动 HTTP 服务，提供歌词解析、存储、定位接口以及 WebSocket 同步通道`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if err := server.Start(cfg); err != nil {
			logger.Fatal("服务异常退出", logger.ErrorField(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
