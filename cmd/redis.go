package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"LrcSync/cache"
	"LrcSync/model"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis连接测试",
	Long:  `测试Redis连接是否成功，并用一条临时歌词记录验证缓存读写。`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("开始测试Redis连接...")

		cfg := loadConfig()
		fmt.Printf("Redis配置: %s:%s, DB: %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		if err := cache.ConnectRedis(cfg); err != nil {
			log.Fatalf("无法连接到Redis: %v", err)
		}
		defer func() {
			if err := cache.CloseRedis(); err != nil {
				log.Printf("关闭Redis连接时发生错误: %v", err)
			}
		}()
		fmt.Println("Redis连接成功！")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cache.CheckRedis(ctx); err != nil {
			log.Fatalf("Redis健康检查失败: %v", err)
		}

		fmt.Println("开始测试歌词缓存读写...")
		lc := cache.NewLyricCache(cache.RedisClient, time.Minute)
		sample := &model.LyricRecord{TrackKey: "lrcsync:healthcheck", Content: "[00:00.00]healthcheck"}
		if err := lc.Set(ctx, sample); err != nil {
			log.Fatalf("写入缓存失败: %v", err)
		}
		got, err := lc.Get(ctx, sample.TrackKey)
		if err != nil || got == nil || got.Content != sample.Content {
			log.Fatalf("读取缓存失败: %v", err)
		}
		if err := lc.Delete(ctx, sample.TrackKey); err != nil {
			log.Fatalf("删除缓存失败: %v", err)
		}
		fmt.Println("Redis测试完成。")
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
