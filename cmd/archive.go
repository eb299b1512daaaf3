package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"LrcSync/core/lyrics"
	"LrcSync/storage"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	archivePut    string
	archiveFile   string
	archiveGet    string
	archiveDelete string
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "MinIO歌词归档管理",
	Long:  `查看和管理MinIO中归档的LRC原文，支持列出、上传、下载、删除。上传前会先解析，无法解析的文本不会归档。`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		fmt.Printf("MinIO配置: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		archive, err := storage.NewLyricArchive(cfg)
		if err != nil {
			log.Fatalf("无法连接到MinIO: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		switch {
		case archivePut != "":
			if archiveFile == "" {
				log.Fatal("上传需要通过 --file 指定歌词文件")
			}
			raw, err := os.ReadFile(archiveFile)
			if err != nil {
				log.Fatalf("读取文件失败: %v", err)
			}
			doc, err := lyrics.Parse(string(raw))
			if err != nil {
				log.Fatalf("解析歌词失败: %v", err)
			}
			if err := archive.Put(ctx, archivePut, string(raw)); err != nil {
				log.Fatalf("上传失败: %v", err)
			}
			fmt.Printf("已归档 %s -> %s（%d 行）\n", archivePut, storage.ObjectName(archivePut), doc.Len())

		case archiveGet != "":
			content, ok, err := archive.Get(ctx, archiveGet)
			if err != nil {
				log.Fatalf("下载失败: %v", err)
			}
			if !ok {
				log.Fatalf("归档不存在: %s", archiveGet)
			}
			fmt.Print(content)

		case archiveDelete != "":
			if err := archive.Delete(ctx, archiveDelete); err != nil {
				log.Fatalf("删除失败: %v", err)
			}
			fmt.Printf("已删除 %s\n", storage.ObjectName(archiveDelete))

		default:
			objects, err := archive.List(ctx)
			if err != nil {
				log.Fatalf("列出归档失败: %v", err)
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Track", "Object", "Size", "Modified"})
			for _, obj := range objects {
				t.AppendRow(table.Row{obj.TrackKey, obj.Name, obj.Size, obj.LastModified.Format(time.DateTime)})
			}
			t.AppendFooter(table.Row{fmt.Sprintf("%d objects", len(objects)), "", "", ""})
			t.Render()
		}
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().StringVar(&archivePut, "put", "", "上传歌词，值为曲目键")
	archiveCmd.Flags().StringVarP(&archiveFile, "file", "f", "", "要上传的 LRC 文件")
	archiveCmd.Flags().StringVar(&archiveGet, "get", "", "输出指定曲目键的归档原文")
	archiveCmd.Flags().StringVarP(&archiveDelete, "delete", "d", "", "删除指定曲目键的归档")

	archiveCmd.Example = `  # 列出所有归档
  lrcsync archive

  # 上传歌词
  lrcsync archive --put netease:123 -f song.lrc

  # 下载歌词
  lrcsync archive --get netease:123 > song.lrc

  # 删除归档
  lrcsync archive -d netease:123`
}
