package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"LrcSync/config"
	"LrcSync/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// LyricArchive 将原始 LRC 文本归档到 MinIO
type LyricArchive struct {
	client *minio.Client
	bucket string
}

// NewLyricArchive 创建 MinIO 客户端并确保存储桶存在
func NewLyricArchive(cfg *config.Config) (*LyricArchive, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("检查存储桶失败: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return nil, fmt.Errorf("创建存储桶失败: %w", err)
		}
		logger.Info("创建存储桶", logger.String("bucket", cfg.MinioBucket))
	}

	return &LyricArchive{client: client, bucket: cfg.MinioBucket}, nil
}

const objectPrefix = "lyrics/"

// ObjectName 返回歌词对象路径，如 "lyrics/netease:123.lrc"
//
// 曲目键经 url.PathEscape 编码，不同的键总是对应不同的对象。
func ObjectName(trackKey string) string {
	return objectPrefix + url.PathEscape(trackKey) + ".lrc"
}

// TrackKeyFromObject 是 ObjectName 的逆运算
func TrackKeyFromObject(name string) (string, bool) {
	if !strings.HasPrefix(name, objectPrefix) || !strings.HasSuffix(name, ".lrc") {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimSuffix(strings.TrimPrefix(name, objectPrefix), ".lrc"))
	if err != nil {
		return "", false
	}
	return key, true
}

// Put 上传原始文本
func (a *LyricArchive) Put(ctx context.Context, trackKey, content string) error {
	_, err := a.client.PutObject(ctx, a.bucket, ObjectName(trackKey),
		strings.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"})
	if err != nil {
		return fmt.Errorf("上传歌词失败: %w", err)
	}
	logger.Debug("归档歌词",
		logger.String("object", ObjectName(trackKey)),
		logger.Int64("size", int64(len(content))))
	return nil
}

// Get 下载原始文本，对象不存在时返回 ("", false, nil)
func (a *LyricArchive) Get(ctx context.Context, trackKey string) (string, bool, error) {
	object, err := a.client.GetObject(ctx, a.bucket, ObjectName(trackKey), minio.GetObjectOptions{})
	if err != nil {
		return "", false, fmt.Errorf("读取歌词失败: %w", err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", false, nil
		}
		return "", false, fmt.Errorf("读取歌词失败: %w", err)
	}
	return string(data), true, nil
}

// Delete 删除归档
func (a *LyricArchive) Delete(ctx context.Context, trackKey string) error {
	return a.client.RemoveObject(ctx, a.bucket, ObjectName(trackKey), minio.RemoveObjectOptions{})
}

// ArchivedObject 归档对象概要
type ArchivedObject struct {
	Name         string
	TrackKey     string
	Size         int64
	LastModified time.Time
}

// List 列出 lyrics/ 下的所有归档
func (a *LyricArchive) List(ctx context.Context) ([]ArchivedObject, error) {
	var objects []ArchivedObject
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: objectPrefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("列出归档失败: %w", obj.Err)
		}
		key, _ := TrackKeyFromObject(obj.Key)
		objects = append(objects, ArchivedObject{Name: obj.Key, TrackKey: key, Size: obj.Size, LastModified: obj.LastModified})
	}
	return objects, nil
}
