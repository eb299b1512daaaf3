package lyrics

import "maps"

// MetadataKey 由文档持有者提供的元数据键
type MetadataKey string

// 所有值均为字符串，解析器本身不解释其内容
const (
	MetaSource       MetadataKey = "source"       // 歌词来源标识，如 "netease"、"local"
	MetaLyricsURL    MetadataKey = "lyricsURL"    // 原始歌词地址
	MetaSearchTitle  MetadataKey = "searchTitle"  // 搜索时使用的歌名
	MetaSearchArtist MetadataKey = "searchArtist" // 搜索时使用的歌手
)

// SourceUnknown 来源未知时使用的值
const SourceUnknown = "unknown"

// Metadata 文档附带的元数据
type Metadata map[MetadataKey]string

// Metadata 返回元数据副本
func (d *Document) Metadata() Metadata {
	return maps.Clone(d.metadata)
}

// SetMetadata 整体替换元数据
func (d *Document) SetMetadata(m Metadata) {
	d.metadata = maps.Clone(m)
	if d.metadata == nil {
		d.metadata = Metadata{}
	}
}

// HasMetadata reports whether key is present.
func (d *Document) HasMetadata(key MetadataKey) bool {
	_, ok := d.metadata[key]
	return ok
}
