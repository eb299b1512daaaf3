package lyrics

import (
	"maps"
	"slices"
	"strconv"
)

// TagKey ID 标签的键，未识别的键按原样保留
type TagKey string

const (
	TagTitle  TagKey = "ti"
	TagAlbum  TagKey = "al"
	TagArtist TagKey = "ar"
	TagAuthor TagKey = "au"
	TagLrcBy  TagKey = "by"
	TagOffset TagKey = "offset" // 毫秒，带符号整数
)

// Line 一行带时间的歌词
type Line struct {
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"` // 秒
}

// TimeTag 返回 "MM:SS.sss" 形式的时间标签
func (l Line) TimeTag() string {
	return FormatTimestamp(l.Timestamp)
}

func (l Line) String() string {
	return "[" + l.TimeTag() + "]" + l.Text
}

// Document 解析后的歌词文档
//
// 构造完成后只有 offset/timeDelay、额外标签和 metadata 可以修改。
// Document 自身不加锁，跨 goroutine 共享时由持有者负责串行化写操作。
type Document struct {
	lines    []Line
	idTags   map[TagKey]string
	metadata Metadata
}

// Lines 返回按时间排序的歌词行副本
func (d *Document) Lines() []Line {
	return slices.Clone(d.lines)
}

// Len 歌词行数
func (d *Document) Len() int {
	return len(d.lines)
}

// Tag 返回指定 ID 标签的值
func (d *Document) Tag(key TagKey) (string, bool) {
	v, ok := d.idTags[key]
	return v, ok
}

// SetTag 写入 ID 标签
func (d *Document) SetTag(key TagKey, value string) {
	if d.idTags == nil {
		d.idTags = make(map[TagKey]string)
	}
	d.idTags[key] = value
}

// Tags 返回全部 ID 标签的副本
func (d *Document) Tags() map[TagKey]string {
	return maps.Clone(d.idTags)
}

// Offset 返回 offset 标签的毫秒值，缺失或无法解析时为 0
func (d *Document) Offset() int {
	raw, ok := d.idTags[TagOffset]
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

// SetOffset 以十进制字符串改写 offset 标签
func (d *Document) SetOffset(ms int) {
	d.SetTag(TagOffset, strconv.Itoa(ms))
}

// TimeDelay 以秒为单位的时间偏移
func (d *Document) TimeDelay() float64 {
	return float64(d.Offset()) / 1000
}

// SetTimeDelay 将秒转换为毫秒（向零截断）后写入 offset
func (d *Document) SetTimeDelay(seconds float64) {
	d.SetOffset(int(seconds * 1000))
}
