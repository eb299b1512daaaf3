package model

import "time"

// LyricRecord 保存的原始 LRC 文本
//
// 只存原文，每次读取时重新解析，不保存解析结果。
type LyricRecord struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TrackKey     string    `gorm:"column:track_key;type:varchar(191);uniqueIndex" json:"trackKey"`
	Content      string    `gorm:"column:content;type:mediumtext" json:"content"`
	Offset       *int      `gorm:"column:offset" json:"offset,omitempty"` // 用户调整后的偏移（毫秒），nil 表示沿用文件中的 offset 标签
	Source       string    `gorm:"column:source;type:varchar(64)" json:"source"`
	LyricsURL    string    `gorm:"column:lyrics_url;type:varchar(512)" json:"lyricsUrl,omitempty"`
	SearchTitle  string    `gorm:"column:search_title;type:varchar(255)" json:"searchTitle,omitempty"`
	SearchArtist string    `gorm:"column:search_artist;type:varchar(255)" json:"searchArtist,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName 自定义表名
func (LyricRecord) TableName() string {
	return "lyric_records"
}
