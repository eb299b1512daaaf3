package lyrics

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Describe 输出用于调试的文本：元数据、ID 标签、歌词行依次排列。
// 两个映射按键排序以保证输出稳定。
func (d *Document) Describe() string {
	var sb strings.Builder

	metaKeys := lo.Keys(d.metadata)
	slices.Sort(metaKeys)
	for _, k := range metaKeys {
		sb.WriteString("[[" + string(k) + ": " + d.metadata[k] + "]]\n")
	}

	tagKeys := lo.Keys(d.idTags)
	slices.Sort(tagKeys)
	for _, k := range tagKeys {
		sb.WriteString("[" + string(k) + ": " + d.idTags[k] + "]\n")
	}

	for _, line := range d.lines {
		sb.WriteString(line.String() + "\n")
	}
	return sb.String()
}

func (d *Document) String() string {
	return d.Describe()
}
