package lyrics

import (
	"regexp"
	"slices"
	"strings"

	"LrcSync/logger"
)

var (
	// 第二个分隔符可以是任意字符：[1:2:3] 会被匹配，随后在 ParseTimestamp 中被丢弃
	timeTagRegex = regexp.MustCompile(`\[\d+:\d+.\d+\]|\[\d+:\d+\]`)
	idTagRegex   = regexp.MustCompile(`\[[^\]]+:[^\]]+\]`)

	newlineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Parse 解析 LRC 文本
//
// 每一物理行要么产生若干时间行（共享最后一个时间标签之后的文本），
// 要么产生若干 ID 标签。没有任何时间行时返回 ErrNoTimedLines。
func Parse(raw string) (*Document, error) {
	doc := &Document{
		idTags:   make(map[TagKey]string),
		metadata: Metadata{},
	}

	for _, line := range splitLines(raw) {
		if timed, matched := scanTimeTags(line); matched {
			doc.lines = append(doc.lines, timed...)
			continue
		}
		scanIDTags(line, doc.idTags)
	}

	if len(doc.lines) == 0 {
		return nil, ErrNoTimedLines
	}

	slices.SortStableFunc(doc.lines, func(a, b Line) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		}
		return 0
	})

	logger.Debug("歌词解析完成",
		logger.Int("lines", len(doc.lines)),
		logger.Int("idTags", len(doc.idTags)))

	return doc, nil
}

func splitLines(raw string) []string {
	return strings.Split(newlineReplacer.Replace(raw), "\n")
}

// scanTimeTags 提取一行中的全部时间标签，无法解析的标签被跳过。
// matched 表示该行是否含有时间标签，即使所有标签都被跳过也不再按 ID 标签处理。
func scanTimeTags(line string) (lines []Line, matched bool) {
	matches := timeTagRegex.FindAllStringIndex(line, -1)
	if len(matches) == 0 {
		return nil, false
	}

	text := line[matches[len(matches)-1][1]:]
	result := make([]Line, 0, len(matches))
	for _, m := range matches {
		content := line[m[0]+1 : m[1]-1]
		ts, err := ParseTimestamp(content)
		if err != nil {
			logger.Debug("跳过无效时间标签",
				logger.String("tag", line[m[0]:m[1]]),
				logger.ErrorField(err))
			continue
		}
		result = append(result, Line{Text: text, Timestamp: ts})
	}
	return result, true
}

// scanIDTags 提取 [key:value] 形式的标签，同名键后者覆盖前者
func scanIDTags(line string, tags map[TagKey]string) {
	for _, m := range idTagRegex.FindAllString(line, -1) {
		key, value, ok := strings.Cut(m[1:len(m)-1], ":")
		if !ok || key == "" || value == "" {
			continue
		}
		tags[TagKey(key)] = value
	}
}
