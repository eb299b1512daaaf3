package lyrics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseTimestamp 将时间标签内容（不含方括号）解析为秒数，例如 "03:02.500" -> 182.5
func ParseTimestamp(tagContent string) (float64, error) {
	parts := strings.Split(tagContent, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, tagContent)
	}

	minutes, err := parseNonNegative(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, tagContent)
	}
	seconds, err := parseNonNegative(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, tagContent)
	}

	return minutes*60 + seconds, nil
}

func parseNonNegative(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("out of range: %s", s)
	}
	return v, nil
}

// FormatTimestamp 将秒数格式化为 "MM:SS.sss"，分钟不取模，负数带前导 "-"
func FormatTimestamp(seconds float64) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	minutes := int(seconds / 60)
	rest := seconds - float64(minutes*60)
	return fmt.Sprintf("%s%02d:%06.3f", sign, minutes, rest)
}
