package lyrics

// Locate 返回播放位置 position（秒）对应的当前行与下一行
//
// 每行的有效时间为 Timestamp - TimeDelay。第一条有效时间严格大于 position 的行
// 为下一行，其前一行为当前行；position 早于第一行时 current 为 nil，
// 晚于或等于最后一行时 next 为 nil。
func (d *Document) Locate(position float64) (current, next *Line) {
	i := d.LocateIndex(position)
	if i >= 0 {
		line := d.lines[i]
		current = &line
	}
	if i+1 < len(d.lines) {
		line := d.lines[i+1]
		next = &line
	}
	return current, next
}

// LocateIndex 返回当前行下标，position 早于第一行（或文档为空）时返回 -1
func (d *Document) LocateIndex(position float64) int {
	delay := d.TimeDelay()
	// 线性扫描，保持首个严格大于的行胜出
	for i, line := range d.lines {
		if line.Timestamp-delay > position {
			return i - 1
		}
	}
	return len(d.lines) - 1
}
