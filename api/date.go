package api

import (
	"time"
)

// dateLayout 交易/预算日期均为不带时分秒的日历日期
const dateLayout = "2006-01-02"

// parseDate 解析 YYYY-MM-DD 格式的日期
func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}
