package redisrepo

import (
	"strconv"
	"strings"
	"time"
)

// 实体 ↔ 缓存记录（map[string]string）映射的通用辅助函数。
//
// 记录是扁平的字符串字段：缺失的字段代表"未设置"（而不是空字符串）；
// 关联实体只写入标识键。反向映射是可失败的：
// 任何必填字段缺失、数值/日期解析失败或领域校验不通过
// 都返回 nil，表示"数据不足，调用方必须回源"。绝不让损坏的
// 缓存记录冒充一个残缺的实体，更不允许它让请求失败。

// recordTimeLayout 是记录中日期字段的序列化格式。
// 必须保留纳秒：借阅日期来自 time.Now()，缓存命中读出的时间
// 必须和权威存储里的值逐字段相等，不允许截断到整秒。
const recordTimeLayout = time.RFC3339Nano

// putIfSet 只在值非空时写入字段，保持"缺失 = 未设置"的约定。
func putIfSet(rec map[string]string, field, value string) {
	if value != "" {
		rec[field] = value
	}
}

// parseInt64Field 解析一个必填的整数字段。
func parseInt64Field(rec map[string]string, field string) (int64, bool) {
	raw, ok := rec[field]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseTimeField 解析一个必填的日期字段。
func parseTimeField(rec map[string]string, field string) (time.Time, bool) {
	raw, ok := rec[field]
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(recordTimeLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// joinInt64s 把整数列表序列化为逗号分隔的字符串（作者编号列表）。
func joinInt64s(vals []int64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

// splitInt64s 解析逗号分隔的整数列表。任一片段非法则整体失败。
func splitInt64s(raw string) ([]int64, bool) {
	if raw == "" {
		return nil, false
	}
	parts := strings.Split(raw, ",")
	vals := make([]int64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, false
		}
		vals = append(vals, v)
	}
	return vals, true
}
