package cache

import "errors"

// ErrNotFound 表示缓存中未找到指定的键。
// 调用方应把它理解为"缓存未命中"，而不是存储故障；
// 其他任何错误都代表键值存储本身出了问题。
var ErrNotFound = errors.New("cache: key not found")
