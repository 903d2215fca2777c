package librepo

import "errors"

// ErrNotFound 表示仓库中未找到请求的记录。
// 缓存实现和权威存储实现都用它表达"没找到"，
// 协调器依赖它区分未命中与真正的存储故障。
var ErrNotFound = errors.New("librepo: record not found")
