package service

import "errors"

// 服务层的业务规则错误。handler 层据此映射 HTTP 状态码。
var (
	// ErrTooManyOutstanding 表示读者未归还借阅已达上限。
	ErrTooManyOutstanding = errors.New("service: 读者未归还借阅已达上限")
	// ErrHasOverdue 表示读者有逾期未归还的借阅。
	ErrHasOverdue = errors.New("service: 读者有逾期未归还的借阅")
	// ErrAlreadyReturned 表示借阅已经归还过。
	ErrAlreadyReturned = errors.New("service: 借阅已归还")
	// ErrUnknownGenre 表示引用的图书类别不存在。
	ErrUnknownGenre = errors.New("service: 图书类别不存在")
	// ErrUnknownAuthor 表示引用的作者不存在。
	ErrUnknownAuthor = errors.New("service: 作者不存在")
)
