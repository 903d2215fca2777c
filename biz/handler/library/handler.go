// Package library 提供图书馆服务的 HTTP handler。
// handler 只做参数绑定、调用 service 和错误映射，不包含业务逻辑。
package library

import (
	"context"
	"errors"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.uber.org/zap"

	"bookwall/biz/repo/librepo"
	"bookwall/biz/service"
)

var (
	librarySvc service.LibraryService
	logger     *zap.Logger
)

// SetLibraryService 注入 service 和 logger 依赖。
// 必须在注册路由前由 bootstrap 调用。
func SetLibraryService(svc service.LibraryService, l *zap.Logger) {
	librarySvc = svc
	logger = l.Named("handler.library")
}

// errorResponse 是错误响应的统一结构。
type errorResponse struct {
	Error string `json:"error"`
}

// respondError 把 service 层错误映射到 HTTP 状态码。
func respondError(ctx context.Context, c *app.RequestContext, err error) {
	status := consts.StatusInternalServerError
	switch {
	case errors.Is(err, librepo.ErrNotFound):
		status = consts.StatusNotFound
	case errors.Is(err, service.ErrTooManyOutstanding),
		errors.Is(err, service.ErrHasOverdue),
		errors.Is(err, service.ErrAlreadyReturned):
		status = consts.StatusConflict
	case errors.Is(err, service.ErrUnknownGenre),
		errors.Is(err, service.ErrUnknownAuthor):
		status = consts.StatusUnprocessableEntity
	}
	if status == consts.StatusInternalServerError {
		logger.Error("请求处理失败", zap.String("path", string(c.Path())), zap.Error(err))
	}
	c.JSON(status, errorResponse{Error: err.Error()})
}

// respondBadRequest 处理参数绑定和校验错误。
func respondBadRequest(c *app.RequestContext, err error) {
	c.JSON(consts.StatusBadRequest, errorResponse{Error: err.Error()})
}

// queryLimit 解析 limit 查询参数，缺失或非法时返回 0，由 service 归一。
func queryLimit(c *app.RequestContext) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return limit
}
