package library

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type registerReaderRequest struct {
	Username    string `json:"username"`
	Name        string `json:"name"`
	Birthdate   string `json:"birthdate"` // "2006-01-02"
	PhoneNumber string `json:"phone_number"`
	GDPRConsent bool   `json:"gdpr_consent"`
}

// RegisterReader 处理 POST /api/v1/readers。
func RegisterReader(ctx context.Context, c *app.RequestContext) {
	var req registerReaderRequest
	if err := c.BindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	birthdate, err := time.Parse("2006-01-02", req.Birthdate)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	reader, err := librarySvc.RegisterReader(ctx, req.Username, req.Name, birthdate, req.PhoneNumber, req.GDPRConsent)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusCreated, reader)
}

// GetReader 处理 GET /api/v1/readers/:year/:seq。
// 读者编号含斜杠（"2024/7"），路由上拆成两段。
func GetReader(ctx context.Context, c *app.RequestContext) {
	number := c.Param("year") + "/" + c.Param("seq")
	reader, err := librarySvc.GetReader(ctx, number)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, reader)
}

// ListReaders 处理 GET /api/v1/readers?username= / ?name=。
// username 精确查询优先，否则按姓名模糊搜索。
func ListReaders(ctx context.Context, c *app.RequestContext) {
	if username := c.Query("username"); username != "" {
		reader, err := librarySvc.GetReaderByUsername(ctx, username)
		if err != nil {
			respondError(ctx, c, err)
			return
		}
		c.JSON(consts.StatusOK, reader)
		return
	}
	readers, err := librarySvc.SearchReadersByName(ctx, c.Query("name"))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, readers)
}

// TopReaders 处理 GET /api/v1/readers/top?limit=。
func TopReaders(ctx context.Context, c *app.RequestContext) {
	readers, err := librarySvc.TopReaders(ctx, queryLimit(c))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, readers)
}
