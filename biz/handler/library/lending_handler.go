package library

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type createLendingRequest struct {
	ISBN         string `json:"isbn"`
	ReaderNumber string `json:"reader_number"`
}

// CreateLending 处理 POST /api/v1/lendings。
func CreateLending(ctx context.Context, c *app.RequestContext) {
	var req createLendingRequest
	if err := c.BindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	lending, err := librarySvc.LendBook(ctx, req.ISBN, req.ReaderNumber)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusCreated, lending)
}

// GetLending 处理 GET /api/v1/lendings/:year/:seq。
// 借阅编号含斜杠（"2024/7"），路由上拆成两段。
func GetLending(ctx context.Context, c *app.RequestContext) {
	number := c.Param("year") + "/" + c.Param("seq")
	lending, err := librarySvc.GetLending(ctx, number)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, lending)
}

// ReturnLending 处理 POST /api/v1/lendings/:year/:seq/return。
func ReturnLending(ctx context.Context, c *app.RequestContext) {
	number := c.Param("year") + "/" + c.Param("seq")
	lending, err := librarySvc.ReturnBook(ctx, number)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, lending)
}

// OutstandingLendings 处理 GET /api/v1/readers/:year/:seq/lendings。
func OutstandingLendings(ctx context.Context, c *app.RequestContext) {
	number := c.Param("year") + "/" + c.Param("seq")
	lendings, err := librarySvc.OutstandingLendings(ctx, number)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, lendings)
}

// OverdueLendings 处理 GET /api/v1/lendings/overdue。
func OverdueLendings(ctx context.Context, c *app.RequestContext) {
	lendings, err := librarySvc.OverdueLendings(ctx)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, lendings)
}

type averageDurationResponse struct {
	AverageDays float64 `json:"average_days"`
}

// AverageLendingDuration 处理 GET /api/v1/lendings/stats/average-duration。
func AverageLendingDuration(ctx context.Context, c *app.RequestContext) {
	avg, err := librarySvc.AverageLendingDuration(ctx)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, averageDurationResponse{AverageDays: avg})
}
