package library

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type createGenreRequest struct {
	Name string `json:"name"`
}

// CreateGenre 处理 POST /api/v1/genres。
func CreateGenre(ctx context.Context, c *app.RequestContext) {
	var req createGenreRequest
	if err := c.BindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	genre, err := librarySvc.CreateGenre(ctx, req.Name)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusCreated, genre)
}

// ListGenres 处理 GET /api/v1/genres。
func ListGenres(ctx context.Context, c *app.RequestContext) {
	genres, err := librarySvc.ListGenres(ctx)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, genres)
}

// TopGenres 处理 GET /api/v1/genres/top?limit=。
func TopGenres(ctx context.Context, c *app.RequestContext) {
	counts, err := librarySvc.TopGenres(ctx, queryLimit(c))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, counts)
}
