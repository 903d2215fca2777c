package library

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type createAuthorRequest struct {
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	PhotoURI string `json:"photo_uri"`
}

// CreateAuthor 处理 POST /api/v1/authors。
func CreateAuthor(ctx context.Context, c *app.RequestContext) {
	var req createAuthorRequest
	if err := c.BindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	author, err := librarySvc.CreateAuthor(ctx, req.Name, req.Bio, req.PhotoURI)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusCreated, author)
}

// GetAuthor 处理 GET /api/v1/authors/:number。
func GetAuthor(ctx context.Context, c *app.RequestContext) {
	number, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	author, err := librarySvc.GetAuthor(ctx, number)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, author)
}

// ListAuthors 处理 GET /api/v1/authors?name=。
func ListAuthors(ctx context.Context, c *app.RequestContext) {
	authors, err := librarySvc.SearchAuthorsByName(ctx, c.Query("name"))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, authors)
}

// TopAuthors 处理 GET /api/v1/authors/top?limit=。
func TopAuthors(ctx context.Context, c *app.RequestContext) {
	authors, err := librarySvc.TopAuthors(ctx, queryLimit(c))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, authors)
}
