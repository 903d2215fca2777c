package library

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type createBookRequest struct {
	ISBN          string  `json:"isbn"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Genre         string  `json:"genre"`
	AuthorNumbers []int64 `json:"author_numbers"`
	PhotoURI      string  `json:"photo_uri"`
}

// CreateBook 处理 POST /api/v1/books。
func CreateBook(ctx context.Context, c *app.RequestContext) {
	var req createBookRequest
	if err := c.BindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	book, err := librarySvc.CreateBook(ctx, req.ISBN, req.Title, req.Description, req.Genre, req.AuthorNumbers, req.PhotoURI)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusCreated, book)
}

// GetBook 处理 GET /api/v1/books/:isbn。
func GetBook(ctx context.Context, c *app.RequestContext) {
	book, err := librarySvc.GetBook(ctx, c.Param("isbn"))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, book)
}

// ListBooks 处理 GET /api/v1/books?title= / ?genre=。
// title 和 genre 二选一，title 优先。
func ListBooks(ctx context.Context, c *app.RequestContext) {
	if title := c.Query("title"); title != "" {
		books, err := librarySvc.SearchBooksByTitle(ctx, title)
		if err != nil {
			respondError(ctx, c, err)
			return
		}
		c.JSON(consts.StatusOK, books)
		return
	}
	books, err := librarySvc.BooksByGenre(ctx, c.Query("genre"))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, books)
}

// TopBooks 处理 GET /api/v1/books/top?limit=。
func TopBooks(ctx context.Context, c *app.RequestContext) {
	books, err := librarySvc.TopBooks(ctx, queryLimit(c))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, books)
}
