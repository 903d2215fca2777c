package main

import (
	"flag"
	"log"

	"github.com/cloudwego/hertz/pkg/app/server"

	libraryHandler "bookwall/biz/handler/library"
	"bookwall/internal/bootstrap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	flag.Parse()

	app, err := bootstrap.Init(*configPath)
	if err != nil {
		log.Fatalf("应用初始化失败: %v", err)
	}
	defer app.Shutdown()

	registerRoutes(app.Server)
	app.Server.Spin()
}

func registerRoutes(h *server.Hertz) {
	v1 := h.Group("/api/v1")

	authors := v1.Group("/authors")
	authors.POST("", libraryHandler.CreateAuthor)
	authors.GET("", libraryHandler.ListAuthors)
	authors.GET("/top", libraryHandler.TopAuthors)
	authors.GET("/:number", libraryHandler.GetAuthor)

	genres := v1.Group("/genres")
	genres.POST("", libraryHandler.CreateGenre)
	genres.GET("", libraryHandler.ListGenres)
	genres.GET("/top", libraryHandler.TopGenres)

	books := v1.Group("/books")
	books.POST("", libraryHandler.CreateBook)
	books.GET("", libraryHandler.ListBooks)
	books.GET("/top", libraryHandler.TopBooks)
	books.GET("/:isbn", libraryHandler.GetBook)

	readers := v1.Group("/readers")
	readers.POST("", libraryHandler.RegisterReader)
	readers.GET("", libraryHandler.ListReaders)
	readers.GET("/top", libraryHandler.TopReaders)
	readers.GET("/:year/:seq", libraryHandler.GetReader)
	readers.GET("/:year/:seq/lendings", libraryHandler.OutstandingLendings)

	lendings := v1.Group("/lendings")
	lendings.POST("", libraryHandler.CreateLending)
	lendings.GET("/overdue", libraryHandler.OverdueLendings)
	lendings.GET("/stats/average-duration", libraryHandler.AverageLendingDuration)
	lendings.GET("/:year/:seq", libraryHandler.GetLending)
	lendings.POST("/:year/:seq/return", libraryHandler.ReturnLending)
}
