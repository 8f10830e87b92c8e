package catalog

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		catalogService: NewService(db),
	}

	e.GET("/media", h.listMediaItems)
	e.GET("/media/:id", h.retrieveMediaItem)
	e.GET("/authors", h.listAuthors)
	e.GET("/authors/:id", h.retrieveAuthor)
	e.GET("/series", h.listSeries)
	e.GET("/books", h.listBooks)
	e.GET("/books/:id", h.retrieveBook)
}
