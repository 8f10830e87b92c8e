package settings

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		settingsService: NewService(db),
	}

	g := e.Group("/settings")

	g.GET("", h.listSettings)
	g.PUT("/:key", h.updateSetting)
	g.DELETE("/:key", h.deleteSetting)
}
