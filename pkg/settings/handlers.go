package settings

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shelfdmedia/shelfd/pkg/errcodes"
)

type handler struct {
	settingsService *Service
}

func (h *handler) listSettings(c echo.Context) error {
	ctx := c.Request().Context()

	responses := make([]SettingResponse, 0, len(KnownKeys()))
	for _, key := range KnownKeys() {
		value, err := h.settingsService.Get(ctx, key)
		if err != nil {
			return errors.WithStack(err)
		}
		responses = append(responses, SettingResponse{Key: key, Value: value})
	}

	return c.JSON(http.StatusOK, responses)
}

func (h *handler) updateSetting(c echo.Context) error {
	ctx := c.Request().Context()

	key := c.Param("key")
	if !IsKnownKey(key) {
		return errcodes.NotFound("Setting")
	}

	var payload SettingPayload
	if err := c.Bind(&payload); err != nil {
		return errors.WithStack(err)
	}

	if err := h.settingsService.Set(ctx, key, payload.Value); err != nil {
		return errors.WithStack(err)
	}

	value, err := h.settingsService.Get(ctx, key)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, SettingResponse{Key: key, Value: value})
}

func (h *handler) deleteSetting(c echo.Context) error {
	ctx := c.Request().Context()

	key := c.Param("key")
	if !IsKnownKey(key) {
		return errcodes.NotFound("Setting")
	}

	if err := h.settingsService.Delete(ctx, key); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
