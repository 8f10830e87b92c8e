package catalog

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shelfdmedia/shelfd/pkg/errcodes"
	"github.com/shelfdmedia/shelfd/pkg/models"
)

type handler struct {
	catalogService *Service
}

func (h *handler) listMediaItems(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListMediaItemsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	items, total, err := h.catalogService.ListMediaItemsWithTotal(ctx, ListMediaItemsOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		Kind:   params.Kind,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		MediaItems []*models.MediaItem `json:"media_items"`
		Total      int                 `json:"total"`
	}{items, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieveMediaItem(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("MediaItem")
	}

	item, err := h.catalogService.RetrieveMediaItem(ctx, RetrieveMediaItemOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if item.Kind == models.MediaKindTVShow {
		episodes, err := h.catalogService.ListEpisodes(ctx, ListEpisodesOptions{
			MediaItemID: &item.ID,
		})
		if err != nil {
			return errors.WithStack(err)
		}
		item.Episodes = episodes
	}

	return errors.WithStack(c.JSON(http.StatusOK, item))
}

func (h *handler) listAuthors(c echo.Context) error {
	ctx := c.Request().Context()

	authors, err := h.catalogService.ListAuthors(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Authors []*models.Author `json:"authors"`
	}{authors}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieveAuthor(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	author, err := h.catalogService.RetrieveAuthor(ctx, RetrieveAuthorOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	series, err := h.catalogService.ListSeries(ctx, ListSeriesOptions{
		AuthorID: &author.ID,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	author.Series = series

	return errors.WithStack(c.JSON(http.StatusOK, author))
}

func (h *handler) listSeries(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListSeriesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	series, err := h.catalogService.ListSeries(ctx, ListSeriesOptions{
		AuthorID: params.AuthorID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Series []*models.Series `json:"series"`
	}{series}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) listBooks(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, total, err := h.catalogService.ListBooksWithTotal(ctx, ListBooksOptions{
		Limit:    &params.Limit,
		Offset:   &params.Offset,
		AuthorID: params.AuthorID,
		SeriesID: params.SeriesID,
		Kind:     params.Kind,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Books []*models.Book `json:"books"`
		Total int            `json:"total"`
	}{books, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieveBook(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.catalogService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}
