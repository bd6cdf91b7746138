package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkurbatov/jobhub/internal/hh"
	"github.com/mkurbatov/jobhub/internal/logging"
	"github.com/mkurbatov/jobhub/internal/models"
	"github.com/mkurbatov/jobhub/internal/repo"
	"github.com/mkurbatov/jobhub/internal/search"
	"github.com/mkurbatov/jobhub/internal/service"
)

type VacancyHandler struct {
	Vacancies *repo.VacancyRepo
	Index     *search.VacancyIndex
	Collector *service.Collector
}

func (h *VacancyHandler) Search(c echo.Context) error {
	q := search.Query{
		Query:      c.QueryParam("q"),
		Area:       c.QueryParam("area"),
		Employer:   c.QueryParam("employer"),
		Experience: c.QueryParam("experience"),
		Employment: c.QueryParam("employment"),
		Schedule:   c.QueryParam("schedule"),
		SortBy:     c.QueryParam("sort_by"),
		SortOrder:  c.QueryParam("sort_order"),
	}
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.Size, _ = strconv.Atoi(c.QueryParam("size"))

	if v := c.QueryParam("has_test"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid has_test")
		}
		q.HasTest = &b
	}
	if v := c.QueryParam("is_archived"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid is_archived")
		}
		q.IsArchived = &b
	}
	if v := c.QueryParam("published_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid published_from")
		}
		q.PublishedFrom = &t
	}
	if v := c.QueryParam("published_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid published_to")
		}
		q.PublishedTo = &t
	}

	total, vacancies, err := h.Index.Search(c.Request().Context(), q)
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("search failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "vacancies": vacancies})
}

func (h *VacancyHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vacancy id")
	}

	vacancy, err := h.Vacancies.ByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "vacancy not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, vacancy)
}

func (h *VacancyHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	offset, limit := search.Paginate(page, size)

	vacancies, err := h.Vacancies.List(c.Request().Context(), offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, vacancies)
}

func (h *VacancyHandler) Create(c echo.Context) error {
	var vacancy models.Vacancy
	if err := c.Bind(&vacancy); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.Vacancies.Create(c.Request().Context(), &vacancy); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create vacancy")
	}
	return c.JSON(http.StatusCreated, vacancy)
}

func (h *VacancyHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vacancy id")
	}

	vacancy, err := h.Vacancies.ByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "vacancy not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	var patch models.Vacancy
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	patch.ID = vacancy.ID
	patch.SourceName = vacancy.SourceName
	patch.SourceID = vacancy.SourceID

	if err := h.Vacancies.Update(ctx, &patch); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not update vacancy")
	}
	return c.JSON(http.StatusOK, patch)
}

func (h *VacancyHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vacancy id")
	}
	if err := h.Vacancies.Delete(c.Request().Context(), uint(id)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not delete vacancy")
	}
	return c.NoContent(http.StatusNoContent)
}

// Collect triggers a collection run against the external job board.
func (h *VacancyHandler) Collect(c echo.Context) error {
	var req struct {
		Text string `json:"text"`
		Area string `json:"area"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	stats, err := h.Collector.Collect(c.Request().Context(), hh.SearchParams{Text: req.Text, Area: req.Area})
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("collection failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "collection failed")
	}
	return c.JSON(http.StatusOK, stats)
}
