package history

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cardio/cardio/pkg/pagination"
)

type Handler struct {
	svc      *Service
	maxLimit int
}

// NewHandler builds the history HTTP surface. maxLimit caps the per-request
// page size; non-positive falls back to the pagination default ceiling.
func NewHandler(svc *Service, maxLimit int) *Handler {
	return &Handler{svc: svc, maxLimit: maxLimit}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/history/:user_id", h.GetHistory)
}

type historyResponse struct {
	UserID      string              `json:"user_id"`
	Count       int                 `json:"count"`
	Predictions []*PredictionRecord `json:"predictions"`
	Limit       int                 `json:"limit"`
}

func (h *Handler) GetHistory(c echo.Context) error {
	userID := c.Param("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user id is required")
	}
	pg := pagination.FromContextMax(c, h.maxLimit)

	recs, err := h.svc.Fetch(c.Request().Context(), userID, pg.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, historyResponse{
		UserID:      userID,
		Count:       len(recs),
		Predictions: recs,
		Limit:       pg.Limit,
	})
}
