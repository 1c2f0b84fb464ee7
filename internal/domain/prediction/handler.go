package prediction

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// SubjectHeader carries the opaque key under which the prediction history for
// this caller is grouped. Absent header means no history is written.
const SubjectHeader = "X-User-Id"

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/predict", h.Predict)
	e.POST("/batch-predict", h.BatchPredict)
	e.GET("/health", h.Health)
	e.GET("/model-info", h.ModelInfo)
}

func (h *Handler) Predict(c echo.Context) error {
	var rec PatientRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed patient record")
	}
	if err := h.validate.Struct(rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err))
	}

	resp, err := h.svc.Predict(c.Request().Context(), rec, c.Request().Header.Get(SubjectHeader))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) BatchPredict(c echo.Context) error {
	var recs []PatientRecord
	if err := c.Bind(&recs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed patient record list")
	}
	for i, rec := range recs {
		if err := h.validate.Struct(rec); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("record %d: %s", i, validationMessage(err)))
		}
	}

	resps, err := h.svc.BatchPredict(c.Request().Context(), recs, c.Request().Header.Get(SubjectHeader))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, batchResponse{Predictions: resps, Count: len(resps)})
}

type batchResponse struct {
	Predictions []*PredictionResponse `json:"predictions"`
	Count       int                   `json:"count"`
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Health())
}

func (h *Handler) ModelInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.ModelInfo())
}

func serviceError(err error) error {
	if errors.Is(err, ErrScalerNotFitted) {
		return echo.NewHTTPError(http.StatusInternalServerError, "prediction service is not configured: preprocessing parameters missing")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("field %s failed %s validation", fe.Field(), fe.Tag())
	}
	return "invalid patient record"
}
