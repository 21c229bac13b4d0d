package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rustyeddy/fxrisk/journal"
	"github.com/rustyeddy/fxrisk/pkg/apperr"
	"github.com/rustyeddy/fxrisk/report"
	"github.com/rustyeddy/fxrisk/risk"
)

// Runner performs one assessment.
type Runner interface {
	Run(ctx context.Context, req risk.Request) (journal.Assessment, error)
}

// Handler serves the assessment API.
type Handler struct {
	runner Runner
	store  journal.Store
}

func NewHandler(r Runner, store journal.Store) *Handler {
	if store == nil {
		store = journal.Discard{}
	}
	return &Handler{runner: r, store: store}
}

// RegisterRoutes mounts the API on e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.POST("/var", h.assess)
	g.GET("/assessments", h.list)
	g.GET("/assessments/:id", h.get)
	e.GET("/healthz", h.health)
}

// varRequest is the POST body. Omitted fields take the reference scenario.
type varRequest struct {
	AmountUSD      *float64 `json:"amount_usd" default:"10000" validate:"required"`
	InvoiceDate    string   `json:"invoice_date" default:"2025-04-23" validate:"required"`
	SettlementDate string   `json:"settlement_date" default:"2025-06-23" validate:"required"`
	Stress         *bool    `json:"stress" default:"true" validate:"required"`
}

func (r varRequest) toRisk() risk.Request {
	return risk.Request{
		AmountUSD:      *r.AmountUSD,
		InvoiceDate:    r.InvoiceDate,
		SettlementDate: r.SettlementDate,
		Stress:         *r.Stress,
	}
}

type listRequest struct {
	Limit int `query:"limit" default:"20" validate:"gte=1,lte=500"`
}

// AssessmentResponse is one journaled assessment with its text report.
type AssessmentResponse struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Source    string       `json:"source"`
	Request   risk.Request `json:"request"`
	Result    risk.Result  `json:"result"`
	Report    string       `json:"report"`
}

// ErrorResponse is the body of every failed call.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

func newAssessmentResponse(a journal.Assessment) AssessmentResponse {
	return AssessmentResponse{
		ID:        a.ID,
		CreatedAt: a.CreatedAt,
		Source:    a.Source,
		Request:   a.Request,
		Result:    a.Result,
		Report:    report.Text(a.Result),
	}
}

func (h *Handler) assess(c echo.Context) error {
	var req varRequest
	if verrs := bindRequest(c, &req); verrs != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "ERR_VALIDATION",
			Message: "invalid request",
			Errors:  verrs,
		})
	}

	a, err := h.runner.Run(c.Request().Context(), req.toRisk())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newAssessmentResponse(a))
}

func (h *Handler) get(c echo.Context) error {
	a, err := h.store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newAssessmentResponse(a))
}

func (h *Handler) list(c echo.Context) error {
	var req listRequest
	if verrs := bindRequest(c, &req); verrs != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "ERR_VALIDATION",
			Message: "invalid request",
			Errors:  verrs,
		})
	}

	all, err := h.store.List(c.Request().Context(), req.Limit)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]AssessmentResponse, 0, len(all))
	for _, a := range all {
		out = append(out, newAssessmentResponse(a))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func writeError(c echo.Context, err error) error {
	if errors.Is(err, journal.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Code: "ERR_NOT_FOUND", Message: err.Error()})
	}
	kind := apperr.KindOf(err)
	return c.JSON(StatusFor(kind), ErrorResponse{Code: kind.Code(), Message: report.ErrorText(err)})
}

// StatusFor maps an error kind to an HTTP status.
func StatusFor(k apperr.Kind) int {
	switch {
	case k.UserCorrectable():
		return http.StatusBadRequest
	case k == apperr.DataUnavailable:
		return http.StatusServiceUnavailable
	case k == apperr.ModelFitFailure, k == apperr.NonFiniteResult:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
