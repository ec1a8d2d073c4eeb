package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/cyclix/internal/analytics/regression"
	"github.com/soltixdb/cyclix/internal/models"
	"github.com/soltixdb/cyclix/internal/report"
)

// Regressions fits an ordinary least squares model
// POST /v1/regressions
func (h *Handler) Regressions(c *fiber.Ctx) error {
	var req models.RegressionRequest
	if err := decode(c, &req); err != nil {
		return invalidRequest(c, err.Error())
	}

	table, err := report.FromTableData(req.Table)
	if err != nil {
		return h.respondError(c, err, nil)
	}

	var opts []regression.Option
	if req.Constant != nil {
		opts = append(opts, regression.WithConstant(*req.Constant))
	}
	if req.Confidence != 0 {
		opts = append(opts, regression.WithConfidence(req.Confidence))
	}

	model, err := regression.Fit(table, req.Dependent, req.Independent, opts...)
	if err != nil {
		return h.respondError(c, err, nil)
	}
	return c.JSON(report.ModelResponse(model))
}

// VAR fits a vector autoregression and returns its forecast and impulse
// responses over the requested horizon
// POST /v1/var
func (h *Handler) VAR(c *fiber.Ctx) error {
	var req models.VARRequest
	if err := decode(c, &req); err != nil {
		return invalidRequest(c, err.Error())
	}

	table, err := report.FromTableData(req.Table)
	if err != nil {
		return h.respondError(c, err, nil)
	}

	model, err := regression.FitVAR(table, req.Columns, req.Lags)
	if err != nil {
		return h.respondError(c, err, nil)
	}
	return c.JSON(report.VARResponse(model, req.Steps))
}
