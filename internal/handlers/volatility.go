package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/cyclix/internal/analytics/volatility"
	"github.com/soltixdb/cyclix/internal/models"
	"github.com/soltixdb/cyclix/internal/report"
)

// Volatility computes the standard deviation and coefficient of variation of
// a column, plus rolling variants when a window is given
// POST /v1/volatility
func (h *Handler) Volatility(c *fiber.Ctx) error {
	var req models.VolatilityRequest
	if err := decode(c, &req); err != nil {
		return invalidRequest(c, err.Error())
	}

	table, err := report.FromTableData(req.Table)
	if err != nil {
		return h.respondError(c, err, nil)
	}

	opts := []volatility.Option{volatility.WithDDOF(req.DDOF)}
	sd, err := volatility.StandardDeviation(table, req.Column, opts...)
	if err != nil {
		return h.respondError(c, err, nil)
	}
	cv, err := volatility.CoefficientOfVariation(table, req.Column, req.Reference, opts...)
	if err != nil {
		return h.respondError(c, err, nil)
	}

	resp := models.VolatilityResponse{
		Column:    req.Column,
		Reference: req.Reference,
		DDOF:      req.DDOF,
		StdDev:    models.Float(sd),
		CV:        models.Float(cv),
	}
	if resp.Reference == "" {
		resp.Reference = req.Column
	}

	if req.Window > 0 {
		rollingSD, err := volatility.RollingStandardDeviation(table, req.Column, req.Window, opts...)
		if err != nil {
			return h.respondError(c, err, nil)
		}
		rollingCV, err := volatility.RollingCoefficientOfVariation(table, req.Column, req.Reference, req.Window, opts...)
		if err != nil {
			return h.respondError(c, err, nil)
		}
		resp.Window = req.Window
		resp.Index = report.NewTableData(table).Index
		resp.RollingStdDev = models.Floats(rollingSD)
		resp.RollingCV = models.Floats(rollingCV)
	}

	return c.JSON(resp)
}
