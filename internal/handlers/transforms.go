package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/cyclix/internal/analytics/transform"
	"github.com/soltixdb/cyclix/internal/models"
	"github.com/soltixdb/cyclix/internal/report"
)

// Transforms applies an ordered list of transform steps to an inline table
// POST /v1/transforms
func (h *Handler) Transforms(c *fiber.Ctx) error {
	var req models.TransformRequest
	if err := decode(c, &req); err != nil {
		return invalidRequest(c, err.Error())
	}

	table, err := report.FromTableData(req.Table)
	if err != nil {
		return h.respondError(c, err, nil)
	}

	tr := transform.New(table)
	for _, step := range req.Steps {
		tr.Apply(step)
	}
	if err := tr.Err(); err != nil {
		return h.respondError(c, err, map[string]interface{}{"applied": tr.Applied()})
	}

	h.log(c).Debug("Transforms applied", "steps", tr.Applied(), "rows", table.Len())
	return c.JSON(models.TransformResponse{
		Applied: tr.Applied(),
		Table:   report.NewTableData(tr.Table()),
	})
}
