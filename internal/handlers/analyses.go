package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/cyclix/internal/config"
	"github.com/soltixdb/cyclix/internal/models"
	"github.com/soltixdb/cyclix/internal/pipeline"
	"github.com/soltixdb/cyclix/internal/report"
)

// Analyses runs the full workflow
// POST /v1/analyses
func (h *Handler) Analyses(c *fiber.Ctx) error {
	var req models.AnalysisRequest
	if err := decode(c, &req); err != nil {
		return invalidRequest(c, err.Error())
	}

	if req.UsesSources() && !h.allowSources {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "SOURCES_DISABLED",
				Message: "Loading sources on request is disabled; send the table inline",
				Path:    c.Path(),
			},
		})
	}

	cfg := h.analysisConfig(&req)
	if err := cfg.Validate(); err != nil {
		return invalidRequest(c, "Invalid analysis parameters: "+err.Error())
	}

	runner := pipeline.NewRunner(cfg, h.loader, h.logger)

	var (
		res *pipeline.Result
		err error
	)
	if req.Table != nil {
		table, terr := report.FromTableData(*req.Table)
		if terr != nil {
			return h.respondError(c, terr, nil)
		}
		res, err = runner.Analyze(c.UserContext(), table)
	} else {
		res, err = runner.Run(c.UserContext())
	}
	if err != nil {
		return h.respondError(c, err, map[string]interface{}{
			"run_id": res.RunID,
			"stage":  string(res.Stage),
		})
	}

	return c.JSON(report.NewDocument(res, req.IncludeTable))
}

// analysisConfig applies the request overrides to the server defaults
func (h *Handler) analysisConfig(req *models.AnalysisRequest) config.AnalysisConfig {
	cfg := h.analysis

	if req.GDP != nil {
		cfg.GDP = sourceConfig(req.GDP, cfg.GDP)
		cfg.Government = config.SourceConfig{}
		if req.Government != nil {
			cfg.Government = sourceConfig(req.Government, h.analysis.Government)
		}
	}

	if len(req.Series) > 0 {
		cfg.Series = req.Series
	}
	if req.Frequency != "" {
		cfg.Frequency = req.Frequency
	}
	if req.Start != "" {
		cfg.Start = req.Start
	}
	if req.End != "" {
		cfg.End = req.End
	}
	if req.HPLambda != nil {
		cfg.HP.Lambda = *req.HPLambda
	}
	if req.BKLow != nil {
		cfg.BK.Low = *req.BKLow
	}
	if req.BKHigh != nil {
		cfg.BK.High = *req.BKHigh
	}
	if req.BKK != nil {
		cfg.BK.K = *req.BKK
	}
	if req.DetrendOrder != nil {
		cfg.Detrend.Order = *req.DetrendOrder
	}
	if req.CVReference != "" {
		cfg.CVReference = req.CVReference
	}
	if req.DDOF != nil {
		cfg.DDOF = *req.DDOF
	}
	if len(req.Regressions) > 0 {
		cfg.Regressions = make([]config.RegressionConfig, len(req.Regressions))
		for i, r := range req.Regressions {
			cfg.Regressions[i] = config.RegressionConfig{Dependent: r.Dependent, Independent: r.Independent}
		}
	}
	return cfg
}

// sourceConfig builds a source from a request. Only the date column and
// timeout are taken from base; configured credentials never apply to
// caller-supplied locations.
func sourceConfig(req *models.SourceRequest, base config.SourceConfig) config.SourceConfig {
	src := config.SourceConfig{
		Location:   req.Location,
		Kind:       req.Kind,
		Delimiter:  req.Delimiter,
		Thousands:  req.Thousands,
		DateColumn: base.DateColumn,
		DateLayout: req.DateLayout,
		RecordsKey: req.RecordsKey,
		Query:      req.Query,
		Headers:    req.Headers,
		Rename:     req.Rename,
		Timeout:    base.Timeout,
	}
	if req.DateColumn != "" {
		src.DateColumn = req.DateColumn
	}
	return src
}
