package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	statusOK       = "ok"
	statusError    = "error"
	statusDisabled = "disabled"
)

type healthResponse struct {
	Status      string `json:"status"`
	Config      string `json:"config"`
	Database    string `json:"database"`
	Cache       string `json:"cache"`
	Environment string `json:"environment"`
}

// Health reports 503 when configuration is incomplete or the database is
// unreachable. A failing cache only degrades the report.
func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:      statusOK,
		Config:      statusOK,
		Database:    statusDisabled,
		Cache:       statusDisabled,
		Environment: h.cfg.Environment,
	}
	code := http.StatusOK

	if h.configErr != nil {
		resp.Config = statusError
		resp.Status = statusError
		code = http.StatusServiceUnavailable
	}

	if h.db != nil {
		resp.Database = statusOK
		if err := h.db.Ping(ctx); err != nil {
			resp.Database = statusError
			resp.Status = statusError
			code = http.StatusServiceUnavailable
			h.log.Error().Err(err).Msg("database ping failed")
		}
	}

	if h.cache != nil {
		resp.Cache = statusOK
		if err := h.cache.Ping(ctx).Err(); err != nil {
			resp.Cache = statusError
			h.log.Error().Err(err).Msg("redis ping failed")
		}
	}

	c.JSON(code, resp)
}
