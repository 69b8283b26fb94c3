package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type summaryQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

func (h *Handler) summary(c *gin.Context) {
	var q summaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	dates, err := ledgerQuery{StartDate: q.StartDate, EndDate: q.EndDate}.dateRange()
	if err != nil {
		badRequest(c, err)
		return
	}

	summary, err := h.Summaries.Summary(c.Request.Context(), mustIdentity(c), dates)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaryToResponse(summary))
}

func (h *Handler) monthlySummary(c *gin.Context) {
	months, err := h.Summaries.MonthlySummary(c.Request.Context(), mustIdentity(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]MonthlySummaryResponse, len(months))
	for i, m := range months {
		resp[i] = MonthlySummaryResponse{Year: m.Year, Month: m.Month, SummaryResponse: summaryToResponse(m.Summary)}
	}
	c.JSON(http.StatusOK, resp)
}
