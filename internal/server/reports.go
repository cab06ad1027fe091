package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	reportdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/reports/domain"
)

func bindReportRange(c *gin.Context) (reportdomain.Range, bool) {
	var r reportdomain.Range
	if err := c.ShouldBindQuery(&r); err != nil {
		AbortWithError(c, newValidationError("from", "invalid_report_range", "from and to must be YYYY-MM-DD dates"))
		return r, false
	}
	return r, true
}

// @Summary      Monthly sales
// @Tags         reports
// @Produce      json
// @Param        from  query  string  true  "Inclusive start date (YYYY-MM-DD)"
// @Param        to    query  string  true  "Exclusive end date (YYYY-MM-DD)"
// @Router       /api/reports/sales [get]
func (s *Server) MonthlySalesReport(c *gin.Context) {
	r, ok := bindReportRange(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.MonthlySales(c.Request.Context(), r)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Invoice status breakdown
// @Tags         reports
// @Produce      json
// @Router       /api/reports/statuses [get]
func (s *Server) StatusBreakdownReport(c *gin.Context) {
	r, ok := bindReportRange(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.StatusBreakdown(c.Request.Context(), r)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Monthly cash flow
// @Tags         reports
// @Produce      json
// @Router       /api/reports/cash-flow [get]
func (s *Server) CashFlowReport(c *gin.Context) {
	r, ok := bindReportRange(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.CashFlow(c.Request.Context(), r)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Dashboard
// @Tags         reports
// @Produce      json
// @Router       /api/reports/dashboard [get]
func (s *Server) DashboardReport(c *gin.Context) {
	r, ok := bindReportRange(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.Dashboard(c.Request.Context(), r)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
