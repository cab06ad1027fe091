package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	obscontext "github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability/context"
)

// @Summary      Submit electronic invoice
// @Description  Sends an issued invoice to the configured provider and stores the receipt
// @Tags         einvoice
// @Produce      json
// @Router       /api/invoices/{id}/einvoice [post]
func (s *Server) SubmitEInvoice(c *gin.Context) {
	if !s.submitLimiter.Allow(obscontext.OrgIDFromGin(c)) {
		AbortWithError(c, ErrRateLimited)
		return
	}

	receipt, err := s.einvoiceSvc.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": receipt})
}

// @Summary      Preview electronic invoice submission
// @Tags         einvoice
// @Produce      json
// @Router       /api/invoices/{id}/einvoice/preview [get]
func (s *Server) PreviewEInvoice(c *gin.Context) {
	submission, err := s.einvoiceSvc.Preview(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": submission})
}
