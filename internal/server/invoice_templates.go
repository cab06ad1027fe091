package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	templatedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoicetemplate/domain"
)

// @Summary      Create invoice template
// @Tags         invoice-templates
// @Accept       json
// @Produce      json
// @Router       /api/invoice-templates [post]
func (s *Server) CreateInvoiceTemplate(c *gin.Context) {
	var req templatedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.templateSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// @Summary      List invoice templates
// @Tags         invoice-templates
// @Produce      json
// @Param        name        query  string  false  "Name filter"
// @Param        is_default  query  bool    false  "Only the default template"
// @Router       /api/invoice-templates [get]
func (s *Server) ListInvoiceTemplates(c *gin.Context) {
	var req templatedomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.templateSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get invoice template
// @Tags         invoice-templates
// @Produce      json
// @Router       /api/invoice-templates/{id} [get]
func (s *Server) GetInvoiceTemplate(c *gin.Context) {
	resp, err := s.templateSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update invoice template
// @Tags         invoice-templates
// @Accept       json
// @Produce      json
// @Router       /api/invoice-templates/{id} [patch]
func (s *Server) UpdateInvoiceTemplate(c *gin.Context) {
	var req templatedomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	resp, err := s.templateSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Make template the organization default
// @Tags         invoice-templates
// @Produce      json
// @Router       /api/invoice-templates/{id}/default [post]
func (s *Server) SetDefaultInvoiceTemplate(c *gin.Context) {
	resp, err := s.templateSvc.SetDefault(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
