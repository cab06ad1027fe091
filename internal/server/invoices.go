package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/calc"
	invoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/domain"
)

type previewInvoiceRequest struct {
	Items []calc.LineItem `json:"items"`
}

type reorderItemsRequest struct {
	ItemIDs []string `json:"item_ids"`
}

type cancelInvoiceRequest struct {
	Reason string `json:"reason"`
}

// @Summary      Preview invoice totals
// @Description  Computes line and invoice totals without persisting anything
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Router       /api/invoices/preview [post]
func (s *Server) PreviewInvoice(c *gin.Context) {
	var req previewInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	totals, err := s.invoiceSvc.Preview(c.Request.Context(), req.Items)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": totals})
}

// @Summary      Create draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Org-Id  header  string  true  "Organization ID"
// @Router       /api/invoices [post]
func (s *Server) CreateInvoice(c *gin.Context) {
	var req invoicedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        status       query  string  false  "Invoice status"
// @Param        issued_from  query  string  false  "RFC3339 or YYYY-MM-DD"
// @Param        issued_to    query  string  false  "RFC3339 or YYYY-MM-DD"
// @Param        page_token   query  string  false  "Page token"
// @Param        page_size    query  int     false  "Page size"
// @Router       /api/invoices [get]
func (s *Server) ListInvoices(c *gin.Context) {
	var req invoicedomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	issuedFrom, err := parseOptionalTime(c.Query("issued_from"))
	if err != nil {
		AbortWithError(c, newValidationError("issued_from", "invalid_issued_from", "invalid issued_from"))
		return
	}
	issuedTo, err := parseOptionalTime(c.Query("issued_to"))
	if err != nil {
		AbortWithError(c, newValidationError("issued_to", "invalid_issued_to", "invalid issued_to"))
		return
	}
	req.IssuedFrom = issuedFrom
	req.IssuedTo = issuedTo

	resp, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get invoice
// @Description  Totals are recomputed from the persisted items
// @Tags         invoices
// @Produce      json
// @Router       /api/invoices/{id} [get]
func (s *Server) GetInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Render invoice document
// @Tags         invoices
// @Produce      html
// @Router       /api/invoices/{id}/document [get]
func (s *Server) RenderInvoice(c *gin.Context) {
	html, err := s.documentSvc.RenderInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// @Summary      Add invoice item
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Router       /api/invoices/{id}/items [post]
func (s *Server) AddInvoiceItem(c *gin.Context) {
	var item calc.LineItem
	if err := c.ShouldBindJSON(&item); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.AddItem(c.Request.Context(), c.Param("id"), item)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update invoice item
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Router       /api/invoices/{id}/items/{item_id} [patch]
func (s *Server) UpdateInvoiceItem(c *gin.Context) {
	var item calc.LineItem
	if err := c.ShouldBindJSON(&item); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.UpdateItem(c.Request.Context(), c.Param("id"), c.Param("item_id"), item)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Remove invoice item
// @Tags         invoices
// @Produce      json
// @Router       /api/invoices/{id}/items/{item_id} [delete]
func (s *Server) RemoveInvoiceItem(c *gin.Context) {
	resp, err := s.invoiceSvc.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("item_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Reorder invoice items
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Router       /api/invoices/{id}/items/order [put]
func (s *Server) ReorderInvoiceItems(c *gin.Context) {
	var req reorderItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(req.ItemIDs) == 0 {
		AbortWithError(c, newValidationError("item_ids", "invalid_item_order", "item_ids is required"))
		return
	}

	resp, err := s.invoiceSvc.ReorderItems(c.Request.Context(), c.Param("id"), req.ItemIDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Issue invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Router       /api/invoices/{id}/issue [post]
func (s *Server) IssueInvoice(c *gin.Context) {
	var req invoicedomain.IssueRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.invoiceSvc.Issue(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Cancel invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Router       /api/invoices/{id}/cancel [post]
func (s *Server) CancelInvoice(c *gin.Context) {
	var req cancelInvoiceRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.invoiceSvc.Cancel(c.Request.Context(), c.Param("id"), strings.TrimSpace(req.Reason))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Mark invoice paid
// @Tags         invoices
// @Produce      json
// @Router       /api/invoices/{id}/pay [post]
func (s *Server) MarkInvoicePaid(c *gin.Context) {
	resp, err := s.invoiceSvc.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Mark invoice overdue
// @Description  Manual trigger for the same transition the overdue sweep applies
// @Tags         invoices
// @Produce      json
// @Router       /api/invoices/{id}/overdue [post]
func (s *Server) MarkInvoiceOverdue(c *gin.Context) {
	resp, err := s.invoiceSvc.MarkOverdue(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// parseOptionalTime accepts RFC3339 timestamps or plain dates.
func parseOptionalTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		t := parsed.UTC()
		return &t, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
