package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	cashdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/cashsession/domain"
)

// @Summary      Open cash session
// @Tags         cash-sessions
// @Accept       json
// @Produce      json
// @Router       /api/cash-sessions [post]
func (s *Server) OpenCashSession(c *gin.Context) {
	var req cashdomain.OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.cashSvc.Open(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// @Summary      Get cash session
// @Description  Includes the running summary and every movement
// @Tags         cash-sessions
// @Produce      json
// @Router       /api/cash-sessions/{id} [get]
func (s *Server) GetCashSession(c *gin.Context) {
	resp, err := s.cashSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Record POS sale
// @Tags         cash-sessions
// @Accept       json
// @Produce      json
// @Router       /api/cash-sessions/{id}/sales [post]
func (s *Server) RecordCashSale(c *gin.Context) {
	var req cashdomain.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.cashSvc.RecordSale(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// @Summary      Record cash income or expense
// @Tags         cash-sessions
// @Accept       json
// @Produce      json
// @Router       /api/cash-sessions/{id}/movements [post]
func (s *Server) RecordCashMovement(c *gin.Context) {
	var req cashdomain.MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.cashSvc.RecordMovement(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// @Summary      Close cash session
// @Description  Computes expected cash, variance and the variance alert
// @Tags         cash-sessions
// @Accept       json
// @Produce      json
// @Router       /api/cash-sessions/{id}/close [post]
func (s *Server) CloseCashSession(c *gin.Context) {
	var req cashdomain.CloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.cashSvc.Close(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
