package handler

import (
	"errors"
	"net/http"

	catdto "github.com/fekuna/omnipos-catalog-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/delta"
	"github.com/fekuna/omnipos-catalog-service/internal/delta/dto"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HTTPHandler struct {
	uc     delta.UseCase
	logger logger.ZapLogger
}

func NewHTTPHandler(uc delta.UseCase, log logger.ZapLogger) *HTTPHandler {
	return &HTTPHandler{uc: uc, logger: log}
}

func (h *HTTPHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/sync")
	g.POST("/changes", h.CheckChanges)
	g.POST("/items", h.FetchByIdentifiers)
	g.GET("/customers", h.RecentCustomers)
}

func (h *HTTPHandler) CheckChanges(c *gin.Context) {
	var in dto.ChangesInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.uc.CheckChanges(c.Request.Context(), &in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) FetchByIdentifiers(c *gin.Context) {
	var in dto.FetchInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.uc.FetchByIdentifiers(c.Request.Context(), &in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) RecentCustomers(c *gin.Context) {
	out, err := h.uc.RecentCustomers(c.Request.Context(), &dto.CustomersInput{
		Cursor: c.Query("modified_after"),
		Limit:  catdto.ParseOptionalInt(c.Query("limit")),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, delta.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error("sync request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
