package handler

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-catalog-service/internal/catalog"
	"github.com/fekuna/omnipos-catalog-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HTTPHandler struct {
	uc     catalog.UseCase
	logger logger.ZapLogger
}

func NewHTTPHandler(uc catalog.UseCase, log logger.ZapLogger) *HTTPHandler {
	return &HTTPHandler{uc: uc, logger: log}
}

// Register mounts the catalog routes under rg.
func (h *HTTPHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/catalog")
	g.POST("/items", h.Query)
	g.POST("/variants", h.VariantsOf)
	g.GET("/groups", h.ItemGroups)
	g.POST("/detail", h.DetailOf)
	g.GET("/barcode/:barcode", h.ResolveByBarcode)
	g.GET("/identifier/:term", h.SearchIdentifier)
}

func (h *HTTPHandler) Query(c *gin.Context) {
	var in dto.QueryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows, err := h.uc.Query(c.Request.Context(), &in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.QueryOutput{Items: rows})
}

func (h *HTTPHandler) VariantsOf(c *gin.Context) {
	var in dto.VariantsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.uc.VariantsOf(c.Request.Context(), &in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ItemGroups takes the profile entitlement as repeated item_group params.
func (h *HTTPHandler) ItemGroups(c *gin.Context) {
	groups, err := h.uc.ItemGroups(c.Request.Context(), &dto.GroupsInput{
		Profile: dto.Profile{Name: c.Query("pos_profile"), ItemGroups: c.QueryArray("item_group")},
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.GroupsOutput{Groups: groups})
}

func (h *HTTPHandler) DetailOf(c *gin.Context) {
	var in dto.DetailInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.uc.DetailOf(c.Request.Context(), &in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *HTTPHandler) ResolveByBarcode(c *gin.Context) {
	hit, err := h.uc.ResolveByBarcode(c.Request.Context(), &dto.BarcodeInput{
		Barcode:   c.Param("barcode"),
		PriceList: c.Query("price_list"),
		Currency:  c.Query("currency"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BarcodeOutput{Found: hit != nil, Item: hit})
}

func (h *HTTPHandler) SearchIdentifier(c *gin.Context) {
	hit, err := h.uc.SearchIdentifier(c.Request.Context(), &dto.IdentifierInput{
		Term:           c.Param("term"),
		Warehouse:      c.Query("warehouse"),
		SearchSerialNo: c.Query("search_serial_no") == "true" || c.Query("search_serial_no") == "1",
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.IdentifierOutput{Found: hit != nil, Hit: hit})
}

func (h *HTTPHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("catalog request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
