package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"brandcatalog/internal/app"
	"brandcatalog/internal/transport/http/middleware"
	"brandcatalog/internal/transport/http/response"
)

type BrandHandler struct {
	brandService *app.BrandService
	logger       *slog.Logger
}

func NewBrandHandler(brandService *app.BrandService, logger *slog.Logger) *BrandHandler {
	return &BrandHandler{brandService: brandService, logger: logger}
}

// positiveInt parses raw, falling back to def for anything that is not an
// integer of at least 1.
func positiveInt(raw string, def int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return def
	}
	return v
}

// brandID reports false for ids that cannot name a stored brand.
func brandID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func actorFrom(c *gin.Context) app.Actor {
	identity, _ := middleware.IdentityFrom(c)
	return app.Actor{UserID: identity.UserID, Username: identity.Username}
}

func brandNotFound(c *gin.Context) {
	response.Error(c, http.StatusNotFound, response.CodeNotFound, "brand not found")
}

func (h *BrandHandler) List(c *gin.Context) {
	page, err := h.brandService.List(c.Request.Context(), app.ListBrandsInput{
		Page:     positiveInt(c.Query("page"), app.DefaultPage),
		PageSize: positiveInt(c.Query("limit"), app.DefaultPageSize),
		Search:   c.Query("search"),
	})
	if err != nil {
		writeUnexpected(c, h.logger, "list brands", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *BrandHandler) Get(c *gin.Context) {
	id, ok := brandID(c)
	if !ok {
		brandNotFound(c)
		return
	}

	brand, err := h.brandService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			brandNotFound(c)
			return
		}
		writeUnexpected(c, h.logger, "get brand", err)
		return
	}
	c.JSON(http.StatusOK, brand)
}

func (h *BrandHandler) Create(c *gin.Context) {
	var req app.BrandInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c)
		return
	}

	brand, err := h.brandService.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		var verr *app.ValidationError
		if errors.As(err, &verr) {
			response.Validation(c, verr)
			return
		}
		writeUnexpected(c, h.logger, "create brand", err)
		return
	}
	c.JSON(http.StatusCreated, brand)
}

func (h *BrandHandler) Update(c *gin.Context) {
	id, ok := brandID(c)
	if !ok {
		brandNotFound(c)
		return
	}
	var req app.BrandInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c)
		return
	}

	brand, err := h.brandService.Update(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		var verr *app.ValidationError
		switch {
		case errors.Is(err, app.ErrNotFound):
			brandNotFound(c)
		case errors.As(err, &verr):
			response.Validation(c, verr)
		default:
			writeUnexpected(c, h.logger, "update brand", err)
		}
		return
	}
	c.JSON(http.StatusOK, brand)
}

func (h *BrandHandler) Delete(c *gin.Context) {
	id, ok := brandID(c)
	if !ok {
		brandNotFound(c)
		return
	}

	if err := h.brandService.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		if errors.Is(err, app.ErrNotFound) {
			brandNotFound(c)
			return
		}
		writeUnexpected(c, h.logger, "delete brand", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "brand deleted successfully"})
}

func (h *BrandHandler) History(c *gin.Context) {
	id, ok := brandID(c)
	if !ok {
		brandNotFound(c)
		return
	}

	events, err := h.brandService.History(c.Request.Context(), id, positiveInt(c.Query("limit"), 0))
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			brandNotFound(c)
			return
		}
		writeUnexpected(c, h.logger, "list brand events", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
