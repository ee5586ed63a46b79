package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/technest/technest-api/internal/api/handler/v1/response"
	"github.com/technest/technest-api/internal/domain"
)

type CategoryService interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

type CategoryHandler struct {
	svc CategoryService
}

func NewCategoryHandler(svc CategoryService) *CategoryHandler {
	return &CategoryHandler{
		svc: svc,
	}
}

// HandleListCategories godoc
// @Summary      List all categories
// @Tags         categories
// @Produce      json
// @Success      200  {object}  response.CategoriesResponse
// @Failure      500  {object}  response.Err
// @Router       /categories [get]
func (h *CategoryHandler) HandleListCategories(ctx *gin.Context) {
	categories, err := h.svc.ListCategories(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListCategories -> h.svc.ListCategories -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.CategoriesResponse{
		Categories: categories,
		Count:      len(categories),
	})
}
