package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"netowork_backend/internal/services"
)

type CategoryHandler struct {
	*BaseHandler
	categoryService services.CategoryService
}

func NewCategoryHandler(base *BaseHandler, categoryService services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		BaseHandler:     base,
		categoryService: categoryService,
	}
}

func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/categories", authMW, h.GetCategories)
}

// GetCategories godoc
// @Summary      Дерево категорий
// @Tags         categories
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=[]models.CategoryTree}
// @Failure      401  {object}  apperrors.ErrorResponse
// @Router       /categories [get]
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	tree, err := h.categoryService.GetTree(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, tree)
}
