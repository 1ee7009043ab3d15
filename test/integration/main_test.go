package integration_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"netowork_backend/internal/models"
	"netowork_backend/test/helpers"
)

// firstSubcategory возвращает id корневой категории и ее первой подкатегории
func firstSubcategory(t *testing.T, c *helpers.Client) (int64, int64) {
	t.Helper()
	res := c.Do(http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, res.Code, res.Error)

	var tree []models.CategoryTree
	res.DecodeData(t, &tree)
	require.NotEmpty(t, tree)
	require.NotEmpty(t, tree[0].Subcategories)
	return tree[0].ID, tree[0].Subcategories[0].ID
}
