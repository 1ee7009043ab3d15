package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netowork_backend/internal/models"
	"netowork_backend/internal/session"
)

func int64Ptr(v int64) *int64 { return &v }

func sampleCategories() []models.Category {
	return []models.Category{
		{ID: 1, Name: "Development"},
		{ID: 2, Name: "Design"},
		{ID: 10, Name: "Backend", ParentID: int64Ptr(1)},
		{ID: 11, Name: "Frontend", ParentID: int64Ptr(1)},
		{ID: 20, Name: "Logos", ParentID: int64Ptr(2)},
	}
}

func TestBuildCategoryTree(t *testing.T) {
	tree := buildCategoryTree(sampleCategories())

	require.Len(t, tree, 2)
	assert.Equal(t, "Development", tree[0].Name)
	require.Len(t, tree[0].Subcategories, 2)
	assert.Equal(t, "Backend", tree[0].Subcategories[0].Name)
	assert.Equal(t, "Frontend", tree[0].Subcategories[1].Name)
	assert.Equal(t, "Design", tree[1].Name)
	require.Len(t, tree[1].Subcategories, 1)
	assert.Equal(t, int64(20), tree[1].Subcategories[0].ID)
}

func TestBuildCategoryTree_EmptyAndOrphans(t *testing.T) {
	assert.Empty(t, buildCategoryTree(nil))
	assert.NotNil(t, buildCategoryTree(nil))

	tree := buildCategoryTree([]models.Category{
		{ID: 1, Name: "Root"},
		{ID: 5, Name: "Lost", ParentID: int64Ptr(99)},
	})
	require.Len(t, tree, 1)
	assert.Empty(t, tree[0].Subcategories)
}

func TestCategoryService_GetTreeUsesCache(t *testing.T) {
	ctx := context.Background()
	env := newRedisEnv(t)
	repo := &mockCategoryRepo{
		FindAllFn: func() ([]models.Category, error) { return sampleCategories(), nil },
	}
	cache := session.NewJSONCache(env.client, "categories", time.Hour, time.Second)
	svc := NewCategoryService(repo, cache)

	first, err := svc.GetTree(ctx, newTestDB(t))
	require.NoError(t, err)
	second, err := svc.GetTree(ctx, newTestDB(t))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.findAllCalls)
	assert.True(t, env.mr.Exists("categories"))

	// после сброса кеша дерево строится заново
	require.NoError(t, cache.Invalidate(ctx))
	_, err = svc.GetTree(ctx, newTestDB(t))
	require.NoError(t, err)
	assert.Equal(t, 2, repo.findAllCalls)
}

func TestCategoryService_GetTreeWithoutRedis(t *testing.T) {
	env := newRedisEnv(t)
	repo := &mockCategoryRepo{
		FindAllFn: func() ([]models.Category, error) { return sampleCategories(), nil },
	}
	svc := NewCategoryService(repo, session.NewJSONCache(env.client, "categories", time.Hour, time.Second))
	env.mr.Close()

	tree, err := svc.GetTree(context.Background(), newTestDB(t))
	require.NoError(t, err)
	assert.Len(t, tree, 2)
}

func TestCategoryService_GetTreeRepoError(t *testing.T) {
	env := newRedisEnv(t)
	repo := &mockCategoryRepo{
		FindAllFn: func() ([]models.Category, error) { return nil, errors.New("connection reset") },
	}
	svc := NewCategoryService(repo, session.NewJSONCache(env.client, "categories", time.Hour, time.Second))

	_, err := svc.GetTree(context.Background(), newTestDB(t))
	assertHTTPCode(t, err, 500)
	assert.False(t, env.mr.Exists("categories"))
}
