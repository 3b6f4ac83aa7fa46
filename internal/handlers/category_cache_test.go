package handlers_test

import (
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilotify/pilotify-api/internal/cache"
	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/server"
	"github.com/pilotify/pilotify-api/internal/testutil"
)

const categoriesKey = "pilotify:categories:public"

func names(items []any) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.(map[string]any)["name"].(string))
	}
	return out
}

func TestCategoryCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := newEnvWith(t, server.Deps{Cache: cache.NewRedisCache(rdb)})
	admin := testutil.User(t, e.db, models.RoleAdmin, "Ada Admin")

	res := e.do(http.MethodPost, "/api/admin/categories", admin, fiber.Map{"name": "AI"})
	require.Equal(t, http.StatusCreated, res.Status, res.Body)
	aiID := res.data()["id"].(string)

	assert.False(t, mr.Exists(categoriesKey))
	assert.Equal(t, []string{"AI"}, names(e.do(http.MethodGet, "/api/categories", nil, nil).list()))
	assert.True(t, mr.Exists(categoriesKey))

	// written behind the handler's back, so only a fresh read can see it
	require.NoError(t, e.db.Create(&models.Category{Name: "Robotics"}).Error)
	assert.Equal(t, []string{"AI"}, names(e.do(http.MethodGet, "/api/categories", nil, nil).list()))

	res = e.do(http.MethodPost, "/api/admin/categories", admin, fiber.Map{"name": "Energy"})
	require.Equal(t, http.StatusCreated, res.Status, res.Body)
	assert.False(t, mr.Exists(categoriesKey))
	assert.Equal(t, []string{"AI", "Energy", "Robotics"}, names(e.do(http.MethodGet, "/api/categories", nil, nil).list()))

	res = e.do(http.MethodPut, "/api/admin/categories/"+aiID, admin, fiber.Map{"name": "Vision"})
	require.Equal(t, http.StatusOK, res.Status, res.Body)
	assert.False(t, mr.Exists(categoriesKey))
	assert.Equal(t, []string{"Energy", "Robotics", "Vision"}, names(e.do(http.MethodGet, "/api/categories", nil, nil).list()))

	require.Equal(t, http.StatusOK, e.do(http.MethodDelete, "/api/admin/categories/"+aiID, admin, nil).Status)
	assert.False(t, mr.Exists(categoriesKey))
	assert.Equal(t, []string{"Energy", "Robotics"}, names(e.do(http.MethodGet, "/api/categories", nil, nil).list()))
}
