package routes

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"eshop/db"
	"eshop/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryCRUD(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(jsonRequest(t, fiber.MethodPost, "/api/v1/categories", map[string]any{
		"name":  "phones",
		"icon":  "phone-icon",
		"color": "#111",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := int(decodeBody(t, resp.Body)["id"].(float64))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, fmt.Sprintf("/api/v1/categories/%d", id), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "phones", decodeBody(t, resp.Body)["name"])

	resp, err = app.Test(jsonRequest(t, fiber.MethodPut, fmt.Sprintf("/api/v1/categories/%d", id), map[string]any{
		"color": "#222",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "#222", decodeBody(t, resp.Body)["color"])

	resp, err = app.Test(httptest.NewRequest(fiber.MethodDelete, fmt.Sprintf("/api/v1/categories/%d", id), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, fmt.Sprintf("/api/v1/categories/%d", id), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreateCategoryRequiresName(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(jsonRequest(t, fiber.MethodPost, "/api/v1/categories", map[string]any{
		"icon": "nameless",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteCategoryDetachesProducts(t *testing.T) {
	app := newTestApp(t)
	category := createTestCategory(t, "phones")
	product := createTestProduct(t, "phone", category.ID, 10)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, fmt.Sprintf("/api/v1/categories/%d", category.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var reloaded models.Product
	require.NoError(t, db.DB.First(&reloaded, product.ID).Error)
	assert.Zero(t, reloaded.CategoryID)
}
