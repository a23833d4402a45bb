package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"

	"eshop/apperr"
	"eshop/auth"
	"eshop/config"
	"eshop/db"
	"eshop/models"
	"eshop/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

var testConfig = &config.Config{
	APIBase: "/api/v1",
	Secret:  "test-secret",
	Env:     "development",
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db.InitDatabase(filepath.Join(t.TempDir(), "test.db"))

	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler(false)})
	SetupRoutes(app, testConfig, store)
	return app
}

// newGatedTestApp also mounts the access gate with the default exemption
// posture, for end-to-end credential tests.
func newGatedTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db.InitDatabase(filepath.Join(t.TempDir(), "test.db"))

	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	gate, err := auth.NewGate(auth.GateConfig{
		Secret: testConfig.Secret,
		Exemptions: []auth.Rule{
			{Path: "/api/v1/users/login", Methods: []string{fiber.MethodPost}},
			{Path: "/api/v1/users/register", Methods: []string{fiber.MethodPost}},
		},
	})
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler(false)})
	app.Use(gate)
	SetupRoutes(app, testConfig, store)
	return app
}

func createTestCategory(t *testing.T, name string) models.Category {
	t.Helper()
	category := models.Category{Name: name, Icon: "icon-" + name, Color: "#fff"}
	require.NoError(t, db.DB.Create(&category).Error)
	return category
}

func createTestProduct(t *testing.T, name string, categoryID uint, price float64) models.Product {
	t.Helper()
	product := models.Product{
		Name:        name,
		Description: "test product",
		Image:       "http://example.com/public/uploads/" + name + "-0.png",
		Price:       price,
		CategoryID:  categoryID,
	}
	require.NoError(t, db.DB.Create(&product).Error)
	return product
}

type filePart struct {
	field string
	name  string
	ctype string
	data  []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...filePart) *http.Request {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.name))
		h.Set("Content-Type", f.ctype)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func decodeBody(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r).Decode(&body))
	return body
}

func decodeList(t *testing.T, r io.Reader) []map[string]any {
	t.Helper()
	var list []map[string]any
	require.NoError(t, json.NewDecoder(r).Decode(&list))
	return list
}
