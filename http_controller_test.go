package content_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-content"
)

type controllerFixture struct {
	App   *fiber.App
	Stack *testStack
	Repo  content.RepositoryManager
}

func setupControllerApp(t *testing.T) *controllerFixture {
	t.Helper()

	stack := setupStack(t)
	seedRoles(t, stack.Repo)

	service, err := content.NewTokenService(testSigningKey, "1h", "content-api", nil, nil)
	require.NoError(t, err)

	provider := content.NewUserProvider(stack.Repo.Users())
	auther := content.NewAuthenticator(provider, service)

	controller := content.NewController(
		content.WithControllerRepo(stack.Repo),
		content.WithControllerAuther(auther),
		content.WithControllerServices(stack.Banners, stack.Kajian),
	)

	app := fiber.New()
	controller.RegisterRoutes(app)

	return &controllerFixture{App: app, Stack: stack, Repo: stack.Repo}
}

func (f *controllerFixture) registerAndLogin(t *testing.T, email, password, role string) string {
	t.Helper()

	handler := content.NewRegisterUserHandler(f.Repo)
	_, err := handler.Execute(context.Background(), content.RegisterUserMessage{
		Email:    email,
		Password: password,
		Role:     role,
	})
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	res, err := f.App.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	require.Equal(t, "Bearer", envelope.Data.TokenType)
	require.NotEmpty(t, envelope.Data.AccessToken)

	return envelope.Data.AccessToken
}

func multipartImage(t *testing.T, fields map[string]string, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}

	if filename != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
		header.Set("Content-Type", "image/png")

		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func TestAuthEndpoints(t *testing.T) {
	t.Run("register returns the created user without its hash", func(t *testing.T) {
		f := setupControllerApp(t)

		body, _ := json.Marshal(map[string]string{
			"email":    "new@example.com",
			"password": "secret-password",
		})
		req := httptest.NewRequest("POST", "/auth/register", bytes.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		res, err := f.App.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, res.StatusCode)

		raw, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "new@example.com")
		assert.NotContains(t, string(raw), "password_hash")
	})

	t.Run("register rejects invalid payloads", func(t *testing.T) {
		f := setupControllerApp(t)

		body, _ := json.Marshal(map[string]string{"email": "not-an-email", "password": "short"})
		req := httptest.NewRequest("POST", "/auth/register", bytes.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		res, err := f.App.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
	})

	t.Run("login sets the jwt cookie", func(t *testing.T) {
		f := setupControllerApp(t)

		handler := content.NewRegisterUserHandler(f.Repo)
		_, err := handler.Execute(context.Background(), content.RegisterUserMessage{
			Email:    "cookie@example.com",
			Password: "secret-password",
		})
		require.NoError(t, err)

		body, _ := json.Marshal(map[string]string{"email": "cookie@example.com", "password": "secret-password"})
		req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		res, err := f.App.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, res.StatusCode)

		var jwtCookie *http.Cookie
		for _, cookie := range res.Cookies() {
			if cookie.Name == content.TokenCookieName {
				jwtCookie = cookie
			}
		}
		require.NotNil(t, jwtCookie)
		assert.NotEmpty(t, jwtCookie.Value)
		assert.True(t, jwtCookie.HttpOnly)
	})

	t.Run("bad credentials are unauthorized", func(t *testing.T) {
		f := setupControllerApp(t)

		handler := content.NewRegisterUserHandler(f.Repo)
		_, err := handler.Execute(context.Background(), content.RegisterUserMessage{
			Email:    "victim@example.com",
			Password: "secret-password",
		})
		require.NoError(t, err)

		body, _ := json.Marshal(map[string]string{"email": "victim@example.com", "password": "wrong"})
		req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		res, err := f.App.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	})

	t.Run("profile works with header and with cookie", func(t *testing.T) {
		f := setupControllerApp(t)
		token := f.registerAndLogin(t, "me@example.com", "secret-password", content.RoleUser)

		req := httptest.NewRequest("GET", "/auth/profile", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

		res, err := f.App.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)

		raw, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "me@example.com")

		req = httptest.NewRequest("GET", "/auth/profile", nil)
		req.AddCookie(&http.Cookie{Name: content.TokenCookieName, Value: token})

		res, err = f.App.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	})

	t.Run("profile without a token is a bad request", func(t *testing.T) {
		f := setupControllerApp(t)

		res, err := f.App.Test(httptest.NewRequest("GET", "/auth/profile", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
	})

	t.Run("tampered token is unauthorized", func(t *testing.T) {
		f := setupControllerApp(t)
		token := f.registerAndLogin(t, "victim2@example.com", "secret-password", content.RoleUser)

		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]

		req := httptest.NewRequest("GET", "/auth/profile", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tampered)

		res, err := f.App.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	})
}

// A token stays cryptographically valid after its account is removed.
// Protected routes must consult the store, not just the signature.
func TestProtectedRoutesRejectDeletedAccounts(t *testing.T) {
	f := setupControllerApp(t)
	adminToken := f.registerAndLogin(t, "gone@example.com", "secret-password", content.RoleAdmin)

	_, err := f.Stack.DB.NewDelete().
		Model((*content.User)(nil)).
		Where("email = ?", "gone@example.com").
		Exec(context.Background())
	require.NoError(t, err)

	up := pngUpload(t, "banner.png")
	buf, contentType := multipartImage(t, map[string]string{"title": "ghost"}, "banner.png", up.Data)

	req := httptest.NewRequest("POST", "/banners", buf)
	req.Header.Set(fiber.HeaderContentType, contentType)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken)

	res, err := f.App.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

	records, err := f.Stack.Banners.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBannerEndpoints(t *testing.T) {
	t.Run("reads are public", func(t *testing.T) {
		f := setupControllerApp(t)

		res, err := f.App.Test(httptest.NewRequest("GET", "/banners", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	})

	t.Run("mutations require the admin role", func(t *testing.T) {
		f := setupControllerApp(t)
		userToken := f.registerAndLogin(t, "plain@example.com", "secret-password", content.RoleUser)

		buf, contentType := multipartImage(t, map[string]string{"title": "nope"}, "", nil)
		req := httptest.NewRequest("POST", "/banners", buf)
		req.Header.Set(fiber.HeaderContentType, contentType)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+userToken)

		res, err := f.App.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
	})

	t.Run("admin uploads a banner image", func(t *testing.T) {
		f := setupControllerApp(t)
		adminToken := f.registerAndLogin(t, "boss@example.com", "secret-password", content.RoleAdmin)

		up := pngUpload(t, "banner.png")
		buf, contentType := multipartImage(t, map[string]string{"title": "hero"}, "banner.png", up.Data)

		req := httptest.NewRequest("POST", "/banners", buf)
		req.Header.Set(fiber.HeaderContentType, contentType)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken)

		res, err := f.App.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, res.StatusCode)

		raw, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "hero")
		assert.Contains(t, string(raw), "/uploads/")
	})

	t.Run("alt text defaults to the title and can be overridden", func(t *testing.T) {
		f := setupControllerApp(t)
		adminToken := f.registerAndLogin(t, "boss4@example.com", "secret-password", content.RoleAdmin)

		up := pngUpload(t, "first.png")
		buf, contentType := multipartImage(t, map[string]string{"title": "summer sale"}, "first.png", up.Data)
		req := httptest.NewRequest("POST", "/banners", buf)
		req.Header.Set(fiber.HeaderContentType, contentType)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken)

		res, err := f.App.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, res.StatusCode)

		up = pngUpload(t, "second.png")
		buf, contentType = multipartImage(t, map[string]string{
			"title":    "winter sale",
			"alt_text": "Snowy storefront",
		}, "second.png", up.Data)
		req = httptest.NewRequest("POST", "/banners", buf)
		req.Header.Set(fiber.HeaderContentType, contentType)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken)

		res, err = f.App.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, res.StatusCode)

		var media []*content.Media
		err = f.Stack.DB.NewSelect().Model(&media).Order("created_at ASC").Scan(context.Background())
		require.NoError(t, err)
		require.Len(t, media, 2)

		alts := []string{media[0].AltText, media[1].AltText}
		assert.Contains(t, alts, "summer sale")
		assert.Contains(t, alts, "Snowy storefront")
	})

	t.Run("non image upload is a bad request", func(t *testing.T) {
		f := setupControllerApp(t)
		adminToken := f.registerAndLogin(t, "boss2@example.com", "secret-password", content.RoleAdmin)

		buf := &bytes.Buffer{}
		writer := multipart.NewWriter(buf)
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="image"; filename="notes.txt"`)
		header.Set("Content-Type", "text/plain")
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("hello"))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest("POST", "/banners", buf)
		req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken)

		res, err := f.App.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
	})

	t.Run("admin deletes a banner", func(t *testing.T) {
		f := setupControllerApp(t)
		adminToken := f.registerAndLogin(t, "boss3@example.com", "secret-password", content.RoleAdmin)

		banner, err := f.Stack.Banners.Create(context.Background(), content.BannerInput{Title: strPtr("temp")}, content.MediaSource{})
		require.NoError(t, err)

		req := httptest.NewRequest("DELETE", "/banners/"+banner.ID.String(), nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken)

		res, err := f.App.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	})

	t.Run("invalid banner id is a bad request", func(t *testing.T) {
		f := setupControllerApp(t)

		res, err := f.App.Test(httptest.NewRequest("GET", "/banners/not-a-uuid", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
	})
}

func TestKajianEndpoints(t *testing.T) {
	t.Run("admin creates a kajian with an external poster", func(t *testing.T) {
		f := setupControllerApp(t)
		adminToken := f.registerAndLogin(t, "boss@example.com", "secret-password", content.RoleAdmin)

		buf, contentType := multipartImage(t, map[string]string{
			"title":     "kajian akbar",
			"image_url": "https://cdn.example.com/poster.jpg",
		}, "", nil)

		req := httptest.NewRequest("POST", "/kajian", buf)
		req.Header.Set(fiber.HeaderContentType, contentType)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken)

		res, err := f.App.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, res.StatusCode)

		raw, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "https://cdn.example.com/poster.jpg")
	})

	t.Run("missing kajian is not found", func(t *testing.T) {
		f := setupControllerApp(t)

		res, err := f.App.Test(httptest.NewRequest("GET", "/kajian/never-existed", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
	})

	t.Run("response envelope is uniform", func(t *testing.T) {
		f := setupControllerApp(t)

		res, err := f.App.Test(httptest.NewRequest("GET", "/kajian", nil))
		require.NoError(t, err)

		raw, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(raw), `{"success":true`), string(raw))
	})
}
