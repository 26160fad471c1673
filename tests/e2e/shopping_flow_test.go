//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"greenbasket/internal/app/market/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// BaseURL - адрес запущенного сервиса
	// Для E2E тестов сервис должен быть запущен через docker-compose
	BaseURL = "http://localhost:8080"
)

// TestFullShoppingFlow тестирует полный покупательский цикл:
// 1. Регистрация
// 2. Просмотр каталога
// 3. Синхронизация корзины
// 4. Добавление в избранное (дважды - проверка идемпотентности)
// 5. Покупка и проверка очистки корзины
// 6. Отзыв на купленный товар (повтор отклоняется)
func TestFullShoppingFlow(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}

	email := fmt.Sprintf("e2e-%d@example.com", time.Now().UnixNano())
	username := fmt.Sprintf("e2e-user-%d", time.Now().UnixNano())
	password := "securepassword123"

	// ==================== Step 1: Register ====================
	t.Log("Step 1: Registering new user")

	registerBody, _ := json.Marshal(entity.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})

	resp, err := client.Post(BaseURL+"/api/auth/register", "application/json", bytes.NewBuffer(registerBody))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode, "Registration should succeed")

	var registerResponse entity.AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&registerResponse))
	require.NotEmpty(t, registerResponse.Tokens.AccessToken)

	accessToken := registerResponse.Tokens.AccessToken

	// ==================== Step 2: Browse catalog ====================
	t.Log("Step 2: Browsing catalog")

	resp, err = client.Get(BaseURL + "/api/products/all_products")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var catalog entity.ProductListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&catalog))
	require.NotEmpty(t, catalog.Products, "Catalog must be seeded before running e2e tests")

	product := catalog.Products[0]

	// ==================== Step 3: Sync basket ====================
	t.Log("Step 3: Syncing basket")

	syncBody, _ := json.Marshal(entity.SyncBasketRequest{
		Items: []entity.BasketItemRequest{{ProductID: product.ID, Quantity: 2}},
	})
	resp = doAuthed(t, client, http.MethodPost, "/api/me/basket", accessToken, syncBody)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doAuthed(t, client, http.MethodGet, "/api/me/basket", accessToken, nil)
	defer resp.Body.Close()

	var basket entity.BasketResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&basket))
	require.Len(t, basket.Items, 1)
	assert.Equal(t, 2, basket.Items[0].Quantity)

	// ==================== Step 4: Favorites are idempotent ====================
	t.Log("Step 4: Adding to favorites twice")

	favBody, _ := json.Marshal(entity.FavoriteRequest{ProductID: product.ID})

	resp = doAuthed(t, client, http.MethodPost, "/api/me/favorites", accessToken, favBody)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doAuthed(t, client, http.MethodPost, "/api/me/favorites", accessToken, favBody)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "Second add must not fail")

	// ==================== Step 5: Purchase clears basket ====================
	t.Log("Step 5: Purchasing")

	purchaseBody, _ := json.Marshal(map[string][]uuid.UUID{
		"purchased_products": {product.ID},
	})
	resp = doAuthed(t, client, http.MethodPost, "/api/me/purchase", accessToken, purchaseBody)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doAuthed(t, client, http.MethodGet, "/api/me/basket", accessToken, nil)
	defer resp.Body.Close()

	var emptied entity.BasketResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&emptied))
	assert.Empty(t, emptied.Items, "Basket must be cleared after purchase")

	resp = doAuthed(t, client, http.MethodGet, "/api/me/purchased-products", accessToken, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// ==================== Step 6: Review, duplicate rejected ====================
	t.Log("Step 6: Reviewing purchased product")

	reviewBody, _ := json.Marshal(entity.AddReviewRequest{Rating: 5, Comment: "e2e approved"})

	resp = doAuthed(t, client, http.MethodPost, "/api/products/"+product.ID.String()+"/add-review", accessToken, reviewBody)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doAuthed(t, client, http.MethodPost, "/api/products/"+product.ID.String()+"/add-review", accessToken, reviewBody)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "Second review from same user must conflict")
}

func doAuthed(t *testing.T, client *http.Client, method, path, token string, body []byte) *http.Response {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		reader = bytes.NewBuffer(body)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, BaseURL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}
