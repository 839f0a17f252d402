package lists

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/maggie-app/maggie-api/internal/store/memory"
)

func stubAuth(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func newListsRouter(repo *Repository, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), repo, stubAuth(userID))
	return r
}

func decodeData(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.Equal(t, "success", envelope["status"])
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	return data
}

func TestCreateListEndpoint(t *testing.T) {
	repo := NewRepository(memory.New())
	r := newListsRouter(repo, "u1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/lists", strings.NewReader(`{"title":" Weekly groceries ","description":"Saturday"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, 201, w.Code)
	data := decodeData(t, w.Body.Bytes())
	require.Equal(t, "Weekly groceries", data["title"])
	require.Equal(t, "u1", data["ownerId"])
	require.Len(t, data["code"], 6)
	require.Equal(t, float64(0), data["itemsTotal"])
}

func TestCreateListRejectsBlankTitle(t *testing.T) {
	repo := NewRepository(memory.New())
	r := newListsRouter(repo, "u1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/lists", strings.NewReader(`{"title":"   "}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, 422, w.Code)
}

func TestJoinByCodeEndpoint(t *testing.T) {
	s := memory.New()
	repo := NewRepository(s)

	listID, err := repo.Create(context.Background(), "u1", "Groceries", "")
	require.NoError(t, err)
	created, err := repo.Get(context.Background(), listID)
	require.NoError(t, err)

	r := newListsRouter(repo, "u2")
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/lists/join", strings.NewReader(`{"code":"`+strings.ToLower(created.Code)+`"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	data := decodeData(t, w.Body.Bytes())
	require.Equal(t, listID, data["id"])

	list, err := repo.Get(context.Background(), listID)
	require.NoError(t, err)
	require.True(t, list.IsMember("u2"))
}

func TestJoinByUnknownCodeReturns404(t *testing.T) {
	repo := NewRepository(memory.New())
	r := newListsRouter(repo, "u2")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/lists/join", strings.NewReader(`{"code":"ZZZZ99"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, 404, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "NOT_FOUND", body["code"])
}

func TestGetListForbiddenForNonMember(t *testing.T) {
	repo := NewRepository(memory.New())
	listID, err := repo.Create(context.Background(), "u1", "Groceries", "")
	require.NoError(t, err)

	r := newListsRouter(repo, "stranger")
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/lists/"+listID, nil)
	r.ServeHTTP(w, req)

	require.Equal(t, 403, w.Code)
}

func TestShareEndpoint(t *testing.T) {
	repo := NewRepository(memory.New())
	listID, err := repo.Create(context.Background(), "u1", "Groceries", "")
	require.NoError(t, err)

	r := newListsRouter(repo, "u1")
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/lists/"+listID+"/share", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	data := decodeData(t, w.Body.Bytes())
	require.Equal(t, ShareLink(listID), data["link"])
	require.Len(t, data["code"], 6)
}

func TestListMineEndpoint(t *testing.T) {
	repo := NewRepository(memory.New())
	_, err := repo.Create(context.Background(), "u1", "Mine", "")
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), "u2", "Not mine", "")
	require.NoError(t, err)

	r := newListsRouter(repo, "u1")
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/lists", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	rows, ok := envelope["data"].([]any)
	require.True(t, ok)
	require.Len(t, rows, 1)
}
