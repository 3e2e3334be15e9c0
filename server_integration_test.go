package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"aurora/models"
	"aurora/pkg/session"

	"github.com/gin-gonic/gin"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	cfg = loadConfig()
	initDB()
	sessions = session.NewManager(
		&dbCredentials{db: db},
		&gormTokenStore{db: db},
		cfg.accessContext(),
		cfg.refreshContext(),
	)
	r := gin.Default()
	setupRoutes(r)
	return r
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)
	username := fmt.Sprintf("user-%d", time.Now().UnixNano())

	// 1. Register user
	resp := performRequest(r, http.MethodPost, "/api/users/register",
		jsonBody(t, map[string]string{"username": username, "password": "pass123"}), "")
	if resp.Code != 200 {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 2. Login with the wrong password fails uniformly
	resp = performRequest(r, http.MethodPost, "/api/auth/login",
		jsonBody(t, map[string]string{"username": username, "password": "wrong"}), "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", resp.Code)
	}

	// 3. Login
	resp = performRequest(r, http.MethodPost, "/api/auth/login",
		jsonBody(t, map[string]string{"username": username, "password": "pass123"}), "")
	if resp.Code != 200 {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var pair struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &pair); err != nil || pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("bad login response: %s", resp.Body.String())
	}

	// 4. Access a protected route
	resp = performRequest(r, http.MethodGet, "/api/me", nil, pair.AccessToken)
	if resp.Code != 200 {
		t.Fatalf("me failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 5. No token / bad token are rejected
	if resp = performRequest(r, http.MethodGet, "/api/me", nil, ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}
	if resp = performRequest(r, http.MethodGet, "/api/me", nil, "garbage"); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with garbage token, got %d", resp.Code)
	}

	// 6. Registration created the starter folder and note
	resp = performRequest(r, http.MethodGet, "/api/folders", nil, pair.AccessToken)
	if resp.Code != 200 {
		t.Fatalf("list folders failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var folders []struct {
		ID         uint   `json:"id"`
		FolderName string `json:"folderName"`
		Notes      []struct {
			Title string `json:"title"`
		} `json:"notes"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &folders); err != nil || len(folders) != 1 {
		t.Fatalf("expected one starter folder, body=%s", resp.Body.String())
	}
	if len(folders[0].Notes) != 1 || folders[0].Notes[0].Title != "Your first note" {
		t.Fatalf("expected starter note, body=%s", resp.Body.String())
	}

	// 7. Create a second folder and a note in it
	resp = performRequest(r, http.MethodPost, "/api/folders",
		jsonBody(t, map[string]string{"folderName": "work"}), pair.AccessToken)
	if resp.Code != 200 {
		t.Fatalf("create folder failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var folder struct {
		ID uint `json:"id"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &folder)

	resp = performRequest(r, http.MethodPost, "/api/notes",
		jsonBody(t, map[string]any{"title": "todo", "content": "write tests", "folderId": folder.ID}), pair.AccessToken)
	if resp.Code != 200 {
		t.Fatalf("create note failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 8. Deleting the non-empty folder without cascade fails
	resp = performRequest(r, http.MethodDelete, fmt.Sprintf("/api/folders/%d", folder.ID), nil, pair.AccessToken)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 deleting non-empty folder, got %d", resp.Code)
	}
	resp = performRequest(r, http.MethodDelete, fmt.Sprintf("/api/folders/%d?cascadeDelete=true", folder.ID), nil, pair.AccessToken)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("cascade delete failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 9. Refresh rotates the pair; the old refresh token is now dead
	resp = performRequest(r, http.MethodPost, "/api/auth/refresh",
		jsonBody(t, map[string]string{"refreshToken": pair.RefreshToken}), "")
	if resp.Code != 200 {
		t.Fatalf("refresh failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var rotated struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &rotated)
	if rotated.RefreshToken == "" || rotated.RefreshToken == pair.RefreshToken {
		t.Fatalf("refresh did not rotate: %s", resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/api/auth/refresh",
		jsonBody(t, map[string]string{"refreshToken": pair.RefreshToken}), "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 reusing consumed refresh token, got %d", resp.Code)
	}

	// 10. The rotated access token works
	resp = performRequest(r, http.MethodGet, "/api/me", nil, rotated.AccessToken)
	if resp.Code != 200 {
		t.Fatalf("me with rotated token failed status=%d", resp.Code)
	}

	// 11. Logout kills the refresh token; a second logout fails
	resp = performRequest(r, http.MethodPost, "/api/auth/logout",
		jsonBody(t, map[string]string{"refreshToken": rotated.RefreshToken}), "")
	if resp.Code != http.StatusNoContent {
		t.Fatalf("logout failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/api/auth/refresh",
		jsonBody(t, map[string]string{"refreshToken": rotated.RefreshToken}), "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 refreshing after logout, got %d", resp.Code)
	}
	resp = performRequest(r, http.MethodPost, "/api/auth/logout",
		jsonBody(t, map[string]string{"refreshToken": rotated.RefreshToken}), "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on repeated logout, got %d", resp.Code)
	}
}

func TestLoginDisabledOrLockedAccount(t *testing.T) {
	r := setupTestServer(t)
	username := fmt.Sprintf("gated-%d", time.Now().UnixNano())

	resp := performRequest(r, http.MethodPost, "/api/users/register",
		jsonBody(t, map[string]string{"username": username, "password": "pass123"}), "")
	if resp.Code != 200 {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	login := func() *httptest.ResponseRecorder {
		return performRequest(r, http.MethodPost, "/api/auth/login",
			jsonBody(t, map[string]string{"username": username, "password": "pass123"}), "")
	}
	if resp := login(); resp.Code != 200 {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// capture the wrong-password response to compare failure bodies against
	wrongPw := performRequest(r, http.MethodPost, "/api/auth/login",
		jsonBody(t, map[string]string{"username": username, "password": "nope"}), "")
	if wrongPw.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", wrongPw.Code)
	}

	// a disabled account fails exactly like a wrong password
	if err := db.Model(&models.User{}).Where("username = ?", username).Update("enabled", false).Error; err != nil {
		t.Fatalf("disable user: %v", err)
	}
	if resp := login(); resp.Code != http.StatusUnauthorized || resp.Body.String() != wrongPw.Body.String() {
		t.Fatalf("disabled account: status=%d body=%s want 401 with body %s",
			resp.Code, resp.Body.String(), wrongPw.Body.String())
	}

	// same for a locked account
	if err := db.Model(&models.User{}).Where("username = ?", username).
		Updates(map[string]any{"enabled": true, "locked": true}).Error; err != nil {
		t.Fatalf("lock user: %v", err)
	}
	if resp := login(); resp.Code != http.StatusUnauthorized || resp.Body.String() != wrongPw.Body.String() {
		t.Fatalf("locked account: status=%d body=%s want 401 with body %s",
			resp.Code, resp.Body.String(), wrongPw.Body.String())
	}

	// unlocking restores access
	if err := db.Model(&models.User{}).Where("username = ?", username).Update("locked", false).Error; err != nil {
		t.Fatalf("unlock user: %v", err)
	}
	if resp := login(); resp.Code != 200 {
		t.Fatalf("login after unlock failed status=%d body=%s", resp.Code, resp.Body.String())
	}
}

func TestOwnershipScoping(t *testing.T) {
	r := setupTestServer(t)
	suffix := time.Now().UnixNano()

	login := func(username string) (string, uint) {
		resp := performRequest(r, http.MethodPost, "/api/users/register",
			jsonBody(t, map[string]string{"username": username, "password": "pass123"}), "")
		if resp.Code != 200 {
			t.Fatalf("register %s failed status=%d body=%s", username, resp.Code, resp.Body.String())
		}
		resp = performRequest(r, http.MethodPost, "/api/auth/login",
			jsonBody(t, map[string]string{"username": username, "password": "pass123"}), "")
		if resp.Code != 200 {
			t.Fatalf("login %s failed status=%d", username, resp.Code)
		}
		var pair struct {
			AccessToken string `json:"accessToken"`
		}
		_ = json.Unmarshal(resp.Body.Bytes(), &pair)

		resp = performRequest(r, http.MethodGet, "/api/folders", nil, pair.AccessToken)
		var folders []struct {
			ID uint `json:"id"`
		}
		_ = json.Unmarshal(resp.Body.Bytes(), &folders)
		if len(folders) == 0 {
			t.Fatalf("no folders for %s", username)
		}
		return pair.AccessToken, folders[0].ID
	}

	_, aliceFolder := login(fmt.Sprintf("alice-%d", suffix))
	bobToken, _ := login(fmt.Sprintf("bob-%d", suffix))

	// bob cannot read or delete alice's folder
	resp := performRequest(r, http.MethodGet, fmt.Sprintf("/api/folders/%d", aliceFolder), nil, bobToken)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 reading someone else's folder, got %d", resp.Code)
	}
	resp = performRequest(r, http.MethodDelete, fmt.Sprintf("/api/folders/%d?cascadeDelete=true", aliceFolder), nil, bobToken)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting someone else's folder, got %d", resp.Code)
	}
}
