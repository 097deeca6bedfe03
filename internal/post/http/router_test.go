package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"blogspace/internal/common/config"
	"blogspace/internal/common/jwtverify"
	"blogspace/internal/common/logger"
	"blogspace/internal/post/domain"
	postrepo "blogspace/internal/post/repository"
	"blogspace/internal/post/service"
)

const testJWTSecret = "test-secret-key-0123456789abcdef"

// memoryPostRepo backs the handler tests with a map so the full request
// path runs against real service and middleware code.
type memoryPostRepo struct {
	posts     map[domain.ID]domain.Post
	usernames map[string]string
}

func newMemoryPostRepo() *memoryPostRepo {
	return &memoryPostRepo{
		posts: make(map[domain.ID]domain.Post),
		usernames: map[string]string{
			"user-1": "alice",
			"user-2": "bob",
		},
	}
}

func (m *memoryPostRepo) expand(p domain.Post) domain.PostWithAuthor {
	return domain.PostWithAuthor{
		Post: p,
		Author: domain.AuthorRef{
			ID:       p.AuthorID,
			Username: m.usernames[p.AuthorID],
		},
	}
}

func (m *memoryPostRepo) List(ctx context.Context) ([]domain.PostWithAuthor, error) {
	out := make([]domain.PostWithAuthor, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, m.expand(p))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memoryPostRepo) FindByID(ctx context.Context, id domain.ID) (domain.PostWithAuthor, error) {
	p, ok := m.posts[id]
	if !ok {
		return domain.PostWithAuthor{}, postrepo.ErrPostNotFound
	}
	return m.expand(p), nil
}

func (m *memoryPostRepo) Create(ctx context.Context, post domain.Post) error {
	m.posts[post.ID] = post
	return nil
}

func (m *memoryPostRepo) Update(ctx context.Context, post domain.Post) error {
	existing, ok := m.posts[post.ID]
	if !ok {
		return postrepo.ErrPostNotFound
	}
	existing.Title = post.Title
	existing.Content = post.Content
	existing.UpdatedAt = post.UpdatedAt
	m.posts[post.ID] = existing
	return nil
}

func (m *memoryPostRepo) Delete(ctx context.Context, id domain.ID) error {
	if _, ok := m.posts[id]; !ok {
		return postrepo.ErrPostNotFound
	}
	delete(m.posts, id)
	return nil
}

type seqIDGenerator struct {
	next int
}

func (g *seqIDGenerator) NewID() (string, error) {
	g.next++
	return "id-" + string(rune('0'+g.next)), nil
}

func setupPostHandler(t *testing.T) (http.Handler, *memoryPostRepo) {
	_ = t
	repo := newMemoryPostRepo()
	log, _ := logger.New("", "test", "info")
	svc := service.NewPostService(repo, &seqIDGenerator{}, nil, log)

	cfg := config.Config{RequestTimeout: 5 * time.Second}
	verify := jwtverify.Middleware(testJWTSecret, log)

	return NewHandler(svc, verify, cfg, log), repo
}

func mintToken(t *testing.T, userID, username string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": userID,
		"usr": username,
		"jti": "jti-" + userID,
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}

func doRequest(handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestPostHandler_List_EmptyIsArray(t *testing.T) {
	handler, _ := setupPostHandler(t)

	rec := doRequest(handler, http.MethodGet, "/api/posts", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "[") {
		t.Errorf("expected a JSON array for the empty list, got %q", rec.Body.String())
	}
}

func TestPostHandler_Create_RequiresAuth(t *testing.T) {
	handler, _ := setupPostHandler(t)

	rec := doRequest(handler, http.MethodPost, "/api/posts", "", map[string]string{
		"title":   "Hello",
		"content": "World",
	})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	decodeBody(t, rec, &envelope)
	if envelope.Code != "UNAUTHENTICATED" {
		t.Errorf("expected UNAUTHENTICATED code, got %s", envelope.Code)
	}
}

func TestPostHandler_Create_BadToken(t *testing.T) {
	handler, _ := setupPostHandler(t)

	rec := doRequest(handler, http.MethodPost, "/api/posts", "not-a-token", map[string]string{
		"title":   "Hello",
		"content": "World",
	})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestPostHandler_CreateReadUpdateDelete_Flow(t *testing.T) {
	handler, _ := setupPostHandler(t)
	aliceToken := mintToken(t, "user-1", "alice")
	bobToken := mintToken(t, "user-2", "bob")

	// alice creates a post; the mutation shape carries the raw author id
	rec := doRequest(handler, http.MethodPost, "/api/posts", aliceToken, map[string]string{
		"title":   "Hello",
		"content": "First post",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		Author     string `json:"author"`
		AuthorName string `json:"authorName"`
	}
	decodeBody(t, rec, &created)
	if created.Author != "user-1" {
		t.Errorf("expected raw author id user-1, got %q", created.Author)
	}
	if created.AuthorName != "alice" {
		t.Errorf("expected author name alice, got %q", created.AuthorName)
	}

	// reads expand the author to {id, username}
	rec = doRequest(handler, http.MethodGet, "/api/posts/"+created.ID, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var fetched struct {
		Author struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"author"`
	}
	decodeBody(t, rec, &fetched)
	if fetched.Author.ID != "user-1" || fetched.Author.Username != "alice" {
		t.Errorf("expected expanded author, got %+v", fetched.Author)
	}

	// bob cannot update alice's post
	rec = doRequest(handler, http.MethodPut, "/api/posts/"+created.ID, bobToken, map[string]string{
		"title":   "Hijacked",
		"content": "by bob",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	// alice can
	rec = doRequest(handler, http.MethodPut, "/api/posts/"+created.ID, aliceToken, map[string]string{
		"title":   "Hello again",
		"content": "Edited",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated struct {
		Title  string `json:"title"`
		Author string `json:"author"`
	}
	decodeBody(t, rec, &updated)
	if updated.Title != "Hello again" {
		t.Errorf("expected updated title, got %q", updated.Title)
	}

	// bob cannot delete it either
	rec = doRequest(handler, http.MethodDelete, "/api/posts/"+created.ID, bobToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	// alice deletes it
	rec = doRequest(handler, http.MethodDelete, "/api/posts/"+created.ID, aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var msg struct {
		Message string `json:"message"`
	}
	decodeBody(t, rec, &msg)
	if msg.Message != "post deleted" {
		t.Errorf("expected deletion message, got %q", msg.Message)
	}

	// the post is gone
	rec = doRequest(handler, http.MethodGet, "/api/posts/"+created.ID, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after deletion, got %d", rec.Code)
	}
}

func TestPostHandler_Get_UnknownID(t *testing.T) {
	handler, _ := setupPostHandler(t)

	rec := doRequest(handler, http.MethodGet, "/api/posts/nope", "", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var envelope struct {
		Code string `json:"code"`
	}
	decodeBody(t, rec, &envelope)
	if envelope.Code != "POST_NOT_FOUND" {
		t.Errorf("expected POST_NOT_FOUND code, got %s", envelope.Code)
	}
}

func TestPostHandler_Update_UnknownID_BeforeOwnership(t *testing.T) {
	handler, _ := setupPostHandler(t)
	token := mintToken(t, "user-2", "bob")

	rec := doRequest(handler, http.MethodPut, "/api/posts/nope", token, map[string]string{
		"title":   "t",
		"content": "c",
	})

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown id, got %d", rec.Code)
	}
}

func TestPostHandler_NestedPath_NotFound(t *testing.T) {
	handler, _ := setupPostHandler(t)

	rec := doRequest(handler, http.MethodGet, "/api/posts/a/b", "", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a nested path, got %d", rec.Code)
	}
}

func TestPostHandler_Create_InvalidJSON(t *testing.T) {
	handler, _ := setupPostHandler(t)
	token := mintToken(t, "user-1", "alice")

	req := httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPostHandler_Create_ValidationFailed(t *testing.T) {
	handler, _ := setupPostHandler(t)
	token := mintToken(t, "user-1", "alice")

	testCases := []struct {
		name string
		body map[string]string
	}{
		{"missing title", map[string]string{"content": "c"}},
		{"missing content", map[string]string{"title": "t"}},
		{"title too long", map[string]string{"title": strings.Repeat("x", 201), "content": "c"}},
		{"content too long", map[string]string{"title": "t", "content": strings.Repeat("x", 10001)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(handler, http.MethodPost, "/api/posts", token, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestPostHandler_List_NewestFirst(t *testing.T) {
	handler, repo := setupPostHandler(t)

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.posts["old"] = domain.Post{ID: "old", Title: "Old", AuthorID: "user-1", CreatedAt: base}
	repo.posts["new"] = domain.Post{ID: "new", Title: "New", AuthorID: "user-1", CreatedAt: base.Add(time.Hour)}

	rec := doRequest(handler, http.MethodGet, "/api/posts", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var posts []struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &posts)
	if len(posts) != 2 || posts[0].ID != "new" || posts[1].ID != "old" {
		t.Errorf("expected newest first, got %v", posts)
	}
}

func TestPostHandler_MethodNotAllowed(t *testing.T) {
	handler, _ := setupPostHandler(t)

	rec := doRequest(handler, http.MethodPatch, "/api/posts", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 on the collection, got %d", rec.Code)
	}

	rec = doRequest(handler, http.MethodPatch, "/api/posts/some-id", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 on an item, got %d", rec.Code)
	}
}
