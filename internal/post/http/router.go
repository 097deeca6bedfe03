package http

import (
	"net/http"
	"strings"
	"time"

	"blogspace/internal/common/config"
	commonerrors "blogspace/internal/common/errors"
	commonhttp "blogspace/internal/common/http"
	"blogspace/internal/common/jwtverify"
	"blogspace/internal/common/logger"
	"blogspace/internal/post/domain"
	"blogspace/internal/post/service"
)

type postRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required,max=10000"`
}

type authorResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// expandedPostResponse is the read shape: author joined to {id, username}.
type expandedPostResponse struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	Author     authorResponse `json:"author"`
	AuthorName string         `json:"authorName"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// ownPostResponse is the mutation shape: author as the raw owner id, the
// way the record is stored.
type ownPostResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Author     string    `json:"author"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Handler struct {
	posts  *service.PostService
	verify func(http.Handler) http.Handler
	log    *logger.Logger
}

// NewHandler wires the post routes. verify is the bearer-token middleware;
// it gates mutations only, reads stay public.
func NewHandler(posts *service.PostService, verify func(http.Handler) http.Handler, cfg config.Config, log *logger.Logger) http.Handler {
	h := &Handler{posts: posts, verify: verify, log: log}
	withTimeout := commonhttp.WithTimeout(cfg.RequestTimeout)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/posts", withTimeout(h.collection))
	mux.HandleFunc("/api/posts/", withTimeout(h.item))
	return mux
}

func (h *Handler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.authenticated(h.create)(w, r)
	default:
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) item(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/posts/")
	if id == "" || strings.Contains(id, "/") {
		commonhttp.HandleError(w, r, commonerrors.ErrPostNotFound, h.log)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, domain.ID(id))
	case http.MethodPut:
		h.authenticated(func(w http.ResponseWriter, r *http.Request) {
			h.update(w, r, domain.ID(id))
		})(w, r)
	case http.MethodDelete:
		h.authenticated(func(w http.ResponseWriter, r *http.Request) {
			h.remove(w, r, domain.ID(id))
		})(w, r)
	default:
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.verify(next).ServeHTTP(w, r)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	resp := make([]expandedPostResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, toExpandedResponse(p))
	}
	commonhttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, id domain.ID) {
	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toExpandedResponse(post))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing or invalid authorization")
		return
	}

	req, ok := h.decodePostRequest(w, r)
	if !ok {
		return
	}

	post, err := h.posts.Create(r.Context(), service.CreateInput{
		Title:   req.Title,
		Content: req.Content,
	}, service.Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, toOwnResponse(post))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, id domain.ID) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing or invalid authorization")
		return
	}

	req, ok := h.decodePostRequest(w, r)
	if !ok {
		return
	}

	post, err := h.posts.Update(r.Context(), id, service.UpdateInput{
		Title:   req.Title,
		Content: req.Content,
	}, claims.UserID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toOwnResponse(post))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request, id domain.ID) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing or invalid authorization")
		return
	}

	if err := h.posts.Delete(r.Context(), id, claims.UserID); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, commonhttp.MessageResponse{Message: "post deleted"})
}

func (h *Handler) decodePostRequest(w http.ResponseWriter, r *http.Request) (postRequest, bool) {
	var req postRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("post request failed: invalid json: %v", err)
		commonhttp.WriteError(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json")
		return postRequest{}, false
	}

	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return postRequest{}, false
	}

	return req, true
}

func toExpandedResponse(p domain.PostWithAuthor) expandedPostResponse {
	return expandedPostResponse{
		ID:      string(p.ID),
		Title:   p.Title,
		Content: p.Content,
		Author: authorResponse{
			ID:       p.Author.ID,
			Username: p.Author.Username,
		},
		AuthorName: p.AuthorName,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func toOwnResponse(p domain.Post) ownPostResponse {
	return ownPostResponse{
		ID:         string(p.ID),
		Title:      p.Title,
		Content:    p.Content,
		Author:     p.AuthorID,
		AuthorName: p.AuthorName,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
