package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/devilmonastery/projectboard/internal/domain/entities"
	"github.com/devilmonastery/projectboard/internal/domain/repositories"
	"github.com/devilmonastery/projectboard/internal/pkg/pagination"
)

// pageInfo is the paging envelope of list responses
type pageInfo struct {
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

type listResponse[T any] struct {
	Content []T      `json:"content"`
	Page    pageInfo `json:"page"`
}

func newListResponse[T any](p pagination.Page[T]) listResponse[T] {
	return listResponse[T]{
		Content: p.Content,
		Page: pageInfo{
			Number:        p.Number,
			Size:          p.Size,
			TotalElements: p.TotalElements,
			TotalPages:    p.TotalPages(),
		},
	}
}

type apiError struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (h *Handler) writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	msg := http.StatusText(status)
	if status == http.StatusInternalServerError {
		h.log.Error("api request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	} else {
		msg = err.Error()
	}
	h.writeJSON(w, status, apiError{Status: status, Error: msg})
}

// APIMethodNotAllowed answers write methods on read-only resources
func (h *Handler) APIMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusMethodNotAllowed, apiError{
		Status: http.StatusMethodNotAllowed,
		Error:  "the API is read-only",
	})
}

// APIArticles lists articles filtered by title, content, hashtag and author
func (h *Handler) APIArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repositories.ArticleFilter{
		TitleContains:     q.Get("title"),
		ContentContains:   q.Get("content"),
		HashtagContains:   q.Get("hashtag"),
		CreatedByContains: q.Get("createdBy"),
	}

	page, err := h.articles.ListArticles(r.Context(), filter, pagination.ParsePageable(q, h.pageSize))
	if err != nil {
		h.writeAPIError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newListResponse(page))
}

// APIArticle returns one article with its hashtags
func (h *Handler) APIArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeAPIError(w, r, err)
		return
	}
	article, err := h.articles.GetArticle(r.Context(), id)
	if err != nil {
		h.writeAPIError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, article)
}

// APIArticleComments returns the comment tree of an article
func (h *Handler) APIArticleComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeAPIError(w, r, err)
		return
	}
	if _, err := h.articles.GetArticle(r.Context(), id); err != nil {
		h.writeAPIError(w, r, err)
		return
	}
	tree, err := h.comments.GetCommentTree(r.Context(), id)
	if err != nil {
		h.writeAPIError(w, r, err)
		return
	}
	if tree == nil {
		tree = []*entities.CommentNode{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"content": tree})
}

// APIComment returns one comment
func (h *Handler) APIComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeAPIError(w, r, err)
		return
	}
	comment, err := h.comments.GetComment(r.Context(), id)
	if err != nil {
		h.writeAPIError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, comment)
}

// APIHashtags returns every hashtag name
func (h *Handler) APIHashtags(w http.ResponseWriter, r *http.Request) {
	names, err := h.hashtags.GetHashtags(r.Context())
	if err != nil {
		h.writeAPIError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"content": names})
}

// APIUser returns a user account without credentials
func (h *Handler) APIUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.SearchUser(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		h.writeAPIError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}
