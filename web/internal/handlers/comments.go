package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/devilmonastery/projectboard/internal/domain/entities"
	"github.com/devilmonastery/projectboard/internal/domain/services"
)

func commentAnchor(articleID, commentID int64) string {
	return fmt.Sprintf("/articles/%d#comment-%d", articleID, commentID)
}

// CreateComment posts a comment or, with parentCommentId, a reply
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, services.ErrInvalidInput)
		return
	}

	articleID, err := strconv.ParseInt(r.PostFormValue("articleId"), 10, 64)
	if err != nil {
		h.renderError(w, r, services.ErrInvalidInput)
		return
	}

	comment := &entities.Comment{
		ArticleID: articleID,
		UserID:    currentUserID(r),
		Content:   r.PostFormValue("content"),
	}
	if raw := strings.TrimSpace(r.PostFormValue("parentCommentId")); raw != "" {
		parentID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.renderError(w, r, services.ErrInvalidParent)
			return
		}
		comment.ParentCommentID = &parentID
	}

	saved, err := h.comments.SaveComment(r.Context(), comment)
	if errors.Is(err, services.ErrInvalidInput) {
		_ = h.sessionManager.AddFlash(r, w, "Comment not saved: "+err.Error())
		http.Redirect(w, r, fmt.Sprintf("/articles/%d", articleID), http.StatusSeeOther)
		return
	}
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.log.Debug("comment created",
		slog.Int64("comment_id", saved.ID),
		slog.Int64("article_id", saved.ArticleID))
	http.Redirect(w, r, commentAnchor(saved.ArticleID, saved.ID), http.StatusSeeOther)
}

// UpdateComment edits a comment. Only its author may do so.
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, services.ErrInvalidInput)
		return
	}

	updated, err := h.comments.UpdateComment(r.Context(), id, currentUserID(r), r.PostFormValue("content"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, commentAnchor(updated.ArticleID, updated.ID), http.StatusSeeOther)
}

// DeleteComment removes a comment and the replies below it
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	articleID, err := h.comments.DeleteComment(r.Context(), id, currentUserID(r))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/articles/%d", articleID), http.StatusSeeOther)
}
