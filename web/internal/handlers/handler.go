package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/devilmonastery/projectboard/internal/auth"
	"github.com/devilmonastery/projectboard/internal/auth/kakao"
	"github.com/devilmonastery/projectboard/internal/domain/entities"
	"github.com/devilmonastery/projectboard/internal/domain/services"
	"github.com/devilmonastery/projectboard/web/internal/render"
	"github.com/devilmonastery/projectboard/web/internal/session"
)

// Deps are the collaborators shared by every handler
type Deps struct {
	Articles *services.ArticleService
	Comments *services.CommentService
	Hashtags *services.HashtagService
	Users    *services.UserService

	Sessions  *session.Manager
	Templates *render.TemplateSet

	// Kakao is nil when Kakao login is not configured
	Kakao *kakao.Client

	PageSize int
}

// Handler holds dependencies for all web handlers
type Handler struct {
	articles       *services.ArticleService
	comments       *services.CommentService
	hashtags       *services.HashtagService
	users          *services.UserService
	sessionManager *session.Manager
	templates      *render.TemplateSet
	kakao          *kakao.Client
	pageSize       int
	log            *slog.Logger
}

// New creates a new handler with dependencies
func New(deps Deps, logger *slog.Logger) *Handler {
	pageSize := deps.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Handler{
		articles:       deps.Articles,
		comments:       deps.Comments,
		hashtags:       deps.Hashtags,
		users:          deps.Users,
		sessionManager: deps.Sessions,
		templates:      deps.Templates,
		kakao:          deps.Kakao,
		pageSize:       pageSize,
		log:            logger.With(slog.String("component", "web_handler")),
	}
}

// currentUser returns the logged-in user or nil
func currentUser(r *http.Request) *auth.UserContext {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		return nil
	}
	return user
}

// currentUserID is "" for anonymous requests
func currentUserID(r *http.Request) string {
	if user := currentUser(r); user != nil {
		return user.UserID
	}
	return ""
}

// newTemplateData creates a new template data map with standard fields populated
// Callers can add page-specific fields to the returned map
func (h *Handler) newTemplateData(w http.ResponseWriter, r *http.Request) map[string]interface{} {
	return map[string]interface{}{
		"User":         currentUser(r),
		"UserID":       currentUserID(r),
		"Flashes":      h.sessionManager.Flashes(r, w),
		"KakaoEnabled": h.kakao != nil,
		"CurrentPage":  "",
	}
}

// renderTemplate renders a template with data
func (h *Handler) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	h.renderTemplateStatus(w, http.StatusOK, name, data)
}

func (h *Handler) renderTemplateStatus(w http.ResponseWriter, status int, name string, data interface{}) {
	if h.templates == nil {
		http.Error(w, "Templates not loaded", http.StatusInternalServerError)
		return
	}
	h.log.Debug("rendering template", slog.String("template", name))

	// Render into a buffer so a template error can still produce a 500
	var buf strings.Builder
	if err := h.templates.Execute(&buf, name, data); err != nil {
		h.log.Error("template rendering failed",
			slog.String("template", name),
			slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

// errorStatus maps service errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case services.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidParent),
		errors.Is(err, entities.ErrUnknownSearchType):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// renderError renders the error page for err
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	message := http.StatusText(status)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	} else {
		message = err.Error()
	}

	data := h.newTemplateData(w, r)
	data["Status"] = status
	data["Message"] = message
	h.renderTemplateStatus(w, status, "error.html", data)
}

// pathID parses a numeric mux variable
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, services.ErrInvalidInput
	}
	return id, nil
}

// safeRedirect only allows local paths so the login redirect cannot be used
// to bounce users to another site.
func safeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/articles"
	}
	return target
}

// articleURL is the canonical permalink of an article
func articleURL(a *entities.Article) string {
	return "/articles/" + strconv.FormatInt(a.ID, 10) + "/" + a.Slug()
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
