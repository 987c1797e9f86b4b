package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/devilmonastery/projectboard/web/internal/middleware"
)

// Router builds the page and API routes. The caller wraps the result with
// AuthMiddleware.LoadUser so handlers see the logged-in user.
func (h *Handler) Router(am *middleware.AuthMiddleware, staticPath string) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Metrics)

	if staticPath != "" {
		router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(staticPath))))
	}
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	protected := func(fn http.HandlerFunc) http.Handler {
		return am.RequireAuth(fn)
	}

	router.Handle("/", http.RedirectHandler("/articles", http.StatusFound)).Methods(http.MethodGet)

	// Articles
	router.HandleFunc("/articles", h.Index).Methods(http.MethodGet)
	router.HandleFunc("/articles/detail", h.ArticleByIndex).Methods(http.MethodGet)
	router.HandleFunc("/articles/search-hashtag", h.SearchHashtag).Methods(http.MethodGet)
	router.Handle("/articles/form", protected(h.NewArticleForm)).Methods(http.MethodGet)
	router.Handle("/articles/form", protected(h.CreateArticle)).Methods(http.MethodPost)
	router.HandleFunc("/articles/{id:[0-9]+}", h.Article).Methods(http.MethodGet)
	router.Handle("/articles/{id:[0-9]+}/form", protected(h.EditArticleForm)).Methods(http.MethodGet)
	router.Handle("/articles/{id:[0-9]+}/form", protected(h.UpdateArticle)).Methods(http.MethodPost)
	router.Handle("/articles/{id:[0-9]+}/delete", protected(h.DeleteArticle)).Methods(http.MethodPost)
	router.HandleFunc("/articles/{id:[0-9]+}/{slug}", h.Article).Methods(http.MethodGet)

	// Comments
	router.Handle("/comments/new", protected(h.CreateComment)).Methods(http.MethodPost)
	router.Handle("/comments/{id:[0-9]+}/update", protected(h.UpdateComment)).Methods(http.MethodPost)
	router.Handle("/comments/{id:[0-9]+}/delete", protected(h.DeleteComment)).Methods(http.MethodPost)

	// Accounts
	router.HandleFunc("/login", h.Login).Methods(http.MethodGet)
	router.HandleFunc("/login", h.LoginSubmit).Methods(http.MethodPost)
	router.HandleFunc("/signup", h.Signup).Methods(http.MethodGet)
	router.HandleFunc("/signup", h.SignupSubmit).Methods(http.MethodPost)
	router.HandleFunc("/logout", h.Logout).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/oauth2/kakao", h.KakaoLogin).Methods(http.MethodGet)
	router.HandleFunc("/oauth2/kakao/callback", h.KakaoCallback).Methods(http.MethodGet)

	// Read-only JSON API
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/articles", h.APIArticles).Methods(http.MethodGet)
	api.HandleFunc("/articles/{id:[0-9]+}", h.APIArticle).Methods(http.MethodGet)
	api.HandleFunc("/articles/{id:[0-9]+}/comments", h.APIArticleComments).Methods(http.MethodGet)
	api.HandleFunc("/comments/{id:[0-9]+}", h.APIComment).Methods(http.MethodGet)
	api.HandleFunc("/hashtags", h.APIHashtags).Methods(http.MethodGet)
	api.HandleFunc("/users/{userId}", h.APIUser).Methods(http.MethodGet)
	api.PathPrefix("/").HandlerFunc(h.APIMethodNotAllowed).
		Methods(http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete)

	return router
}
