package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/devilmonastery/projectboard/internal/domain/entities"
	"github.com/devilmonastery/projectboard/internal/domain/services"
	"github.com/devilmonastery/projectboard/internal/pkg/logger"
	"github.com/devilmonastery/projectboard/internal/pkg/pagination"
)

// articleRow is one line of an article listing
type articleRow struct {
	*entities.Article
	Link string
}

// articleRows links each article to its positional detail view when the
// listing uses the default page size, and to its permalink otherwise.
func (h *Handler) articleRows(page pagination.Page[*entities.Article]) []articleRow {
	rows := make([]articleRow, len(page.Content))
	for i, a := range page.Content {
		link := articleURL(a)
		if page.Size == h.pageSize {
			link = pagination.DetailURI(page.Number*page.Size+i, page.Size)
		}
		rows[i] = articleRow{Article: a, Link: link}
	}
	return rows
}

// listQuery is the query string that page links carry forward
func listQuery(q url.Values, keys ...string) url.Values {
	out := url.Values{}
	for _, k := range keys {
		if v := q.Get(k); v != "" {
			out.Set(k, v)
		}
	}
	return out
}

// Index lists articles with the search box and pagination bar
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageable := pagination.ParsePageable(q, h.pageSize)

	searchType := entities.SearchTitle
	if raw := q.Get("searchType"); raw != "" {
		st, err := entities.ParseSearchType(raw)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		searchType = st
	}
	searchValue := strings.TrimSpace(q.Get("searchValue"))

	page, err := h.articles.SearchArticles(r.Context(), searchType, searchValue, pageable)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	data := h.newTemplateData(w, r)
	data["Page"] = page
	data["Articles"] = h.articleRows(page)
	data["BarNumbers"] = pagination.BarNumbers(page.Number, page.TotalPages())
	data["SearchTypes"] = entities.SearchTypes()
	data["SearchType"] = searchType
	data["SearchValue"] = searchValue
	data["Query"] = listQuery(q, "searchType", "searchValue", "size")
	data["CurrentPage"] = "articles"

	h.renderTemplate(w, "articles.html", data)
}

// renderArticle renders the detail page. prev and next are empty on the
// permalink page, which has no position in a listing.
func (h *Handler) renderArticle(w http.ResponseWriter, r *http.Request, id int64, prev, next string) {
	article, err := h.articles.GetArticleWithComments(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	total, err := h.articles.GetArticleCount(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	data := h.newTemplateData(w, r)
	data["Article"] = article.Article
	data["Comments"] = article.Comments
	data["CommentCount"] = entities.CountNodes(article.Comments)
	data["TotalCount"] = total
	data["CanEdit"] = article.Article.IsOwnedBy(currentUserID(r))
	data["PreviousURI"] = prev
	data["NextURI"] = next
	data["CurrentPage"] = "articles"

	h.renderTemplate(w, "article.html", data)
}

// Article shows one article by ID. The slug segment is cosmetic.
func (h *Handler) Article(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderArticle(w, r, id, "", "")
}

// ArticleByIndex shows the articleIndex-th article of a listing page with
// links to its neighbours.
func (h *Handler) ArticleByIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	// Detail links never carry a size
	pageable := pagination.ParsePageable(url.Values{"page": {q.Get("page")}}, h.pageSize)

	index, err := strconv.Atoi(q.Get("articleIndex"))
	if err != nil || index < 0 {
		h.renderError(w, r, services.ErrInvalidInput)
		return
	}

	article, total, err := h.articles.GetArticleByPageIndex(r.Context(), index, pageable)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.renderArticle(w, r, article.ID,
		pagination.PreviousURI(index, pageable),
		pagination.NextURI(index, pageable, total))
}

// SearchHashtag lists every hashtag and the articles tagged with the
// selected one
func (h *Handler) SearchHashtag(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageable := pagination.ParsePageable(q, h.pageSize)
	name := strings.TrimSpace(q.Get("searchValue"))

	page, err := h.articles.SearchArticlesViaHashtag(r.Context(), name, pageable)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	hashtags, err := h.hashtags.GetHashtags(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	data := h.newTemplateData(w, r)
	data["Hashtags"] = hashtags
	data["SearchValue"] = name
	data["Page"] = page
	data["Articles"] = h.articleRows(page)
	data["BarNumbers"] = pagination.BarNumbers(page.Number, page.TotalPages())
	data["Query"] = listQuery(q, "searchValue", "size")
	data["CurrentPage"] = "hashtags"

	h.renderTemplate(w, "search_hashtag.html", data)
}

// renderForm renders the create/update form
func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, article *entities.Article, formErr string) {
	data := h.newTemplateData(w, r)
	data["Article"] = article
	data["Editing"] = article.ID != 0
	data["Error"] = formErr
	data["CurrentPage"] = "articles"
	h.renderTemplateStatus(w, status, "form.html", data)
}

// NewArticleForm shows an empty article form
func (h *Handler) NewArticleForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, &entities.Article{}, "")
}

// CreateArticle saves a new article
func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, services.ErrInvalidInput)
		return
	}

	draft := &entities.Article{
		UserID:  currentUserID(r),
		Title:   r.PostFormValue("title"),
		Content: r.PostFormValue("content"),
	}

	saved, err := h.articles.SaveArticle(r.Context(), draft)
	if errors.Is(err, services.ErrInvalidInput) {
		h.renderForm(w, r, http.StatusBadRequest, draft, err.Error())
		return
	}
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	logger.WithUser(logger.WithArticle(h.log, saved.ID), saved.UserID).Info("article created")
	_ = h.sessionManager.AddFlash(r, w, "Article posted.")
	http.Redirect(w, r, articleURL(saved), http.StatusSeeOther)
}

// EditArticleForm shows the form for an existing article. Only the author
// may open it.
func (h *Handler) EditArticleForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	article, err := h.articles.GetArticle(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if !article.IsOwnedBy(currentUserID(r)) {
		h.renderError(w, r, services.ErrForbidden)
		return
	}
	h.renderForm(w, r, http.StatusOK, article, "")
}

// UpdateArticle saves changes to an article
func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, services.ErrInvalidInput)
		return
	}

	title := r.PostFormValue("title")
	content := r.PostFormValue("content")
	updated, err := h.articles.UpdateArticle(r.Context(), id, currentUserID(r), title, content)
	if errors.Is(err, services.ErrInvalidInput) {
		h.renderForm(w, r, http.StatusBadRequest, &entities.Article{ID: id, Title: title, Content: content}, err.Error())
		return
	}
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	_ = h.sessionManager.AddFlash(r, w, "Article updated.")
	http.Redirect(w, r, articleURL(updated), http.StatusSeeOther)
}

// DeleteArticle removes an article together with its comments
func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if err := h.articles.DeleteArticle(r.Context(), id, currentUserID(r)); err != nil {
		h.renderError(w, r, err)
		return
	}

	logger.WithUser(logger.WithArticle(h.log, id), currentUserID(r)).Info("article deleted")
	_ = h.sessionManager.AddFlash(r, w, "Article deleted.")
	http.Redirect(w, r, "/articles", http.StatusSeeOther)
}
