package entities

import (
	"github.com/gosimple/slug"
)

// Article is a board post. Hashtags are derived from Content whenever the
// article is saved.
type Article struct {
	ID       int64      `json:"id" db:"id"`
	UserID   string     `json:"userId" db:"user_id"`
	Title    string     `json:"title" db:"title"`
	Content  string     `json:"content" db:"content"`
	Author   *User      `json:"author,omitempty" db:"-"`
	Hashtags []*Hashtag `json:"hashtags,omitempty" db:"-"`
	AuditFields
}

// Slug is the cosmetic URL segment used in article permalinks.
func (a *Article) Slug() string {
	s := slug.Make(a.Title)
	if s == "" {
		return "article"
	}
	return s
}

// AuthorName returns the author's display name, falling back to the user ID.
func (a *Article) AuthorName() string {
	if a.Author != nil {
		return a.Author.DisplayName()
	}
	return a.UserID
}

// HashtagNames lists the names of the attached hashtags.
func (a *Article) HashtagNames() []string {
	names := make([]string, 0, len(a.Hashtags))
	for _, h := range a.Hashtags {
		names = append(names, h.Name)
	}
	return names
}

// IsOwnedBy reports whether userID wrote the article.
func (a *Article) IsOwnedBy(userID string) bool {
	return userID != "" && a.UserID == userID
}

// ArticleWithComments is an article together with its threaded comments.
type ArticleWithComments struct {
	Article  *Article       `json:"article"`
	Comments []*CommentNode `json:"comments"`
}
