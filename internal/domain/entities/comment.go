package entities

// MaxCommentLength matches the article_comments.content column.
const MaxCommentLength = 500

// Comment is a reply to an article or, when ParentCommentID is set, to
// another comment on the same article.
type Comment struct {
	ID              int64  `json:"id" db:"id"`
	ArticleID       int64  `json:"articleId" db:"article_id"`
	UserID          string `json:"userId" db:"user_id"`
	ParentCommentID *int64 `json:"parentCommentId,omitempty" db:"parent_comment_id"`
	Content         string `json:"content" db:"content"`
	Author          *User  `json:"author,omitempty" db:"-"`
	AuditFields
}

// IsReply returns true if the comment answers another comment
func (c *Comment) IsReply() bool {
	return c.ParentCommentID != nil
}

// AuthorName returns the author's display name, falling back to the user ID.
func (c *Comment) AuthorName() string {
	if c.Author != nil {
		return c.Author.DisplayName()
	}
	return c.UserID
}

// IsOwnedBy reports whether userID wrote the comment.
func (c *Comment) IsOwnedBy(userID string) bool {
	return userID != "" && c.UserID == userID
}
