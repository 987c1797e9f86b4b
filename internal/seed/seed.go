// Package seed loads demo data into a board from a YAML fixture file.
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/devilmonastery/projectboard/internal/domain/entities"
	"github.com/devilmonastery/projectboard/internal/domain/services"
)

// Fixture is the top-level document of a seed file
type Fixture struct {
	Users    []User    `yaml:"users"`
	Articles []Article `yaml:"articles"`
}

// User is a local account to create
type User struct {
	UserID   string `yaml:"userId"`
	Password string `yaml:"password"`
	Email    string `yaml:"email"`
	Nickname string `yaml:"nickname"`
	Memo     string `yaml:"memo"`
}

// Article is a post with its comment thread
type Article struct {
	UserID   string    `yaml:"userId"`
	Title    string    `yaml:"title"`
	Content  string    `yaml:"content"`
	Comments []Comment `yaml:"comments"`
}

// Comment may carry nested replies
type Comment struct {
	UserID  string    `yaml:"userId"`
	Content string    `yaml:"content"`
	Replies []Comment `yaml:"replies"`
}

// Result counts what Apply created
type Result struct {
	Users    int
	Skipped  int
	Articles int
	Comments int
}

// Parse decodes a fixture. Unknown fields are rejected so typos in a
// fixture do not silently drop data.
func Parse(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &f, nil
}

// LoadFile parses the fixture at path
func LoadFile(path string) (*Fixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file)
}

// Seeder writes fixtures through the service layer, so hashtags and
// comment threads are built exactly as they are for web requests.
type Seeder struct {
	users    *services.UserService
	articles *services.ArticleService
	comments *services.CommentService
	log      *slog.Logger
}

// New creates a Seeder
func New(users *services.UserService, articles *services.ArticleService, comments *services.CommentService) *Seeder {
	return &Seeder{
		users:    users,
		articles: articles,
		comments: comments,
		log:      slog.Default().With(slog.String("component", "seed")),
	}
}

// Apply creates the fixture's users, articles and comments. Users that
// already exist are skipped so a fixture can be applied to a live board.
func (s *Seeder) Apply(ctx context.Context, f *Fixture) (Result, error) {
	var res Result

	for _, u := range f.Users {
		_, err := s.users.SaveUser(ctx, u.UserID, u.Password, u.Email, u.Nickname, u.Memo)
		switch {
		case err == nil:
			res.Users++
		case services.IsUserExists(err):
			s.log.Info("user exists, skipping", slog.String("user_id", u.UserID))
			res.Skipped++
		default:
			return res, fmt.Errorf("user %q: %w", u.UserID, err)
		}
	}

	for i, a := range f.Articles {
		saved, err := s.articles.SaveArticle(ctx, &entities.Article{
			UserID:  a.UserID,
			Title:   a.Title,
			Content: a.Content,
		})
		if err != nil {
			return res, fmt.Errorf("article %d (%q): %w", i, a.Title, err)
		}
		res.Articles++

		n, err := s.applyComments(ctx, saved.ID, nil, a.Comments)
		res.Comments += n
		if err != nil {
			return res, fmt.Errorf("article %d (%q): %w", i, a.Title, err)
		}
	}

	return res, nil
}

func (s *Seeder) applyComments(ctx context.Context, articleID int64, parentID *int64, comments []Comment) (int, error) {
	created := 0
	for _, c := range comments {
		saved, err := s.comments.SaveComment(ctx, &entities.Comment{
			ArticleID:       articleID,
			UserID:          c.UserID,
			ParentCommentID: parentID,
			Content:         c.Content,
		})
		if err != nil {
			return created, fmt.Errorf("comment by %q: %w", c.UserID, err)
		}
		created++

		n, err := s.applyComments(ctx, articleID, &saved.ID, c.Replies)
		created += n
		if err != nil {
			return created, err
		}
	}
	return created, nil
}
