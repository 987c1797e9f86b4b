package entities

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func comment(id int64, parent int64, minutes int) *Comment {
	c := &Comment{ID: id, ArticleID: 1, UserID: "uno", Content: "c"}
	if parent != 0 {
		c.ParentCommentID = &parent
	}
	c.CreatedAt = base.Add(time.Duration(minutes) * time.Minute)
	return c
}

// shape reduces a forest to nested IDs so failures are readable.
type shape struct {
	ID       int64
	Children []shape
}

func shapeOf(nodes []*CommentNode) []shape {
	out := []shape{}
	for _, n := range nodes {
		out = append(out, shape{ID: n.ID, Children: shapeOf(n.Children)})
	}
	return out
}

func TestBuildCommentTree(t *testing.T) {
	tests := []struct {
		name     string
		comments []*Comment
		want     []shape
	}{
		{
			name:     "empty",
			comments: nil,
			want:     []shape{},
		},
		{
			name: "roots newest first",
			comments: []*Comment{
				comment(1, 0, 0),
				comment(2, 0, 10),
				comment(3, 0, 5),
			},
			want: []shape{
				{ID: 2, Children: []shape{}},
				{ID: 3, Children: []shape{}},
				{ID: 1, Children: []shape{}},
			},
		},
		{
			name: "root ties broken by ascending id",
			comments: []*Comment{
				comment(7, 0, 0),
				comment(3, 0, 0),
				comment(5, 0, 0),
			},
			want: []shape{
				{ID: 3, Children: []shape{}},
				{ID: 5, Children: []shape{}},
				{ID: 7, Children: []shape{}},
			},
		},
		{
			name: "children oldest first with id tie break",
			comments: []*Comment{
				comment(1, 0, 0),
				comment(4, 1, 3),
				comment(2, 1, 1),
				comment(6, 1, 2),
				comment(5, 1, 2),
			},
			want: []shape{
				{ID: 1, Children: []shape{
					{ID: 2, Children: []shape{}},
					{ID: 5, Children: []shape{}},
					{ID: 6, Children: []shape{}},
					{ID: 4, Children: []shape{}},
				}},
			},
		},
		{
			name: "unlimited depth",
			comments: []*Comment{
				comment(1, 0, 0),
				comment(2, 1, 1),
				comment(3, 2, 2),
				comment(4, 3, 3),
				comment(5, 4, 4),
			},
			want: []shape{
				{ID: 1, Children: []shape{
					{ID: 2, Children: []shape{
						{ID: 3, Children: []shape{
							{ID: 4, Children: []shape{
								{ID: 5, Children: []shape{}},
							}},
						}},
					}},
				}},
			},
		},
		{
			name: "missing parent becomes root",
			comments: []*Comment{
				comment(1, 0, 0),
				comment(2, 99, 5),
				comment(3, 2, 6),
			},
			want: []shape{
				{ID: 2, Children: []shape{{ID: 3, Children: []shape{}}}},
				{ID: 1, Children: []shape{}},
			},
		},
		{
			name: "cycle dropped",
			comments: []*Comment{
				comment(1, 0, 0),
				comment(2, 3, 1),
				comment(3, 2, 2),
				comment(4, 4, 3),
			},
			want: []shape{
				{ID: 1, Children: []shape{}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shapeOf(BuildCommentTree(tt.comments))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BuildCommentTree() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildCommentTreeDoesNotMutateInput(t *testing.T) {
	in := []*Comment{
		comment(1, 0, 0),
		comment(2, 0, 10),
		comment(3, 1, 5),
	}
	before := []int64{in[0].ID, in[1].ID, in[2].ID}

	forest := BuildCommentTree(in)

	after := []int64{in[0].ID, in[1].ID, in[2].ID}
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("input order changed (-before +after):\n%s", diff)
	}
	if got := CountNodes(forest); got != 3 {
		t.Errorf("CountNodes() = %d, want 3", got)
	}
	if forest[1].Comment != in[0] {
		t.Error("tree nodes should reference the input comments")
	}
}
