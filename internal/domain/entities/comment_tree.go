package entities

import (
	"cmp"
	"slices"
)

// CommentNode is a comment with its direct replies.
type CommentNode struct {
	*Comment
	Children []*CommentNode `json:"children"`
}

// BuildCommentTree arranges the flat comment list of one article into a
// forest. Top-level comments come newest first; replies under any node come
// oldest first so a thread reads top to bottom. Ties are broken by ID.
//
// A comment whose parent is missing from the list becomes a top-level
// comment. Comments that can only be reached through a parent cycle are
// left out.
func BuildCommentTree(comments []*Comment) []*CommentNode {
	byID := make(map[int64]*Comment, len(comments))
	for _, c := range comments {
		if c != nil {
			byID[c.ID] = c
		}
	}

	var roots []*Comment
	children := make(map[int64][]*Comment)
	for _, c := range byID {
		if c.ParentCommentID == nil {
			roots = append(roots, c)
			continue
		}
		if _, ok := byID[*c.ParentCommentID]; !ok {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentCommentID] = append(children[*c.ParentCommentID], c)
	}

	slices.SortFunc(roots, newestFirst)
	for id := range children {
		slices.SortFunc(children[id], oldestFirst)
	}

	visited := make(map[int64]bool, len(byID))
	var build func(c *Comment) *CommentNode
	build = func(c *Comment) *CommentNode {
		visited[c.ID] = true
		node := &CommentNode{Comment: c, Children: []*CommentNode{}}
		for _, child := range children[c.ID] {
			if visited[child.ID] {
				continue
			}
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	forest := make([]*CommentNode, 0, len(roots))
	for _, r := range roots {
		forest = append(forest, build(r))
	}
	return forest
}

// CountNodes returns the number of comments in a forest.
func CountNodes(nodes []*CommentNode) int {
	n := 0
	for _, node := range nodes {
		n += 1 + CountNodes(node.Children)
	}
	return n
}

func newestFirst(a, b *Comment) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func oldestFirst(a, b *Comment) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
