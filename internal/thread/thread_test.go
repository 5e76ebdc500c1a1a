package thread

import (
	"testing"
	"time"

	"moodmate/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comment(parent *uuid.UUID, offset int) models.Comment {
	return models.Comment{
		ID:        uuid.New(),
		ParentID:  parent,
		Content:   "c",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, offset, 0, time.UTC),
	}
}

func TestBuild_PartitionsRepliesUnderTheirRoot(t *testing.T) {
	t.Parallel()

	r1 := comment(nil, 0)
	r2 := comment(nil, 1)
	a := comment(&r1.ID, 2)
	b := comment(&r2.ID, 3)
	c := comment(&r1.ID, 4)

	tree := Build([]models.Comment{r1, r2, a, b, c})

	require.Len(t, tree.Roots, 2)
	assert.Equal(t, r1.ID, tree.Roots[0].Comment.ID)
	assert.Equal(t, r2.ID, tree.Roots[1].Comment.ID)

	require.Len(t, tree.Roots[0].Replies, 2)
	assert.Equal(t, a.ID, tree.Roots[0].Replies[0].Comment.ID)
	assert.Equal(t, c.ID, tree.Roots[0].Replies[1].Comment.ID)
	require.Len(t, tree.Roots[1].Replies, 1)
	assert.Equal(t, b.ID, tree.Roots[1].Replies[0].Comment.ID)

	assert.Empty(t, tree.Orphans)
	assert.Equal(t, 1, tree.MaxDepth)
	assert.Equal(t, 5, tree.Len())
}

func TestBuild_EveryCommentAppearsExactlyOnce(t *testing.T) {
	t.Parallel()

	var comments []models.Comment
	var roots []uuid.UUID
	for i := 0; i < 20; i++ {
		if i%4 == 0 || len(roots) == 0 {
			c := comment(nil, i)
			roots = append(roots, c.ID)
			comments = append(comments, c)
			continue
		}
		parent := roots[i%len(roots)]
		comments = append(comments, comment(&parent, i))
	}

	tree := Build(comments)

	seen := map[uuid.UUID]int{}
	Walk(tree, func(n *Node) { seen[n.Comment.ID]++ })
	require.Len(t, seen, len(comments))
	for _, c := range comments {
		assert.Equal(t, 1, seen[c.ID])
	}
	for _, r := range tree.Roots {
		assert.Nil(t, r.Comment.ParentID)
		for _, reply := range r.Replies {
			assert.Equal(t, r.Comment.ID, *reply.Comment.ParentID)
		}
	}
}

func TestBuild_ExposesDeepNesting(t *testing.T) {
	t.Parallel()

	root := comment(nil, 0)
	reply := comment(&root.ID, 1)
	grandchild := comment(&reply.ID, 2)

	tree := Build([]models.Comment{root, reply, grandchild})

	require.Len(t, tree.Roots, 1)
	node := tree.Roots[0].Replies[0].Replies[0]
	assert.Equal(t, grandchild.ID, node.Comment.ID)
	assert.Equal(t, 2, node.Depth)
	assert.True(t, node.IsReply)
	assert.False(t, tree.Roots[0].IsReply)
	assert.Equal(t, 2, tree.MaxDepth)
}

func TestBuild_KeepsOrphans(t *testing.T) {
	t.Parallel()

	missing := uuid.New()
	root := comment(nil, 0)
	orphan := comment(&missing, 1)
	orphanReply := comment(&orphan.ID, 2)

	tree := Build([]models.Comment{root, orphan, orphanReply})

	require.Len(t, tree.Roots, 1)
	require.Len(t, tree.Orphans, 1)
	assert.Equal(t, orphan.ID, tree.Orphans[0].Comment.ID)
	require.Len(t, tree.Orphans[0].Replies, 1)
	assert.Equal(t, 3, tree.Len())
}

func TestBuild_Empty(t *testing.T) {
	t.Parallel()

	tree := Build(nil)
	assert.Empty(t, tree.Roots)
	assert.Empty(t, tree.Orphans)
	assert.Equal(t, 0, tree.Len())
	assert.Equal(t, 0, tree.MaxDepth)
}

func TestFlatten_DisplayOrder(t *testing.T) {
	t.Parallel()

	r1 := comment(nil, 0)
	r2 := comment(nil, 1)
	a := comment(&r1.ID, 2)

	flat := Flatten(Build([]models.Comment{r1, r2, a}))
	require.Len(t, flat, 3)
	assert.Equal(t, []uuid.UUID{r1.ID, a.ID, r2.ID}, []uuid.UUID{flat[0].ID, flat[1].ID, flat[2].ID})
}

func TestDescendants(t *testing.T) {
	t.Parallel()

	root := comment(nil, 0)
	a := comment(&root.ID, 1)
	b := comment(&a.ID, 2)
	other := comment(nil, 3)

	ids := Descendants([]models.Comment{root, a, b, other}, root.ID)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, ids)
	assert.Empty(t, Descendants([]models.Comment{root, a, b, other}, other.ID))
}

func TestBuild_BreaksParentCycles(t *testing.T) {
	t.Parallel()

	a := comment(nil, 0)
	b := comment(&a.ID, 1)
	a.ParentID = &b.ID

	tree := Build([]models.Comment{a, b})

	assert.Empty(t, tree.Roots)
	require.Len(t, tree.Orphans, 1)
	assert.Equal(t, 2, tree.Len())
}
