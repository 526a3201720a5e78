package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/services"
)

func category(name string, parent *primitive.ObjectID) models.Category {
	return models.Category{ID: primitive.NewObjectID(), Name: name, ParentID: parent}
}

func TestBuildCategoryTree_NestsChildrenUnderParents(t *testing.T) {
	root := category("birds", nil)
	child := category("parrots", &root.ID)
	grandchild := category("macaws", &child.ID)

	tree := services.BuildCategoryTree([]models.Category{root, child, grandchild})

	require.Len(t, tree, 1)
	assert.Equal(t, "birds", tree[0].Name)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "parrots", tree[0].Children[0].Name)
	require.Len(t, tree[0].Children[0].Children, 1)
	assert.Equal(t, "macaws", tree[0].Children[0].Children[0].Name)
}

func TestBuildCategoryTree_OrphanBecomesRoot(t *testing.T) {
	missing := primitive.NewObjectID()
	orphan := category("cages", &missing)

	tree := services.BuildCategoryTree([]models.Category{orphan})

	require.Len(t, tree, 1)
	assert.Equal(t, "cages", tree[0].Name)
	assert.Empty(t, tree[0].Children)
}

func TestBuildCategoryTree_SelfParentIsReRooted(t *testing.T) {
	c := category("loop", nil)
	c.ParentID = &c.ID

	tree := services.BuildCategoryTree([]models.Category{c})

	require.Len(t, tree, 1)
	assert.Equal(t, "loop", tree[0].Name)
}

func TestBuildCategoryTree_TwoNodeCycleDoesNotHang(t *testing.T) {
	a := category("a", nil)
	b := category("b", &a.ID)
	a.ParentID = &b.ID

	tree := services.BuildCategoryTree([]models.Category{a, b})

	// Both members of the cycle end up at the root; nothing is lost.
	require.Len(t, tree, 2)
	names := []string{tree[0].Name, tree[1].Name}
	assert.ElementsMatch(t, []string{"a", "b"}, names)
}

func TestBuildCategoryTree_EmptyInput(t *testing.T) {
	tree := services.BuildCategoryTree(nil)
	assert.Empty(t, tree)
}
