package services

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace-backend/internal/models"
)

// BuildCategoryTree links a flat category list into a forest in two passes:
// first every category is indexed by id, then each one is attached to its
// parent's child list. Categories whose parent reference cannot be resolved
// are placed at the root. Parent references are not validated at write time,
// so a cyclic chain is possible; a category whose parent walk leads back to
// itself is re-rooted, which breaks the cycle instead of looping.
func BuildCategoryTree(categories []models.Category) []*models.CategoryNode {
	nodes := make(map[primitive.ObjectID]*models.CategoryNode, len(categories))
	byID := make(map[primitive.ObjectID]*models.Category, len(categories))
	for i := range categories {
		c := &categories[i]
		byID[c.ID] = c
		nodes[c.ID] = &models.CategoryNode{Category: *c, Children: []*models.CategoryNode{}}
	}

	roots := make([]*models.CategoryNode, 0, len(categories))
	for i := range categories {
		c := &categories[i]
		node := nodes[c.ID]

		if c.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*c.ParentID]
		if !ok || parentChainRevisits(c, byID) {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots
}

// parentChainRevisits walks the parent chain from c and reports whether the
// chain contains a cycle. Every member of a cyclic chain re-roots itself,
// which breaks the cycle deterministically.
func parentChainRevisits(c *models.Category, byID map[primitive.ObjectID]*models.Category) bool {
	seen := map[primitive.ObjectID]struct{}{c.ID: {}}
	cur := c.ParentID
	for cur != nil {
		if _, ok := seen[*cur]; ok {
			return true
		}
		seen[*cur] = struct{}{}
		next, ok := byID[*cur]
		if !ok {
			return false
		}
		cur = next.ParentID
	}
	return false
}
