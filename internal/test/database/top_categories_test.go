package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"marketplace-backend/internal/database"
)

func TestTopCategoriesPipeline_LimitsAfterInactiveFilter(t *testing.T) {
	pipeline := database.TopCategoriesPipeline(10)

	limitIdx, inactiveFilterIdx := -1, -1
	for i, stage := range pipeline {
		require.NotEmpty(t, stage)
		switch stage[0].Key {
		case "$limit":
			limitIdx = i
			assert.Equal(t, int64(10), stage[0].Value)
		case "$match":
			if m, ok := stage[0].Value.(bson.M); ok {
				if _, ok := m["category.is_active"]; ok {
					inactiveFilterIdx = i
				}
			}
		}
	}

	require.NotEqual(t, -1, limitIdx)
	require.NotEqual(t, -1, inactiveFilterIdx)
	// A soft-deleted top category must not shrink the page: the cut-off
	// comes after inactive categories are dropped.
	assert.Greater(t, limitIdx, inactiveFilterIdx)
}
