package comments

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Repository = (*MemoryRepository)(nil)

func TestMemoryRepository(t *testing.T) {
	m := NewMemoryRepository()
	ctx := context.Background()

	c, err := m.Create(ctx, &models.Comment{ReviewID: 1, AuthorID: "a", Text: "first"})
	require.NoError(t, err)
	assert.False(t, c.PubDate.IsZero())

	c.Text = "edited"
	require.NoError(t, m.Update(ctx, c))
	got, err := m.Get(ctx, 1, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)

	require.ErrorIs(t, m.Delete(ctx, 2, c.ID), common.ErrorNotFound)
	require.NoError(t, m.Delete(ctx, 1, c.ID))

	list, err := m.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)
}
