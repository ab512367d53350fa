package reviews

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

	assert.Nil(t, m.AverageScore(1))

	a, err := m.Create(ctx, &models.Review{TitleID: 1, AuthorID: "a", Text: "ok", Score: 6})
	require.NoError(t, err)
	_, err = m.Create(ctx, &models.Review{TitleID: 1, AuthorID: "b", Text: "good", Score: 9})
	require.NoError(t, err)
	_, err = m.Create(ctx, &models.Review{TitleID: 1, AuthorID: "a", Text: "again", Score: 1})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	require.NotNil(t, m.AverageScore(1))
	assert.Equal(t, 7.5, *m.AverageScore(1))

	a.Score = 10
	require.NoError(t, m.Update(ctx, a))
	assert.Equal(t, 9.5, *m.AverageScore(1))

	_, err = m.Get(ctx, 2, a.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, m.Delete(ctx, 1, a.ID))
	list, err := m.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
