package repomanager

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepositoryManager_SharesStores(t *testing.T) {
	var m RepositoryManager = NewInMemoryRepositoryManager(nil)
	ctx := context.Background()

	require.NoError(t, m.RunMigrations(ctx, nil))

	u, created, err := m.Users(nil).GetOrCreate(ctx, "alice", "alice@example.com")
	require.NoError(t, err)
	assert.True(t, created)

	got, err := m.Users(nil).GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserName)

	title := &models.Title{Name: "Alien", Year: 1979}
	require.NoError(t, m.Catalog(nil).CreateTitle(ctx, title))
	_, err = m.Reviews(nil).Create(ctx, &models.Review{TitleID: title.ID, AuthorID: u.ID, Text: "t", Score: 7})
	require.NoError(t, err)

	tt, err := m.Catalog(nil).GetTitle(ctx, title.ID)
	require.NoError(t, err)
	require.NotNil(t, tt.Rating)
	assert.Equal(t, 7.0, *tt.Rating)

	require.NoError(t, m.CodeCache(nil).Put(ctx, "alice", "code", time.Minute))
}

func TestInMemoryRepositoryManager_DeletesCascade(t *testing.T) {
	ctx := context.Background()

	// seed builds a title with one review by alice carrying a comment by bob.
	seed := func(t *testing.T) (*InMemoryRepositoryManager, *models.User, *models.User, *models.Title, *models.Review, *models.Comment) {
		t.Helper()
		m := NewInMemoryRepositoryManager(nil)
		alice, _, err := m.Users(nil).GetOrCreate(ctx, "alice", "alice@example.com")
		require.NoError(t, err)
		bob, _, err := m.Users(nil).GetOrCreate(ctx, "bob", "bob@example.com")
		require.NoError(t, err)

		title := &models.Title{Name: "Alien", Year: 1979}
		require.NoError(t, m.Catalog(nil).CreateTitle(ctx, title))
		rv, err := m.Reviews(nil).Create(ctx, &models.Review{TitleID: title.ID, AuthorID: alice.ID, Text: "t", Score: 7})
		require.NoError(t, err)
		c, err := m.Comments(nil).Create(ctx, &models.Comment{ReviewID: rv.ID, AuthorID: bob.ID, Text: "agreed"})
		require.NoError(t, err)
		return m, alice, bob, title, rv, c
	}

	t.Run("review takes its comments", func(t *testing.T) {
		m, _, _, title, rv, c := seed(t)
		require.NoError(t, m.Reviews(nil).Delete(ctx, title.ID, rv.ID))

		_, err := m.Comments(nil).Get(ctx, rv.ID, c.ID)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("title takes reviews and comments", func(t *testing.T) {
		m, _, _, title, rv, c := seed(t)
		require.NoError(t, m.Catalog(nil).DeleteTitle(ctx, title.ID))

		_, err := m.Reviews(nil).Get(ctx, title.ID, rv.ID)
		assert.ErrorIs(t, err, common.ErrorNotFound)
		_, err = m.Comments(nil).Get(ctx, rv.ID, c.ID)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("user takes own reviews and comments", func(t *testing.T) {
		m, alice, bob, title, rv, c := seed(t)
		require.NoError(t, m.Users(nil).Delete(ctx, bob.ID))

		_, err := m.Comments(nil).Get(ctx, rv.ID, c.ID)
		assert.ErrorIs(t, err, common.ErrorNotFound)
		_, err = m.Reviews(nil).Get(ctx, title.ID, rv.ID)
		require.NoError(t, err)

		require.NoError(t, m.Users(nil).Delete(ctx, alice.ID))
		list, err := m.Reviews(nil).List(ctx, title.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
