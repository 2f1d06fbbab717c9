package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

func TestResolve_FindOrCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, created, err := f.resolver.Resolve(ctx, roseKey())
	require.NoError(t, err)
	assert.True(t, created)

	spaced := roseKey()
	spaced.Name = "  Red   Naomi "
	b, created, err := f.resolver.Resolve(ctx, spaced)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, a.ID, b.ID)

	other := roseKey()
	other.Height = "70"
	c, created, err := f.resolver.Resolve(ctx, other)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestResolve_ConcurrenteUnSoloArticulo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ids := make([]string, 20)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, _, err := f.resolver.Resolve(ctx, roseKey())
			if err == nil {
				ids[i] = a.ID
			}
		}(i)
	}
	wg.Wait()
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestResolve_ClaveInvalida(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.resolver.Resolve(context.Background(), entity.ArticleKey{Group: "Rose"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	key := roseKey()
	key.Package = -1
	_, _, err = f.resolver.Resolve(context.Background(), key)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCorrectArticle_InformaLotesDesalineados(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	withStock := f.receiveLot(t, roseKey(), 40)
	empty := f.receiveLot(t, roseKey(), 10)
	_, err := f.ledger.Issue(ctx, inventory.IssueInput{LotID: empty.ID, Quantity: 10})
	require.NoError(t, err)

	pkg := int64(25)
	res, err := f.resolver.CorrectArticle(ctx, inventory.ArticleCorrectionInput{ArticleID: withStock.ArticleID, Package: &pkg})
	require.NoError(t, err)
	assert.Equal(t, int64(25), res.Article.Key.Package)
	assert.Equal(t, withStock.ArticleID, res.Article.ID)
	require.Len(t, res.LotsToRevalidate, 1)
	assert.Equal(t, withStock.ID, res.LotsToRevalidate[0].Lot.ID)

	// el lote conserva el imballo con el que fue recibido
	lot, err := f.store.Lots().GetByID(ctx, withStock.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), lot.PackageSize)
	_, err = f.destruction.Destroy(ctx, inventory.DestroyInput{LotID: withStock.ID, Quantity: 10})
	require.NoError(t, err)

	// la clave vieja ya no resuelve al artículo corregido
	a, created, err := f.resolver.Resolve(ctx, roseKey())
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, withStock.ArticleID, a.ID)
}

func TestCorrectArticle_ColisionConOtroArticulo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, _, err := f.resolver.Resolve(ctx, roseKey())
	require.NoError(t, err)
	other := roseKey()
	other.Quality = "A2"
	_, _, err = f.resolver.Resolve(ctx, other)
	require.NoError(t, err)

	q := "A2"
	_, err = f.resolver.CorrectArticle(ctx, inventory.ArticleCorrectionInput{ArticleID: a.ID, Quality: &q})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.resolver.CorrectArticle(ctx, inventory.ArticleCorrectionInput{ArticleID: a.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.resolver.CorrectArticle(ctx, inventory.ArticleCorrectionInput{ArticleID: "nope", Quality: &q})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
