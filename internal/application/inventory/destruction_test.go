package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
)

func TestDestroy_RespetaImballo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.receiveLot(t, roseKey(), 100)

	_, err := f.destruction.Destroy(ctx, inventory.DestroyInput{LotID: lot.ID, Quantity: 15, Reason: "marcio"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPackageMultiple)
	var pm *domain.PackageMultipleError
	require.True(t, errors.As(err, &pm))
	assert.Equal(t, int64(10), pm.PackageSize)
	assert.Contains(t, err.Error(), "múltiplo de 10")
	assert.Equal(t, int64(100), f.remaining(t, lot.ID))

	res, err := f.destruction.Destroy(ctx, inventory.DestroyInput{LotID: lot.ID, Quantity: 20, Reason: "marcio"})
	require.NoError(t, err)
	assert.Equal(t, int64(-20), res.Movement.Quantity)
	assert.Equal(t, entity.MovementKindDestruction, res.Movement.Kind)
	assert.Equal(t, "17", res.LossValue.String())
	assert.Equal(t, f.clock.t.Add(24*time.Hour), res.ReversibleUntil)
	assert.Equal(t, int64(80), f.remaining(t, lot.ID))
}

func TestDestroy_StockInsuficiente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.receiveLot(t, roseKey(), 30)

	_, err := f.destruction.Destroy(ctx, inventory.DestroyInput{LotID: lot.ID, Quantity: 40})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(30), f.remaining(t, lot.ID))

	movs, err := f.ledger.ListMovementsByLot(ctx, lot.ID, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Len(t, movs, 1)
}

func TestDestroy_LoteInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.destruction.Destroy(context.Background(), inventory.DestroyInput{LotID: "nope", Quantity: 10})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReverse_DentroDelPlazo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.receiveLot(t, roseKey(), 100)
	res, err := f.destruction.Destroy(ctx, inventory.DestroyInput{LotID: lot.ID, Quantity: 20, Reason: "marcio"})
	require.NoError(t, err)

	f.clock.Advance(23*time.Hour + 59*time.Minute)
	comp, err := f.destruction.Reverse(ctx, res.Movement.ID, "u-2")
	require.NoError(t, err)
	assert.Equal(t, int64(20), comp.Quantity)
	require.NotNil(t, comp.Reverses)
	assert.Equal(t, res.Movement.ID, *comp.Reverses)
	assert.Equal(t, int64(100), f.remaining(t, lot.ID))

	original, err := f.store.Movements().GetByID(ctx, res.Movement.ID)
	require.NoError(t, err)
	require.NotNil(t, original.ReversedBy)
	assert.Equal(t, comp.ID, *original.ReversedBy)

	_, err = f.destruction.Reverse(ctx, res.Movement.ID, "u-2")
	assert.ErrorIs(t, err, domain.ErrAlreadyReversed)
	assert.Equal(t, int64(100), f.remaining(t, lot.ID))
}

func TestReverse_PlazoVencido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.receiveLot(t, roseKey(), 100)
	res, err := f.destruction.Destroy(ctx, inventory.DestroyInput{LotID: lot.ID, Quantity: 20})
	require.NoError(t, err)

	f.clock.Advance(24*time.Hour + time.Minute)
	_, err = f.destruction.Reverse(ctx, res.Movement.ID, "u-2")
	assert.ErrorIs(t, err, domain.ErrNotReversible)
	assert.Equal(t, int64(80), f.remaining(t, lot.ID))
}

func TestReverse_SoloDestrucciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.receiveLot(t, roseKey(), 100)
	mov, err := f.ledger.Issue(ctx, inventory.IssueInput{LotID: lot.ID, Quantity: 5})
	require.NoError(t, err)

	_, err = f.destruction.Reverse(ctx, mov.ID, "u-2")
	assert.ErrorIs(t, err, domain.ErrNotReversible)

	_, err = f.destruction.Reverse(ctx, "nope", "u-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListReversible(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.receiveLot(t, roseKey(), 100)

	first, err := f.destruction.Destroy(ctx, inventory.DestroyInput{LotID: lot.ID, Quantity: 10})
	require.NoError(t, err)
	f.clock.Advance(12 * time.Hour)
	second, err := f.destruction.Destroy(ctx, inventory.DestroyInput{LotID: lot.ID, Quantity: 10})
	require.NoError(t, err)

	list, err := f.destruction.ListReversible(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 12*time.Hour, list[0].Remaining)

	f.clock.Advance(13 * time.Hour)
	list, err = f.destruction.ListReversible(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.Movement.ID, list[0].Movement.ID)

	_, err = f.destruction.Reverse(ctx, first.Movement.ID, "u")
	assert.ErrorIs(t, err, domain.ErrNotReversible)
	_, err = f.destruction.Reverse(ctx, second.Movement.ID, "u")
	require.NoError(t, err)

	list, err = f.destruction.ListReversible(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
