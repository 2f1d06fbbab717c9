package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/domain/inventory"
)

func TestValidatePackageMultiple(t *testing.T) {
	tests := []struct {
		name        string
		quantity    int64
		packageSize int64
		wantErr     bool
	}{
		{"múltiplo exacto", 20, 10, false},
		{"un imballo", 10, 10, false},
		{"no múltiplo", 15, 10, true},
		{"cero", 0, 10, true},
		{"negativo", -10, 10, true},
		{"imballo 1 acepta todo", 7, 1, false},
		{"imballo 0 se trata como 1", 3, 0, false},
		{"imballo 25", 50, 25, false},
		{"imballo 25 con 30", 30, 25, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := inventory.ValidatePackageMultiple(tt.quantity, tt.packageSize)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrPackageMultiple)
		})
	}
}

func TestValidatePackageMultiple_MensajeIndicaMultiplo(t *testing.T) {
	err := inventory.ValidatePackageMultiple(15, 10)
	var pm *domain.PackageMultipleError
	require.True(t, errors.As(err, &pm))
	assert.Equal(t, int64(10), pm.PackageSize)
	assert.Contains(t, err.Error(), "múltiplo de 10")
}

func TestValidatePackageMultiple_TodoImballo(t *testing.T) {
	for size := int64(1); size <= 50; size++ {
		for q := int64(1); q <= 120; q++ {
			err := inventory.ValidatePackageMultiple(q, size)
			if q%size == 0 {
				assert.NoError(t, err, "q=%d size=%d", q, size)
			} else {
				assert.ErrorIs(t, err, domain.ErrPackageMultiple, "q=%d size=%d", q, size)
			}
		}
	}
}

func destructionAt(t0 time.Time) *entity.Movement {
	until := t0.Add(entity.DestructionReversalWindow)
	return &entity.Movement{ID: "m1", Kind: entity.MovementKindDestruction, Quantity: -20, CreatedAt: t0, ReversibleUntil: &until}
}

func TestCheckReversible(t *testing.T) {
	t0 := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

	assert.NoError(t, inventory.CheckReversible(destructionAt(t0), t0.Add(23*time.Hour+59*time.Minute)))
	assert.NoError(t, inventory.CheckReversible(destructionAt(t0), t0.Add(24*time.Hour)), "el límite es inclusivo")
	assert.ErrorIs(t, inventory.CheckReversible(destructionAt(t0), t0.Add(24*time.Hour+time.Minute)), domain.ErrNotReversible)

	reversed := destructionAt(t0)
	rid := "m2"
	reversed.ReversedBy = &rid
	assert.ErrorIs(t, inventory.CheckReversible(reversed, t0.Add(time.Hour)), domain.ErrAlreadyReversed)

	receipt := &entity.Movement{ID: "m2", Kind: entity.MovementKindReceipt, Quantity: 20}
	assert.ErrorIs(t, inventory.CheckReversible(receipt, t0), domain.ErrNotReversible)
}
