package inventory

import (
	"time"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// ValidatePackageMultiple exige que la cantidad a destruir sea un múltiplo positivo del imballo.
// Un imballo < 1 se trata como 1 (lotes sin imballo definido).
func ValidatePackageMultiple(quantity, packageSize int64) error {
	if packageSize < 1 {
		packageSize = 1
	}
	if quantity <= 0 || quantity%packageSize != 0 {
		return &domain.PackageMultipleError{PackageSize: packageSize, Quantity: quantity}
	}
	return nil
}

// CheckReversible decide si la destrucción m puede anularse en el instante now.
// El plazo es inclusivo: now == ReversibleUntil todavía es anulable.
func CheckReversible(m *entity.Movement, now time.Time) error {
	if m == nil || !m.IsDestruction() || m.ReversibleUntil == nil {
		return domain.ErrNotReversible
	}
	if m.IsReversed() {
		return domain.ErrAlreadyReversed
	}
	if now.After(*m.ReversibleUntil) {
		return domain.ErrNotReversible
	}
	return nil
}
