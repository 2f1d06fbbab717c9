package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrInvalidQuantity   = errors.New("cantidad inválida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrPackageMultiple   = errors.New("cantidad no múltiplo del imballo")
	ErrNotReversible     = errors.New("movimiento no anulable")
	ErrAlreadyReversed   = errors.New("destrucción ya anulada")
	ErrStorage           = errors.New("error de almacenamiento")
)

// PackageMultipleError indica que una destrucción no respeta el imballo del lote.
// errors.Is(err, ErrPackageMultiple) es true.
type PackageMultipleError struct {
	PackageSize int64
	Quantity    int64
}

func (e *PackageMultipleError) Error() string {
	return fmt.Sprintf("la cantidad %d debe ser múltiplo de %d", e.Quantity, e.PackageSize)
}

func (e *PackageMultipleError) Is(target error) bool { return target == ErrPackageMultiple }

// StorageError envuelve un fallo de persistencia. La causa original queda accesible con errors.As.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError construye el error; devuelve nil si err es nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }
