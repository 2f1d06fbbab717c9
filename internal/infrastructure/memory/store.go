// Package memory implementa los puertos de persistencia en memoria, para desarrollo y tests.
// Las transacciones se serializan con un único lock de escritura y trabajan sobre una copia del
// estado, que reemplaza al estado compartido solo si la función termina sin error.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	articles      map[string]entity.Article
	byFingerprint map[string]string
	lots          map[string]entity.Lot
	lotOrder      []string
	movements     []entity.Movement
	movIndex      map[string]int
	priceChanges  []entity.LotPriceChange
}

func newState() *state {
	return &state{
		articles:      map[string]entity.Article{},
		byFingerprint: map[string]string{},
		lots:          map[string]entity.Lot{},
		movIndex:      map[string]int{},
	}
}

func (s *state) clone() *state {
	c := &state{
		articles:      make(map[string]entity.Article, len(s.articles)),
		byFingerprint: make(map[string]string, len(s.byFingerprint)),
		lots:          make(map[string]entity.Lot, len(s.lots)),
		lotOrder:      append([]string(nil), s.lotOrder...),
		movements:     append([]entity.Movement(nil), s.movements...),
		movIndex:      make(map[string]int, len(s.movIndex)),
		priceChanges:  append([]entity.LotPriceChange(nil), s.priceChanges...),
	}
	for k, v := range s.articles {
		c.articles[k] = v
	}
	for k, v := range s.byFingerprint {
		c.byFingerprint[k] = v
	}
	for k, v := range s.lots {
		c.lots[k] = v
	}
	for k, v := range s.movIndex {
		c.movIndex[k] = v
	}
	return c
}

// Store estado compartido del almacenamiento en memoria.
type Store struct {
	mu sync.RWMutex
	st *state
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// access da acceso al estado: directo dentro de una tx (el lock ya está tomado), con lock fuera de ella.
type access struct {
	store *Store
	tx    *state
}

func (a access) read(fn func(s *state) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()
	return fn(a.store.st)
}

func (a access) write(fn func(s *state) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	next := a.store.st.clone()
	if err := fn(next); err != nil {
		return err
	}
	a.store.st = next
	return nil
}

// Articles repositorio de artículos fuera de transacción.
func (s *Store) Articles() repository.ArticleRepository {
	return &ArticleRepository{acc: access{store: s}}
}

// Lots repositorio de lotes fuera de transacción.
func (s *Store) Lots() repository.LotRepository { return &LotRepository{acc: access{store: s}} }

// Movements repositorio de movimientos fuera de transacción.
func (s *Store) Movements() repository.MovementRepository {
	return &MovementRepository{acc: access{store: s}}
}

// Run ejecuta fn con repos atados a una copia del estado. Las transacciones no se solapan:
// el lock se mantiene hasta el commit, lo que da a GetForUpdate la semántica de bloqueo de fila.
func (s *Store) Run(ctx context.Context, fn func(
	articleRepo repository.ArticleRepository,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.st.clone()
	acc := access{store: s, tx: tx}
	if err := fn(&ArticleRepository{acc: acc}, &LotRepository{acc: acc}, &MovementRepository{acc: acc}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = tx
	return nil
}
