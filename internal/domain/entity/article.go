package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// ArticleKey las 8 características que identifican un artículo de magazzino.
// Dos claves son el mismo artículo si y solo si coinciden los 8 campos (tras Normalize).
type ArticleKey struct {
	Group   string `json:"group"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Origin  string `json:"origin"`
	Photo   string `json:"photo"`
	Package int64  `json:"package"` // unidades por imballo
	Height  string `json:"height"`
	Quality string `json:"quality"`
}

// Normalize quita espacios sobrantes de los campos de texto.
func (k ArticleKey) Normalize() ArticleKey {
	clean := func(s string) string { return strings.Join(strings.Fields(s), " ") }
	return ArticleKey{
		Group:   clean(k.Group),
		Name:    clean(k.Name),
		Color:   clean(k.Color),
		Origin:  clean(k.Origin),
		Photo:   strings.TrimSpace(k.Photo),
		Package: k.Package,
		Height:  clean(k.Height),
		Quality: clean(k.Quality),
	}
}

// Fingerprint hash determinista de la clave normalizada; columna única en almacenamiento.
func (k ArticleKey) Fingerprint() string {
	n := k.Normalize()
	h := sha256.New()
	for _, f := range []string{n.Group, n.Name, n.Color, n.Origin, n.Photo, strconv.FormatInt(n.Package, 10), n.Height, n.Quality} {
		h.Write([]byte(strconv.Itoa(len(f))))
		h.Write([]byte{':'})
		h.Write([]byte(f))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Article identidad canónica de una ArticleKey (find-or-create).
type Article struct {
	ID          string
	Key         ArticleKey
	Fingerprint string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
