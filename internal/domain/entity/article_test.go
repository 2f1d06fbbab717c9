package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

func TestArticleKey_FingerprintIgnoraEspacios(t *testing.T) {
	a := entity.ArticleKey{Group: "Rose", Name: "Red  Naomi", Color: "rosso", Origin: "NL", Package: 20, Height: "60", Quality: "A1"}
	b := entity.ArticleKey{Group: " Rose", Name: "Red Naomi ", Color: "rosso", Origin: "NL", Package: 20, Height: "60", Quality: "A1"}
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestArticleKey_FingerprintDistingueCampos(t *testing.T) {
	base := entity.ArticleKey{Group: "Rose", Name: "Naomi", Color: "rosso", Origin: "NL", Package: 20, Height: "60", Quality: "A1"}
	variants := []entity.ArticleKey{base, base, base, base, base, base, base, base}
	variants[0].Group = "Tulipani"
	variants[1].Name = "Avalanche"
	variants[2].Color = "bianco"
	variants[3].Origin = "KE"
	variants[4].Photo = "naomi.jpg"
	variants[5].Package = 25
	variants[6].Height = "70"
	variants[7].Quality = "A2"

	for i, v := range variants {
		assert.NotEqual(t, base.Fingerprint(), v.Fingerprint(), "variante %d", i)
	}
}

func TestArticleKey_FingerprintSinAmbiguedadEntreCampos(t *testing.T) {
	a := entity.ArticleKey{Group: "ab", Name: "c"}
	b := entity.ArticleKey{Group: "a", Name: "bc"}
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
