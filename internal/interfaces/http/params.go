package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/magazzino-api/internal/domain"
)

// parseID exige un UUID; así un id mal formado es un 400 y no un error de cast en PostgreSQL.
func parseID(field, raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%s %q no es un UUID: %w", field, raw, domain.ErrInvalidInput)
	}
	return id.String(), nil
}

func idParam(c *fiber.Ctx) (string, error) {
	return parseID("id", c.Params("id"))
}
