package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// Adaptadores comunes entre Fiber y los casos de uso CRUD. El caso de uso hace
// permiso, validación y persistencia; el handler solo parsea y serializa.

func getOne[R any](c *fiber.Ctx, fn func(ctx context.Context, actor *entity.User, id string) (*R, error)) error {
	out, err := fn(c.UserContext(), CurrentUser(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func createOne[I, R any](c *fiber.Ctx, fn func(ctx context.Context, actor *entity.User, in I) (*R, error)) error {
	var in I
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := fn(c.UserContext(), CurrentUser(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func updateOne[I, R any](c *fiber.Ctx, fn func(ctx context.Context, actor *entity.User, id string, in I) (*R, error)) error {
	var in I
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := fn(c.UserContext(), CurrentUser(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func deleteOne(c *fiber.Ctx, fn func(ctx context.Context, actor *entity.User, id string) error) error {
	if err := fn(c.UserContext(), CurrentUser(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// pageFrom lee limit/offset; los topes los aplica el repositorio.
func pageFrom(c *fiber.Ctx) repository.Page {
	return repository.Page{Limit: c.QueryInt("limit", repository.DefaultLimit), Offset: c.QueryInt("offset", 0)}
}
