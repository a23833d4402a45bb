// Package apperr classifies request failures so the app-level error handler
// can translate them to HTTP responses without handlers touching status codes.
package apperr

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Kind int

const (
	Validation Kind = iota + 1
	Auth
	NotFound
	Storage
	Persistence
)

func (k Kind) Status() int {
	switch k {
	case Validation:
		return fiber.StatusBadRequest
	case Auth:
		return fiber.StatusUnauthorized
	case NotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// Error carries a client-safe message alongside the underlying cause. Only
// Msg ever reaches the caller; the cause stays in the server log.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Handler returns the fiber ErrorHandler translating classified errors to
// JSON responses. Server-side failures get a correlation id so a caller can
// reference the log line; in production the cause text is never echoed.
func Handler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ae *Error
		if errors.As(err, &ae) {
			status := ae.Kind.Status()
			if status < fiber.StatusInternalServerError {
				return c.Status(status).JSON(fiber.Map{"error": ae.Msg})
			}
			return serverError(c, production, ae.Msg, err)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			if fe.Code < fiber.StatusInternalServerError {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			return serverError(c, production, "internal server error", err)
		}

		return serverError(c, production, "internal server error", err)
	}
}

func serverError(c *fiber.Ctx, production bool, msg string, err error) error {
	id := uuid.New().String()
	log.Printf("request failed [%s]: %v", id, err)

	body := fiber.Map{"error": msg, "id": id}
	if !production {
		body["detail"] = err.Error()
	}
	return c.Status(fiber.StatusInternalServerError).JSON(body)
}
