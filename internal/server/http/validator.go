package http

import (
	"fmt"
	"reflect"
	"strings"

	"chessboard/internal/core"
	"chessboard/internal/wire"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// validationMiddleware parses and validates POST bodies by path and stores
// the result for the handler
func validationMiddleware(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Next()
	}

	var requestType any
	switch c.Path() {
	case "/start_game":
		requestType = &wire.StartGameRequest{}
	case "/legal_moves":
		requestType = &wire.LegalMovesRequest{}
	case "/move":
		requestType = &wire.MoveRequest{}
	case "/bot_move", "/restart", "/undo":
		requestType = &wire.GameRequest{}
	default:
		return c.Next()
	}

	// start_game accepts an empty body
	if len(c.Body()) > 0 {
		if err := c.BodyParser(requestType); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(wire.ErrorResponse{
				Error:   "invalid request body",
				Code:    core.ErrCodeInvalid,
				Details: err.Error(),
			})
		}
	}

	if errs := validate.Struct(requestType); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(wire.ErrorResponse{
			Error:   "validation failed",
			Code:    core.ErrCodeInvalid,
			Details: describe(errs),
		})
	}

	c.Locals("validatedBody", requestType)
	return c.Next()
}

func describe(errs error) string {
	verrs, ok := errs.(validator.ValidationErrors)
	if !ok {
		return errs.Error()
	}
	var details strings.Builder
	for _, err := range verrs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch err.Tag() {
		case "required":
			fmt.Fprintf(&details, "%s is required", err.Field())
		case "oneof":
			fmt.Fprintf(&details, "%s must be one of [%s]", err.Field(), err.Param())
		case "min":
			fmt.Fprintf(&details, "%s must be at least %s", err.Field(), err.Param())
		case "max":
			if err.Kind() == reflect.String {
				fmt.Fprintf(&details, "%s must be at most %s characters", err.Field(), err.Param())
			} else {
				fmt.Fprintf(&details, "%s must be at most %s", err.Field(), err.Param())
			}
		default:
			fmt.Fprintf(&details, "%s failed %s validation", err.Field(), err.Tag())
		}
	}
	return details.String()
}

// body returns the request stored by validationMiddleware
func body[T any](c *fiber.Ctx) (*T, error) {
	req, ok := c.Locals("validatedBody").(*T)
	if !ok {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "validation data missing")
	}
	return req, nil
}
