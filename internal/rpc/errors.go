package rpc

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/authn"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/authz"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/directory"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/session"
)

// fail maps service errors onto HTTP status codes. Unrecognized errors are
// logged and answered as opaque 500s.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, authz.ErrAlreadyAssigned),
		errors.Is(err, directory.ErrRoleExists),
		errors.Is(err, directory.ErrPermissionExists):
		status = fiber.StatusConflict

	case errors.Is(err, authz.ErrAgentNotFound),
		errors.Is(err, authz.ErrAssignmentNotFound),
		errors.Is(err, directory.ErrRoleNotFound),
		errors.Is(err, directory.ErrPermissionNotFound),
		errors.Is(err, session.ErrAgentNotFound),
		errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, authn.ErrAgentNotFound):
		status = fiber.StatusNotFound

	case errors.Is(err, session.ErrTimeoutOutOfRange),
		errors.Is(err, session.ErrExtensionNotPositive),
		errors.Is(err, authn.ErrTwoFactorNotEnabled):
		status = fiber.StatusBadRequest

	case errors.Is(err, authn.ErrInvalidCredentials),
		errors.Is(err, authn.ErrInvalidTwoFactorCode):
		status = fiber.StatusUnauthorized

	case errors.Is(err, authn.ErrAgentInactive),
		errors.Is(err, session.ErrAgentInactive):
		status = fiber.StatusForbidden

	case errors.Is(err, authn.ErrAccountLocked):
		status = fiber.StatusLocked
	}

	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("rpc request failed")
		return c.Status(status).JSON(fiber.Map{"error": "internal error"})
	}

	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// parse decodes and validates a JSON request body.
func (s *Service) parse(c *fiber.Ctx, in any) error {
	if err := c.BodyParser(in); err != nil {
		return err
	}

	return s.validator.Struct(in)
}

// badRequest answers a malformed or invalid request body.
func badRequest(c *fiber.Ctx, err error) error {
	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verr.Error()})
	}

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
}
