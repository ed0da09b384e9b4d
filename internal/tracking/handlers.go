package tracking

import (
	"errors"

	"backend-touristsafety/internal/identity"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/devices/:id/fixes", authMiddleware, func(c *fiber.Ctx) error {
		userID, role := caller(c)
		if role != identity.RoleTourist {
			return fiber.NewError(fiber.StatusForbidden, "only tourists report fixes")
		}
		var req Fix
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		fix, err := svc.AddFix(c.UserContext(), c.Params("id"), userID, req)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fix)
	})

	r.Get("/devices", authMiddleware, func(c *fiber.Ctx) error {
		if _, role := caller(c); role != identity.RolePolice {
			return fiber.NewError(fiber.StatusForbidden, "police only")
		}
		return c.JSON(svc.Devices())
	})

	r.Get("/devices/:id", authMiddleware, RequireViewer(svc, "id"), func(c *fiber.Ctx) error {
		status, err := svc.Status(c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(status)
	})

	r.Get("/devices/:id/fixes", authMiddleware, func(c *fiber.Ctx) error {
		userID, role := caller(c)
		fixes, err := svc.Fixes(c.UserContext(), c.Params("id"), userID, role)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(fixes)
	})

	r.Delete("/devices/:id", authMiddleware, func(c *fiber.Ctx) error {
		userID, role := caller(c)
		if err := svc.StopDevice(c.Params("id"), userID, role); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// RequireViewer refuses callers who may not see the device named by the route
// parameter param.
func RequireViewer(svc *Service, param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role := caller(c)
		if err := svc.Authorize(c.Params(param), userID, role); err != nil {
			return httpError(err)
		}
		return c.Next()
	}
}

func caller(c *fiber.Ctx) (string, identity.Role) {
	userID, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(identity.Role)
	return userID, role
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrDeviceNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrDeviceOwned):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrDeviceStopped):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidFix), errors.Is(err, ErrInvalidDevice):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrHistoryDisabled):
		return fiber.NewError(fiber.StatusNotImplemented, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
