package alerts

import (
	"errors"
	"strconv"

	"backend-touristsafety/internal/identity"

	"github.com/gofiber/fiber/v2"
)

type statusRequest struct {
	Status string `json:"status"`
}

type bulkStatusRequest struct {
	IDs    []int64 `json:"ids"`
	Status string  `json:"status"`
}

// RegisterRoutes mounts the SOS endpoint for tourists and the alert panel
// endpoints for police.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/sos", authMiddleware, requireRole(identity.RoleTourist), func(c *fiber.Ctx) error {
		var req SOSRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		userID, _ := c.Locals("user_id").(string)
		a, err := svc.SendSOS(c.UserContext(), userID, req)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	})

	police := requireRole(identity.RolePolice)

	r.Get("/", authMiddleware, police, func(c *fiber.Ctx) error {
		f, ok := ParseFilter(c.Query("filter"))
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "unknown filter")
		}
		list, err := svc.List(c.UserContext(), f)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(list)
	})

	r.Get("/summary", authMiddleware, police, func(c *fiber.Ctx) error {
		sum, err := svc.Summary(c.UserContext())
		if err != nil {
			return httpError(err)
		}
		return c.JSON(sum)
	})

	r.Patch("/status", authMiddleware, police, func(c *fiber.Ctx) error {
		var req bulkStatusRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		status, ok := ParseStatus(req.Status)
		if !ok {
			return httpError(ErrInvalidStatus)
		}
		userID, _ := c.Locals("user_id").(string)
		res, err := svc.BulkUpdateStatus(c.UserContext(), req.IDs, status, userID)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(res)
	})

	r.Get("/:id", authMiddleware, police, func(c *fiber.Ctx) error {
		id, err := alertID(c)
		if err != nil {
			return err
		}
		a, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(a)
	})

	r.Patch("/:id/status", authMiddleware, police, func(c *fiber.Ctx) error {
		id, err := alertID(c)
		if err != nil {
			return err
		}
		var req statusRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		status, ok := ParseStatus(req.Status)
		if !ok {
			return httpError(ErrInvalidStatus)
		}
		userID, _ := c.Locals("user_id").(string)
		a, err := svc.UpdateStatus(c.UserContext(), id, status, userID)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(a)
	})
}

func requireRole(role identity.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if got, _ := c.Locals("role").(identity.Role); got != role {
			return fiber.NewError(fiber.StatusForbidden, string(role)+" only")
		}
		return c.Next()
	}
}

func alertID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid alert id")
	}
	return id, nil
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrAlertNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidLocation), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrNoneSelected):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrAlertChanged):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
