package zones

import (
	"context"
	"strconv"

	"backend-touristsafety/internal/shared/geo"

	"github.com/gofiber/fiber/v2"
)

// Locator classifies positions against zones and names places.
type Locator interface {
	NearestZone(pos geo.LatLng, zs []Zone) (Match, bool)
	Address(ctx context.Context, lat, lng float64) string
}

func RegisterRoutes(r fiber.Router, src Source, loc Locator) {
	r.Get("/zones", func(c *fiber.Ctx) error {
		kind, _ := ParseKind(c.Query("kind"))
		zs, err := src.Zones(c.UserContext(), kind)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(zs)
	})

	r.Get("/zones/nearest", func(c *fiber.Ctx) error {
		pos, err := positionFromQuery(c)
		if err != nil {
			return err
		}
		kind, _ := ParseKind(c.Query("kind", string(KindSafety)))
		zs, err := src.Zones(c.UserContext(), kind)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		match, ok := loc.NearestZone(pos, zs)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no zones")
		}
		return c.JSON(match)
	})

	r.Get("/geocode", func(c *fiber.Ctx) error {
		pos, err := positionFromQuery(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"address":   loc.Address(c.UserContext(), pos.Lat, pos.Lng),
			"formatted": geo.FormatCoordinates(pos, 6),
		})
	})

	r.Get("/emergency-numbers", func(c *fiber.Ctx) error {
		return c.JSON(EmergencyNumbers)
	})
}

func positionFromQuery(c *fiber.Ctx) (geo.LatLng, error) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	pos := geo.LatLng{Lat: lat, Lng: lng}
	if errLat != nil || errLng != nil || !pos.Valid() {
		return geo.LatLng{}, fiber.NewError(fiber.StatusBadRequest, "lat and lng required")
	}
	return pos, nil
}
