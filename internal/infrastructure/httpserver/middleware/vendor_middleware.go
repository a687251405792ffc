package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/caller-crm/internal/infrastructure/httpserver/helpers"
)

// VendorHeader lets a caller assert which vendor it expects to talk to.
const VendorHeader = "X-Vendor-ID"

// VendorMiddleware pins every request to the vendor this dashboard was
// configured for.
type VendorMiddleware struct {
	vendorID string
	logger   *logrus.Logger
}

func NewVendorMiddleware(vendorID string, logger *logrus.Logger) *VendorMiddleware {
	return &VendorMiddleware{vendorID: vendorID, logger: logger}
}

func (v *VendorMiddleware) ResolveVendor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if asserted := c.Request().Header.Get(VendorHeader); asserted != "" && asserted != v.vendorID {
				if v.logger != nil {
					v.logger.WithFields(logrus.Fields{"asserted": asserted, "vendor_id": v.vendorID}).Warn("vendor mismatch")
				}
				return echo.NewHTTPError(http.StatusForbidden, "vendor mismatch")
			}
			helpers.SetVendorID(c, v.vendorID)
			return next(c)
		}
	}
}
