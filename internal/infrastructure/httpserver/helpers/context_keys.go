package helpers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type ctxKey string

const (
	keyVendorID ctxKey = "vendor_id"
)

func SetVendorID(c echo.Context, id string) { c.Set(string(keyVendorID), id) }
func GetVendorIDRaw(c echo.Context) (string, bool) {
	v := c.Get(string(keyVendorID))
	id, ok := v.(string)
	return id, ok && id != ""
}

func GetVendorIDFromContext(c echo.Context) (string, error) {
	id, ok := GetVendorIDRaw(c)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid vendor context")
	}
	return id, nil
}
