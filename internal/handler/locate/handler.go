package locate

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/TomasB/iplocate/internal/data"
	"github.com/TomasB/iplocate/internal/ipv4"
	"github.com/gin-gonic/gin"
)

const notFoundMessage = "Resource not found."

// LocateQuery represents the query string of a location request.
type LocateQuery struct {
	IP string `form:"ip" binding:"required"`
}

// LocateResponse represents the JSON response for a resolved address.
type LocateResponse struct {
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	City        string `json:"city"`
}

// ErrorResponse represents the JSON body of a failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}

// Handler manages IP location endpoints.
type Handler struct {
	lookup data.LocationLookup
}

// NewHandler creates a new locate handler with the given LocationLookup.
func NewHandler(lookup data.LocationLookup) *Handler {
	return &Handler{lookup: lookup}
}

// Locate handles GET /api/ip/location?ip=
func (h *Handler) Locate(c *gin.Context) {
	var q LocateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "invalid request: " + err.Error(),
		})
		return
	}

	id, err := ipv4.ParseID(q.IP)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
		})
		return
	}

	slog.Debug("locate request received", "ip", q.IP, "id", id)

	loc, err := h.lookup.LookupLocation(id)
	switch {
	case errors.Is(err, data.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: notFoundMessage})
		return
	case err != nil:
		slog.Error("location lookup failed", "ip", q.IP, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "lookup failed"})
		return
	}

	slog.Debug("location found", "ip", q.IP, "country_code", loc.CountryCode, "city", loc.City)

	c.JSON(http.StatusOK, LocateResponse{
		Country:     loc.Country,
		CountryCode: loc.CountryCode,
		City:        loc.City,
	})
}
