package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chaos-io/photobooth/camera"
	"github.com/chaos-io/photobooth/filter"
	"github.com/chaos-io/photobooth/rembg"
	"github.com/chaos-io/photobooth/session"
	"github.com/chaos-io/photobooth/shutter"
	"github.com/chaos-io/photobooth/studio"
	"github.com/chaos-io/photobooth/util"
)

var (
	errTooManyRequests = errors.New("too many requests")
	errPhotoNotFound   = errors.New("photo not found")
	errBadRequest      = errors.New("invalid request body")
)

func respondError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": err.Error()})
}

// statusOf maps domain errors onto HTTP statuses. Anything unknown is
// reported with fallback.
func statusOf(err error, fallback int) int {
	switch {
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, session.ErrClosed),
		errors.Is(err, session.ErrUnknownSticker),
		errors.Is(err, errPhotoNotFound):
		return http.StatusNotFound
	case errors.Is(err, studio.ErrUnknownFrame),
		errors.Is(err, studio.ErrUnknownFilter),
		errors.Is(err, filter.ErrInvalidFilter),
		errors.Is(err, util.ErrInvalidDataURI),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, shutter.ErrCounting),
		errors.Is(err, studio.ErrDuplicateSticker),
		errors.Is(err, session.ErrReadOnlyCamera),
		errors.Is(err, camera.ErrClosed),
		errors.Is(err, camera.ErrPermissionDenied),
		errors.Is(err, camera.ErrUnsupported):
		return http.StatusConflict
	case errors.Is(err, rembg.ErrDisabled):
		return http.StatusServiceUnavailable
	default:
		return fallback
	}
}

func fail(c *gin.Context, err error) {
	respondError(c, statusOf(err, http.StatusInternalServerError), err)
}
