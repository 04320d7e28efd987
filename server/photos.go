package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"

	"github.com/chaos-io/photobooth/gallery"
	"github.com/chaos-io/photobooth/studio"
)

const photoKey = "photo"

func (s *Server) loadPhoto(c *gin.Context) {
	p, ok := current(c).Studio.State().Photo(c.Param("pid"))
	if !ok {
		fail(c, fmt.Errorf("%w: %s", errPhotoNotFound, c.Param("pid")))
		return
	}
	c.Set(photoKey, p)
	c.Next()
}

func currentPhoto(c *gin.Context) studio.Photo {
	return c.MustGet(photoKey).(studio.Photo)
}

// listPhotos returns the gallery newest first.
func (s *Server) listPhotos(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"photos": current(c).Studio.State().Photos})
}

func (s *Server) getPhoto(c *gin.Context) {
	c.JSON(http.StatusOK, currentPhoto(c))
}

func attachment(c *gin.Context, f gallery.File) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	c.Data(http.StatusOK, f.MimeType, f.Data)
}

func (s *Server) downloadPhoto(c *gin.Context) {
	f, err := s.gallery.Download(currentPhoto(c))
	if err != nil {
		fail(c, err)
		return
	}
	attachment(c, f)
}

func (s *Server) downloadEdited(c *gin.Context) {
	var req struct {
		DataURI string `json:"dataUri" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	f, err := s.gallery.DownloadEdited(req.DataURI)
	if err != nil {
		fail(c, err)
		return
	}
	attachment(c, f)
}

func (s *Server) thumbnail(c *gin.Context) {
	size, err := strconv.Atoi(c.DefaultQuery("max", strconv.Itoa(gallery.DefaultThumbnailSize)))
	if err != nil || size <= 0 {
		respondError(c, http.StatusBadRequest, fmt.Errorf("%w: max must be a positive integer", errBadRequest))
		return
	}
	img, err := s.gallery.Thumbnail(currentPhoto(c), size)
	if err != nil {
		fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// removeBackground leaves the gallery as it is; the processed image is only
// returned to the caller.
func (s *Server) removeBackground(c *gin.Context) {
	var req struct {
		Crop bool `json:"crop"`
	}
	if c.Request.ContentLength != 0 && !bind(c, &req) {
		return
	}
	out, err := s.gallery.RemoveBackground(c.Request.Context(), currentPhoto(c), req.Crop)
	if err != nil {
		respondError(c, statusOf(err, http.StatusBadGateway), err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// sendTelegram always answers 200; delivery failures are in the body.
func (s *Server) sendTelegram(c *gin.Context) {
	var req struct {
		Caption string `json:"caption"`
	}
	if c.Request.ContentLength != 0 && !bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, s.gallery.SendToTelegram(c.Request.Context(), currentPhoto(c), req.Caption))
}
