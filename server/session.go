package server

import (
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chaos-io/photobooth/drag"
	"github.com/chaos-io/photobooth/filter"
	"github.com/chaos-io/photobooth/session"
	"github.com/chaos-io/photobooth/shutter"
	"github.com/chaos-io/photobooth/studio"
	"github.com/chaos-io/photobooth/util"
)

type cameraView struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

type sessionView struct {
	ID     string         `json:"id"`
	State  studio.State   `json:"state"`
	Filter string         `json:"filter"`
	Camera cameraView     `json:"camera"`
	Timer  shutter.Status `json:"timer"`
	Photos int            `json:"photos"`
}

func viewOf(sess *session.Session) sessionView {
	st := sess.Studio.State()
	return sessionView{
		ID:     sess.ID,
		State:  st,
		Filter: filter.Build(st.Adjustments, st.Filter),
		Camera: cameraView{Ready: sess.CameraError() == nil, Error: sess.CameraMessage()},
		Timer:  sess.Shutter.Status(),
		Photos: len(st.Photos),
	}
}

func current(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("%w: %v", errBadRequest, err))
		return false
	}
	return true
}

func (s *Server) loadSession(c *gin.Context) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Set(sessionKey, sess)
	c.Next()
}

func (s *Server) getCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog)
}

func (s *Server) openSession(c *gin.Context) {
	sess := s.sessions.Open(c.Request.Context())
	c.JSON(http.StatusCreated, viewOf(sess))
}

func (s *Server) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, viewOf(current(c)))
}

func (s *Server) closeSession(c *gin.Context) {
	if err := s.sessions.Close(current(c).ID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) dispatch(c *gin.Context, a studio.Action) {
	sess := current(c)
	if _, err := sess.Studio.Dispatch(a); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(sess))
}

func (s *Server) setFrame(c *gin.Context) {
	var req struct {
		Frame string `json:"frame" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	s.dispatch(c, studio.SetFrame{Frame: studio.Frame(req.Frame)})
}

func (s *Server) setFilter(c *gin.Context) {
	var req struct {
		Filter string `json:"filter" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	s.dispatch(c, studio.SetFilter{Filter: studio.Filter(req.Filter)})
}

func (s *Server) setAdjustments(c *gin.Context) {
	req := current(c).Studio.State().Adjustments
	if !bind(c, &req) {
		return
	}
	s.dispatch(c, studio.SetAdjustments{Adjustments: req})
}

func (s *Server) toggleMirror(c *gin.Context) {
	s.dispatch(c, studio.ToggleMirror{})
}

// pushFrame accepts either a raw image body or {"dataUri": "..."}.
func (s *Server) pushFrame(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	var (
		img image.Image
		err error
	)
	if strings.HasPrefix(c.ContentType(), "image/") {
		var data []byte
		if data, err = io.ReadAll(c.Request.Body); err == nil {
			img, err = util.DecodeImage(data, s.maxFramePixels)
		}
	} else {
		var req struct {
			DataURI string `json:"dataUri" binding:"required"`
		}
		if !bind(c, &req) {
			return
		}
		img, err = util.DecodeDataURIImageWithin(req.DataURI, s.maxFramePixels)
	}
	if err != nil {
		if !errors.Is(err, util.ErrInvalidDataURI) {
			err = fmt.Errorf("%w: %w", errBadRequest, err)
		}
		fail(c, err)
		return
	}

	if err := current(c).Push(img); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type layoutReq struct {
	Container drag.Size            `json:"container"`
	Stickers  map[string]drag.Size `json:"stickers"`
}

func (s *Server) updateLayout(c *gin.Context) {
	var req layoutReq
	if !bind(c, &req) {
		return
	}
	current(c).Layout.Update(req.Container, req.Stickers)
	c.Status(http.StatusNoContent)
}

func (s *Server) addSticker(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
		IsText  bool   `json:"isText"`
		Color   string `json:"color"`
	}
	if !bind(c, &req) {
		return
	}
	st, ok, err := current(c).AddSticker(req.Content, req.IsText, req.Color)
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (s *Server) clearStickers(c *gin.Context) {
	if err := current(c).ClearStickers(); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type pointerReq struct {
	drag.Event
	StickerID string `json:"stickerId"`
}

func (s *Server) pointer(c *gin.Context) {
	var req pointerReq
	if !bind(c, &req) {
		return
	}
	switch req.Type {
	case drag.PointerDown, drag.PointerMove, drag.PointerUp:
	default:
		respondError(c, http.StatusBadRequest, fmt.Errorf("%w: pointer type %q", errBadRequest, req.Type))
		return
	}

	sess := current(c)
	if err := sess.Pointer(req.Event, req.StickerID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stickers": sess.Studio.State().Stickers})
}

func (s *Server) capture(c *gin.Context) {
	p, ok, err := current(c).Capture()
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"captured": false})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"captured": true, "photo": p})
}

func (s *Server) startTimer(c *gin.Context) {
	sess := current(c)
	if err := sess.StartTimer(); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, sess.Shutter.Status())
}

func (s *Server) timerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, current(c).Shutter.Status())
}
