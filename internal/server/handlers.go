package server

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/mandela/internal/assets"
	"github.com/abhisek/mandela/internal/catalog"
	"github.com/abhisek/mandela/internal/quiz"
)

type answerRequest struct {
	Choice string `json:"choice" binding:"required"`
}

func (s *Server) listCatalog(c *gin.Context) {
	items := s.registry.Catalog().Items()
	out := make([]itemView, 0, len(items))
	for _, it := range items {
		out = append(out, newItemView(it))
	}
	success(c, gin.H{"items": out, "total": len(out)})
}

func (s *Server) session(c *gin.Context) (*quiz.Session, bool) {
	sess, err := s.registry.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) createSession(c *gin.Context) {
	sess := s.registry.Create()
	s.tracker.Start(c.Request.Context(), sess)
	s.tracker.SetActive(s.registry.Len())
	created(c, newStateView(sess))
}

func (s *Server) currentQuestion(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	item, index, err := sess.CurrentItem()
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, newQuestionView(item, index, sess.Catalog.Len()))
}

func (s *Server) submitAnswer(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "choice is required")
		return
	}
	choice, err := catalog.ParseChoice(req.Choice)
	if err != nil {
		s.fail(c, fmt.Errorf("%w: %v", quiz.ErrInvalidChoice, err))
		return
	}

	rec, err := s.tracker.Submit(c.Request.Context(), sess, choice)
	if err != nil {
		s.fail(c, err)
		return
	}
	item, _ := sess.Catalog.Lookup(rec.ItemID)

	success(c, answerView{
		Record:      rec,
		Correct:     item.Correct.Label(),
		Explanation: item.Explanation,
		State:       newStateView(sess),
	})
}

func (s *Server) restartSession(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	s.tracker.Restart(c.Request.Context(), sess)
	success(c, newStateView(sess))
}

func (s *Server) sessionSummary(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	sum, err := sess.Summary()
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, newSummaryView(sess.ID, sess.Catalog, sum))
}

func (s *Server) deleteSession(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.registry.Get(id); err != nil {
		s.fail(c, err)
		return
	}
	s.registry.Delete(id)
	s.tracker.Forget(id)
	s.tracker.SetActive(s.registry.Len())
	success(c, gin.H{"session_id": id})
}

func (s *Server) getAsset(c *gin.Context) {
	if s.assets == nil {
		fail(c, http.StatusNotFound, assets.NotFoundText)
		return
	}
	ref := strings.TrimPrefix(c.Param("ref"), "/")
	ctx := c.Request.Context()

	size, err := parseSize(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if size == (assets.Size{}) {
		rc, err := s.assets.Open(ctx, ref)
		if err != nil {
			s.assetError(c, ref, err)
			return
		}
		defer rc.Close()
		contentType := mime.TypeByExtension(path.Ext(ref))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Header("Cache-Control", "public, max-age=3600")
		c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
		return
	}

	img, err := assets.Load(ctx, s.assets, ref, size)
	if err != nil {
		s.assetError(c, ref, err)
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		s.assetError(c, ref, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.DataFromReader(http.StatusOK, int64(buf.Len()), "image/png", io.NopCloser(&buf), nil)
}

func (s *Server) assetError(c *gin.Context, ref string, err error) {
	if errors.Is(err, assets.ErrNotFound) {
		fail(c, http.StatusNotFound, assets.NotFoundText)
		return
	}
	s.log.Error("load asset", zap.String("ref", ref), zap.Error(err))
	fail(c, http.StatusInternalServerError, "internal server error")
}

// parseSize reads ?w=&h=. Either one alone keeps the image square.
func parseSize(c *gin.Context) (assets.Size, error) {
	var size assets.Size
	for _, p := range []struct {
		key string
		dst *int
	}{{"w", &size.W}, {"h", &size.H}} {
		raw := c.Query(p.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 2048 {
			return assets.Size{}, fmt.Errorf("invalid %s: %q", p.key, raw)
		}
		*p.dst = n
	}
	if size.W == 0 {
		size.W = size.H
	}
	if size.H == 0 {
		size.H = size.W
	}
	return size, nil
}
