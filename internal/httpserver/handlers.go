package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Aman-CERP/applogs/internal/errors"
	"github.com/Aman-CERP/applogs/internal/logging"
	"github.com/Aman-CERP/applogs/internal/logstore"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": logstore.FormatTimestamp(s.now()),
		"uptime":    time.Since(s.startTime).String(),
	})
}

func (s *Server) handleClient(c *gin.Context) {
	var report logging.ClientReport
	if err := c.ShouldBindJSON(&report); err != nil {
		verr := apperrors.ValidationError("invalid JSON body", err)
		c.JSON(apperrors.HTTPStatus(verr), gin.H{"error": verr.Message, "code": verr.Code})
		return
	}

	logging.WriteClientReport(s.store, report, s.now())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleList(c *gin.Context) {
	listing, err := s.store.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list log files"})
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (s *Server) handleRead(c *gin.Context) {
	origin, ok := s.origin(c)
	if !ok {
		return
	}

	content, err := s.store.Read(origin, c.Param("filename"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}

func (s *Server) handleTail(c *gin.Context) {
	origin, ok := s.origin(c)
	if !ok {
		return
	}

	lines := logstore.ParseTailLines(c.Query("lines"))
	result, err := s.store.Tail(origin, c.Param("filename"), lines)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// origin parses the :type parameter, answering 400 when it is unknown.
func (s *Server) origin(c *gin.Context) (logstore.Origin, bool) {
	o, err := logstore.ParseOrigin(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown log type", "code": apperrors.GetCode(err)})
		return "", false
	}
	return o, true
}

// fail maps a store error onto its status code with the client-facing text.
func (s *Server) fail(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	msg := "Internal error"
	switch status {
	case http.StatusForbidden:
		msg = "Access denied"
	case http.StatusNotFound:
		msg = "File not found"
	case http.StatusBadRequest:
		msg = "Bad request"
	}
	c.JSON(status, gin.H{"error": msg})
}
