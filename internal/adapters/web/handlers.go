package web

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/devbush/subtranslate/internal/application"
	"github.com/devbush/subtranslate/internal/domain"
)

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML(s.opts.TargetLanguage)))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Code: 200,
		Data: gin.H{
			"status": "ok",
		},
		Message: "subtranslate is running",
	})
}

func errorResponse(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{
		Code:    status,
		Data:    nil,
		Message: msg,
	})
}

func (s *Server) handleTranslate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorResponse(c, http.StatusRequestEntityTooLarge, "file is too large")
			return
		}
		errorResponse(c, http.StatusBadRequest, "file is required")
		return
	}

	// Reject before storing anything
	name := filepath.Base(file.Filename)
	if _, err := domain.DetectMediaKind(name); err != nil {
		errorResponse(c, http.StatusBadRequest, application.UserMessage(err))
		return
	}

	uploadDir, err := os.MkdirTemp(s.opts.UploadDir, "upload-*")
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer func() {
		if err := os.RemoveAll(uploadDir); err != nil {
			s.logger.Warn().Err(err).Str("dir", uploadDir).Msg("failed to remove upload")
		}
	}()

	inputPath := filepath.Join(uploadDir, name)
	if err := c.SaveUploadedFile(file, inputPath); err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to save file")
		return
	}
	if s.opts.Metrics != nil {
		s.opts.Metrics.UploadBytes.Add(float64(file.Size))
	}

	id := uuid.NewString()
	result, err := s.processor.Process(c.Request.Context(), inputPath, application.ProcessOptions{
		TargetLanguage: c.DefaultPostForm("target", s.opts.TargetLanguage),
		SourceLanguage: c.DefaultPostForm("source", s.opts.SourceLanguage),
		Model:          s.opts.Model,
		OutputPath:     s.subtitlePath(id),
		FullText:       s.opts.FullText,
		Origin:         "web",
		RequestID:      id,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrUnsupportedFormat) || errors.Is(err, domain.ErrInvalidLanguage) {
			status = http.StatusBadRequest
		}
		errorResponse(c, status, application.UserMessage(err))
		return
	}

	c.JSON(http.StatusOK, Response{
		Code: 200,
		Data: gin.H{
			"id":               id,
			"filename":         name,
			"language":         result.Transcript.Language,
			"language_name":    domain.LanguageName(result.Transcript.Language),
			"original_text":    result.Transcript.ToText(),
			"full_translation": result.FullTranslation,
			"report":           result.Report,
			"cues":             len(result.Document.Cues),
			"substituted":      len(result.Substituted),
			"cached":           result.FromCache,
			"subtitle_url":     "/api/subtitles/" + id,
		},
		Message: "subtitle ready",
	})
}

func (s *Server) handleSubtitle(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid subtitle id")
		return
	}

	path := s.subtitlePath(id)
	if _, err := os.Stat(path); err != nil {
		errorResponse(c, http.StatusNotFound, "subtitle not found")
		return
	}

	c.Header("Content-Type", "application/x-subrip; charset=utf-8")
	c.FileAttachment(path, id+".srt")
}
