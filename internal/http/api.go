package http

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"file-portal/internal/domain"
	"file-portal/internal/service"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Handler wires HTTP routes to the file service.
type Handler struct {
	files  service.FileService
	flash  *FlashStore
	logger *logrus.Logger
}

func NewHandler(files service.FileService, flash *FlashStore, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		files:  files,
		flash:  flash,
		logger: logger,
	}
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("pages").
		Funcs(template.FuncMap{"pathEscape": url.PathEscape}).
		ParseFS(templatesFS, "templates/*.html")
}

func (h *Handler) RegisterRoutes(router *gin.Engine) error {
	tmpl, err := Templates()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)
	// download links escape '/' in keys, match on the raw path so the parameter keeps it
	router.UseRawPath = true
	router.UnescapePathValues = true
	router.Use(requestLogger(h.logger))

	router.GET("/", h.handle(routeIndex, h.index, h.renderEmptyIndex))
	router.POST("/upload", h.handle(routeUpload, h.upload, h.redirectHome))
	router.GET("/download/:filename", h.handle(routeDownload, h.download, h.redirectHome))
	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
	return nil
}

func (h *Handler) index(c *gin.Context) error {
	files, err := h.files.ListFiles(c.Request.Context())
	if err != nil {
		return err
	}
	h.renderIndex(c, domain.Keys(files))
	return nil
}

func (h *Handler) upload(c *gin.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		switch {
		case errors.Is(err, http.ErrMissingFile) && hasFormValue(c, "file"):
			return service.ErrNoSelectedFile
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return service.ErrNoFilePart
		}
		return fmt.Errorf("read upload form: %w", err)
	}

	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("open uploaded file: %w", err)
	}
	defer file.Close()

	res, err := h.files.Upload(c.Request.Context(), service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		return err
	}

	c.HTML(http.StatusOK, "success.html", gin.H{
		"Title":    "Upload complete",
		"Notices":  h.flash.Consume(c),
		"Filename": res.Filename,
		"FileURL":  template.URL(res.URL),
		"Expiry":   humanDuration(res.Expiry),
		"Files":    domain.Keys(res.Files),
	})
	return nil
}

func (h *Handler) download(c *gin.Context) error {
	link, err := h.files.DownloadURL(c.Request.Context(), c.Param("filename"))
	if err != nil {
		return err
	}
	c.Redirect(http.StatusFound, link)
	return nil
}

func (h *Handler) renderIndex(c *gin.Context, files []string) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":   "File Portal",
		"Notices": h.flash.Consume(c),
		"Files":   files,
	})
}

func (h *Handler) renderEmptyIndex(c *gin.Context) {
	h.renderIndex(c, []string{})
}

func (h *Handler) redirectHome(c *gin.Context) {
	h.flash.Redirect(c, "/")
}

func hasFormValue(c *gin.Context, field string) bool {
	form := c.Request.MultipartForm
	if form == nil {
		return false
	}
	_, ok := form.Value[field]
	return ok
}

func humanDuration(d time.Duration) string {
	switch {
	case d%time.Hour == 0:
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
