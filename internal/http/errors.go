package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"file-portal/internal/service"
	"file-portal/internal/storage"
)

type route int

const (
	routeIndex route = iota
	routeUpload
	routeDownload
)

// noticeFor turns an error from one of the portal routes into the one-line notice shown to the user.
func noticeFor(r route, err error) string {
	switch {
	case errors.Is(err, service.ErrNoFilePart):
		return "No file part"
	case errors.Is(err, service.ErrNoSelectedFile):
		return "No selected file"
	case errors.Is(err, service.ErrInvalidFilename):
		return "Invalid file name"
	}

	switch r {
	case routeIndex:
		return "Error fetching files: " + err.Error()
	case routeDownload:
		return "Error downloading file: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}

// handle runs fn and, when it fails, logs the failure, queues the matching notice and
// hands the request to fallback.
func (h *Handler) handle(r route, fn func(*gin.Context) error, fallback gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := fn(c)
		if err == nil {
			return
		}

		fields := logrus.Fields{"path": c.Request.URL.Path}
		var opErr *storage.OperationError
		if errors.As(err, &opErr) {
			fields["op"] = opErr.Op
			fields["bucket"] = opErr.Bucket
			fields["key"] = opErr.Key
			if opErr.Code != "" {
				fields["code"] = opErr.Code
			}
			h.logger.WithFields(fields).Warnf("storage provider failure: %v", err)
		} else {
			h.logger.WithFields(fields).Infof("request rejected: %v", err)
		}

		h.flash.Add(c, noticeFor(r, err))
		fallback(c)
	}
}
