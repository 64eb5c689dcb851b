package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"berdoz-admin/internal/models"
	"berdoz-admin/internal/util"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const uploadPrefix = "upload/"

// UploadHandler 保存日历、校车等页面附带的图片和视频
type UploadHandler struct {
	Dir      string
	MaxBytes int64
	Log      *zap.Logger
}

func NewUploadHandler(dir string, maxBytes int64, log *zap.Logger) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = 50 << 20
	}
	return &UploadHandler{Dir: dir, MaxBytes: maxBytes, Log: log}
}

// allowedMedia 只接受图片和视频
func allowedMedia(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		s := m.String()
		if strings.HasPrefix(s, "image/") || strings.HasPrefix(s, "video/") {
			return true
		}
	}
	return false
}

// Upload POST /upload，multipart 字段名 file
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			util.Error(c, http.StatusRequestEntityTooLarge, util.CodeInvalidParam, "file too large")
			return
		}
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "no file uploaded")
		return
	}
	if fh.Size == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "file is empty")
		return
	}
	if fh.Size > h.MaxBytes {
		util.Error(c, http.StatusRequestEntityTooLarge, util.CodeInvalidParam, "file too large")
		return
	}

	src, err := fh.Open()
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "cannot read upload")
		return
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err != nil || !allowedMedia(mt) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "only image and video files are allowed")
		return
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "cannot read upload")
		return
	}

	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create upload directory")
		return
	}

	ext := mt.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(fh.Filename))
	}
	name := uuid.NewString() + ext
	dst := filepath.Join(h.Dir, name)

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save file")
		return
	}
	n, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save file")
		return
	}

	h.Log.Info("file uploaded",
		zap.String("name", name), zap.String("mime", mt.String()), zap.Int64("size", n))

	media := models.Media{
		URL:          "/api/files/" + uploadPrefix + name,
		OriginalName: fh.Filename,
		Size:         n,
	}
	util.Success(c, util.Response{
		"url":          media.URL,
		"originalName": media.OriginalName,
		"size":         media.Size,
		"mime":         mt.String(),
	})
}

// Serve GET /files/*path，只允许读取上传目录内的文件
func (h *UploadHandler) Serve(c *gin.Context) {
	rel := strings.TrimPrefix(path.Clean("/"+c.Param("path")), "/")
	if !strings.HasPrefix(rel, uploadPrefix) {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "forbidden")
		return
	}
	name := strings.TrimPrefix(rel, uploadPrefix)
	if name == "" || strings.Contains(name, "/") {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "file not found")
		return
	}

	full := filepath.Join(h.Dir, name)
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "file not found")
		return
	}
	if mt, err := mimetype.DetectFile(full); err == nil {
		c.Header("Content-Type", mt.String())
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.File(full)
}
