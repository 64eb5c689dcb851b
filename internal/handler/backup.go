package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"berdoz-admin/internal/models"
	"berdoz-admin/internal/store"
	"berdoz-admin/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	backupFormat   = 1
	maxBackupBytes = 256 << 20
)

// BackupHandler 负责备份相关接口（仅管理员）
type BackupHandler struct {
	DB         *gorm.DB
	EncryptKey string
	BackupDir  string
	Archives   []store.Archive
	Log        *zap.Logger
}

// NewBackupHandler 构造函数
func NewBackupHandler(db *gorm.DB, encryptKey, backupDir string, log *zap.Logger, archives ...store.Archive) *BackupHandler {
	return &BackupHandler{
		DB:         db,
		EncryptKey: encryptKey,
		BackupDir:  backupDir,
		Archives:   archives,
		Log:        log,
	}
}

// backupBundle 是写入备份文件的内容，序列化为 MongoDB Extended JSON 后整体加密
type backupBundle struct {
	Format      int                `bson:"format"`
	CreatedAt   time.Time          `bson:"created_at"`
	CreatedBy   string             `bson:"created_by"`
	Collections map[string][]bson.M `bson:"collections"`
}

func (b *backupBundle) documents() int {
	n := 0
	for _, docs := range b.Collections {
		n += len(docs)
	}
	return n
}

// Snapshot 导出所有集合并加密，供接口和命令行共用
func (h *BackupHandler) Snapshot(ctx context.Context, by string, now time.Time) ([]byte, *backupBundle, error) {
	bundle := &backupBundle{
		Format:      backupFormat,
		CreatedAt:   now.UTC(),
		CreatedBy:   by,
		Collections: make(map[string][]bson.M, len(h.Archives)),
	}
	for _, a := range h.Archives {
		docs, err := a.Dump(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("dump %s: %w", a.Name(), err)
		}
		if docs == nil {
			docs = []bson.M{}
		}
		bundle.Collections[a.Name()] = docs
	}
	raw, err := bson.MarshalExtJSON(bundle, true, false)
	if err != nil {
		return nil, nil, fmt.Errorf("encode backup: %w", err)
	}
	enc, err := util.EncryptAES(h.EncryptKey, raw)
	if err != nil {
		return nil, nil, fmt.Errorf("encrypt backup: %w", err)
	}
	return enc, bundle, nil
}

// open 解密并解析备份文件内容
func (h *BackupHandler) open(enc []byte) (*backupBundle, error) {
	raw, err := util.DecryptAES(h.EncryptKey, enc)
	if err != nil {
		return nil, err
	}
	var bundle backupBundle
	if err := bson.UnmarshalExtJSON(raw, true, &bundle); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	if bundle.Format != backupFormat {
		return nil, fmt.Errorf("unsupported backup format %d", bundle.Format)
	}
	return &bundle, nil
}

func backupResp(b *models.Backup) gin.H {
	return gin.H{
		"id":          b.ID,
		"file_name":   b.FileName,
		"size":        b.Size,
		"collections": b.Collections,
		"documents":   b.Documents,
		"created_at":  b.CreatedAt,
	}
}

// CreateBackup 生成全部集合的加密备份文件
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	enc, bundle, err := h.Snapshot(c.Request.Context(), user.Username, time.Now())
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create backup")
		return
	}
	backup, err := h.store(user.ID, enc, len(bundle.Collections), bundle.documents())
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save backup")
		return
	}
	h.Log.Info("backup created",
		zap.String("file", backup.FileName), zap.Int("documents", backup.Documents))
	util.Success(c, util.Response{"backup": backupResp(backup)})
}

// store 写文件并记录索引，记录失败时删掉文件
func (h *BackupHandler) store(userID uint, enc []byte, collections, documents int) (*models.Backup, error) {
	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}
	fileName := fmt.Sprintf("backup-%s-%s.bin", time.Now().UTC().Format("20060102-150405"), uuid.NewString()[:8])
	filePath := filepath.Join(h.BackupDir, fileName)
	if err := os.WriteFile(filePath, enc, 0o600); err != nil {
		return nil, fmt.Errorf("write backup: %w", err)
	}

	backup := models.Backup{
		UserID:      userID,
		FileName:    fileName,
		FilePath:    filePath,
		Size:        int64(len(enc)),
		Collections: collections,
		Documents:   documents,
	}
	if err := h.DB.Create(&backup).Error; err != nil {
		_ = os.Remove(filePath)
		return nil, fmt.Errorf("save backup record: %w", err)
	}
	return &backup, nil
}

// ListBackups 列出已有备份，新的在前
func (h *BackupHandler) ListBackups(c *gin.Context) {
	var list []models.Backup
	if err := h.DB.Order("created_at DESC, id DESC").Find(&list).Error; err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list backups")
		return
	}
	items := make([]gin.H, 0, len(list))
	for i := range list {
		items = append(items, backupResp(&list[i]))
	}
	util.Success(c, util.Response{"items": items})
}

func (h *BackupHandler) find(c *gin.Context) (*models.Backup, bool) {
	var backup models.Backup
	if err := h.DB.First(&backup, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup not found")
		} else {
			_ = c.Error(err)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load backup")
		}
		return nil, false
	}
	return &backup, true
}

// DownloadBackup 下载加密后的备份文件
func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	backup, ok := h.find(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", backup.FileName))
	c.File(backup.FilePath)
}

// DeleteBackup 删除备份记录及对应文件
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	backup, ok := h.find(c)
	if !ok {
		return
	}
	if err := os.Remove(backup.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		h.Log.Warn("remove backup file", zap.String("file", backup.FilePath), zap.Error(err))
	}
	if err := h.DB.Delete(backup).Error; err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete backup")
		return
	}
	util.Success(c, util.Response{"message": "deleted"})
}

// RestoreBackup 用备份内容整体替换各集合；备份里没有的集合保持不变
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	backup, ok := h.find(c)
	if !ok {
		return
	}
	enc, err := os.ReadFile(backup.FilePath)
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read backup file")
		return
	}
	h.restore(c, enc)
}

// ImportBackup 上传一个先前下载的备份文件，校验能解密后登记，不会立即恢复
func (h *BackupHandler) ImportBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "no file uploaded")
		return
	}
	if fh.Size > maxBackupBytes {
		util.Error(c, http.StatusRequestEntityTooLarge, util.CodeInvalidParam, "backup file too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "cannot read upload")
		return
	}
	defer f.Close()
	enc, err := io.ReadAll(io.LimitReader(f, maxBackupBytes))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "cannot read upload")
		return
	}
	bundle, err := h.open(enc)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "not a valid backup for this server")
		return
	}
	backup, err := h.store(user.ID, enc, len(bundle.Collections), bundle.documents())
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save backup")
		return
	}
	util.Success(c, util.Response{"backup": backupResp(backup)})
}

func (h *BackupHandler) restore(c *gin.Context, enc []byte) {
	bundle, err := h.open(enc)
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to decrypt backup")
		return
	}

	ctx := c.Request.Context()
	restored := gin.H{}
	for _, a := range h.Archives {
		docs, ok := bundle.Collections[a.Name()]
		if !ok {
			continue
		}
		if err := a.Restore(ctx, docs); err != nil {
			_ = c.Error(err)
			h.Log.Error("restore collection failed", zap.String("collection", a.Name()), zap.Error(err))
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "restore failed at "+a.Name())
			return
		}
		restored[a.Name()] = len(docs)
	}
	h.Log.Info("backup restored", zap.Int("collections", len(restored)))
	util.Success(c, util.Response{
		"message":    "restored",
		"restored":   restored,
		"created_at": bundle.CreatedAt,
	})
}
