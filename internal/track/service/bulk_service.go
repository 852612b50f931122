package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bitfantasy/filmtrack/internal/shared/notify"
	"github.com/bitfantasy/filmtrack/internal/track/sse"
	"github.com/minio/minio-go/v7"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// FailedRow 批量创建中被拒绝的行，原样保留行内容以便重新提交
type FailedRow struct {
	Row    json.RawMessage `json:"row"`
	Reason string          `json:"reason"`
}

// BulkCreator 批量创建后端
// 每行独立尝试，返回本次提交的成功数与失败行；整体性错误(连接失败等)
// 通过error返回，此时不得假定任何行已提交
type BulkCreator interface {
	EntityName() string
	CreateMany(ctx context.Context, rows []json.RawMessage) (int, []FailedRow, error)
}

// BulkResult 批量创建最终结果
type BulkResult struct {
	CreatedCount int         `json:"created_count"`
	FailedList   []FailedRow `json:"failed_list"`
	Rounds       int         `json:"rounds"`
}

// BulkService 批量对账引擎
// 整批提交后仅对失败行重试，各轮严格串行；某一轮零进展即认定
// 剩余失败为永久失败并停止，避免对稳定失败行反复空转
type BulkService struct {
	logger      *zap.Logger
	hub         *sse.Hub
	cache       *ListCache
	notifier    *notify.Client
	minioClient *minio.Client
	bucket      string
}

func NewBulkService(logger *zap.Logger, hub *sse.Hub, cache *ListCache, notifier *notify.Client, minioClient *minio.Client, bucket string) *BulkService {
	return &BulkService{
		logger:      logger,
		hub:         hub,
		cache:       cache,
		notifier:    notifier,
		minioClient: minioClient,
		bucket:      bucket,
	}
}

// BulkCreate 批量创建并自动重试失败行，直至收敛
func (s *BulkService) BulkCreate(ctx context.Context, creator BulkCreator, rows []json.RawMessage, userID string) (*BulkResult, error) {
	result := &BulkResult{}
	pending := rows

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("批量创建已取消: %w", err)
		}

		result.Rounds++
		created, failed, err := creator.CreateMany(ctx, pending)
		if err != nil {
			return nil, fmt.Errorf("批量创建%s失败: %w", creator.EntityName(), err)
		}
		result.CreatedCount += created

		s.logger.Info("bulk create round finished",
			zap.String("entity", creator.EntityName()),
			zap.Int("round", result.Rounds),
			zap.Int("submitted", len(pending)),
			zap.Int("created", created),
			zap.Int("failed", len(failed)),
		)

		if len(failed) == 0 {
			result.FailedList = nil
			break
		}
		if created == 0 {
			// 零进展，剩余失败视为永久失败
			result.FailedList = failed
			break
		}

		// 去掉失败原因，仅以原始行内容重新提交
		pending = pending[:0:0]
		for _, f := range failed {
			pending = append(pending, f.Row)
		}
	}

	s.afterBulk(ctx, creator.EntityName(), result, userID)
	return result, nil
}

func (s *BulkService) afterBulk(ctx context.Context, entityName string, result *BulkResult, userID string) {
	if result.CreatedCount > 0 {
		s.cache.Invalidate(ctx, entityName)
	}
	if s.hub != nil {
		s.hub.PublishBatchResult(userID, entityName, result.CreatedCount, len(result.FailedList))
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyBatchResult(ctx, entityName, result.CreatedCount, len(result.FailedList)); err != nil {
			s.logger.Warn("batch result notification failed",
				zap.String("entity", entityName), zap.Error(err))
		}
	}
}

// ExportFailures 导出最终失败行为xlsx
// 配置了MinIO时同时归档一份，返回归档对象名(未配置时为空)
func (s *BulkService) ExportFailures(ctx context.Context, entityName string, failed []FailedRow) (*excelize.File, string, error) {
	f := excelize.NewFile()
	sheet := "失败明细"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	headers := []string{"序号", "失败原因", "行内容"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for i, row := range failed {
		r := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", r), i+1)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", r), row.Reason)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", r), string(row.Row))
	}
	colWidths := []float64{6, 40, 80}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	objectName := ""
	if s.minioClient != nil && s.bucket != "" {
		var buf bytes.Buffer
		if err := f.Write(&buf); err != nil {
			return nil, "", fmt.Errorf("生成失败明细文件出错: %w", err)
		}
		objectName = fmt.Sprintf("bulk-failures/%s_%s.xlsx", entityName, time.Now().Format("20060102150405"))
		_, err := s.minioClient.PutObject(ctx, s.bucket, objectName, &buf, int64(buf.Len()), minio.PutObjectOptions{
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		})
		if err != nil {
			s.logger.Warn("failure report archive failed",
				zap.String("object", objectName), zap.Error(err))
			objectName = ""
		}
	}
	return f, objectName, nil
}
