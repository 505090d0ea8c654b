package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"instagen/internal/model"

	"github.com/xuri/excelize/v2"
)

// ==================== 配置 ====================

const (
	// ExportFileName 导出文件名
	ExportFileName = "generated_posts.xlsx"
	// ExportSheetName 工作表名
	ExportSheetName = "Instagram Posts"
	// ExportContentType xlsx MIME
	ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ErrNoRecords 导出列表为空
var ErrNoRecords = errors.New("no posts to export")

// ExportHeaders 表头
var ExportHeaders = []string{"Post Number", "Content Type", "Headline & Copy", "Hashtags", "Caption"}

// ==================== 服务 ====================

// ExportService 表格导出服务
type ExportService struct {
	stats *Stats
}

// NewExportService 创建导出服务，stats 可为 nil
func NewExportService(stats *Stats) *ExportService {
	return &ExportService{stats: stats}
}

// Export 将帖子列表写成 xlsx 并返回文件内容
func (s *ExportService) Export(ctx context.Context, records []model.PostRecord) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := BuildWorkbook(records)
	if err != nil {
		s.recordFailure()
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		s.recordFailure()
		return nil, fmt.Errorf("写入 xlsx 失败: %w", err)
	}

	if s.stats != nil {
		s.stats.RecordExport()
	}
	return buf.Bytes(), nil
}

func (s *ExportService) recordFailure() {
	if s.stats != nil {
		s.stats.RecordFailure()
	}
}

// exportColWidths 文案与标签列加宽
var exportColWidths = []struct {
	start, end string
	width      float64
}{
	{"C", "C", 60},
	{"D", "E", 40},
}

// BuildWorkbook 构建工作簿，调用方负责 Close
func BuildWorkbook(records []model.PostRecord) (*excelize.File, error) {
	f := excelize.NewFile()

	// 默认 Sheet1 改名
	if err := f.SetSheetName(f.GetSheetName(0), ExportSheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("设置工作表失败: %w", err)
	}

	header := make([]interface{}, len(ExportHeaders))
	for i, h := range ExportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(ExportSheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("写入表头失败: %w", err)
	}

	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("创建样式失败: %w", err)
	}

	for i, rec := range records {
		number := rec.Index
		if number <= 0 {
			number = i + 1
		}
		typeName := ""
		if rec.PostType.Valid() {
			typeName = rec.PostType.String()
		}

		row := []interface{}{number, typeName, rec.HeadlineText(), rec.HashtagText(), rec.Caption}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("计算第 %d 行坐标失败: %w", i+1, err)
		}
		if err := f.SetSheetRow(ExportSheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("写入第 %d 行失败: %w", i+1, err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(ExportHeaders), len(records)+1)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("计算样式范围失败: %w", err)
	}
	if err := f.SetCellStyle(ExportSheetName, "A2", last, wrap); err != nil {
		f.Close()
		return nil, fmt.Errorf("设置样式失败: %w", err)
	}
	for _, w := range exportColWidths {
		if err := f.SetColWidth(ExportSheetName, w.start, w.end, w.width); err != nil {
			f.Close()
			return nil, fmt.Errorf("设置列宽 %s-%s 失败: %w", w.start, w.end, err)
		}
	}

	return f, nil
}
