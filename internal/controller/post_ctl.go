package controller

import (
	"context"
	"errors"
	"instagen/internal/api/dto"
	"instagen/internal/model"
	"instagen/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Generator 文案生成能力
type Generator interface {
	Generate(ctx context.Context, req model.GenerationRequest) ([]model.PostRecord, error)
}

// Exporter 表格导出能力
type Exporter interface {
	Export(ctx context.Context, records []model.PostRecord) ([]byte, error)
}

// PostController 帖子生成/导出控制器
type PostController struct {
	generator Generator
	exporter  Exporter
	logger    *zap.Logger
}

func NewPostController(generator Generator, exporter Exporter, logger *zap.Logger) *PostController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostController{generator: generator, exporter: exporter, logger: logger}
}

// Generate 批量生成帖子
// @Summary 批量生成帖子文案
// @Description 根据主题与类型生成标题文案、标签与配文。Mixed 类型逐条随机选择 Post/Carousel/Reel
// @Tags Post
// @Accept json
// @Produce json
// @Param request body dto.GenerateReq true "生成参数"
// @Success 200 {array} dto.PostResp
// @Failure 400 {object} map[string]string "参数错误"
// @Failure 429 {object} map[string]string "已有生成请求在处理中"
// @Failure 500 {object} map[string]string "服务器内部错误"
// @Router /api/generate [post]
func (h *PostController) Generate(c *gin.Context) {
	var req dto.GenerateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	genReq, err := req.ToRequest()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := h.generator.Generate(c.Request.Context(), genReq)
	if err != nil {
		status := http.StatusInternalServerError
		if isClientError(err) {
			status = http.StatusBadRequest
		}
		h.logger.Warn("generate failed",
			zap.String("topic", genReq.Topic),
			zap.Stringer("post_type", genReq.PostType),
			zap.Error(err))
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("posts generated",
		zap.Stringer("post_type", genReq.PostType),
		zap.Int("count", len(records)))
	c.JSON(http.StatusOK, dto.FromRecords(records))
}

// Export 导出 Excel
// @Summary 导出帖子为 xlsx
// @Description 将生成结果转换为 generated_posts.xlsx 下载。headlineCopy / hashtags 兼容字符串或数组
// @Tags Post
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param request body []dto.PostResp true "帖子列表"
// @Success 200 {file} file "xlsx 文件"
// @Failure 400 {object} map[string]string "参数错误"
// @Failure 500 {object} map[string]string "服务器内部错误"
// @Router /api/export [post]
func (h *PostController) Export(c *gin.Context) {
	var items []dto.PostResp
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrNoRecords.Error()})
		return
	}

	records, err := dto.ToRecords(items)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := h.exporter.Export(c.Request.Context(), records)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrNoRecords) {
			status = http.StatusBadRequest
		}
		h.logger.Error("export failed", zap.Int("count", len(records)), zap.Error(err))
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+service.ExportFileName)
	c.Data(http.StatusOK, service.ExportContentType, data)
}

// Health 健康检查
// @Summary 健康检查
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string "{"status": "ok"}"
// @Router /api/health [get]
func (h *PostController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// isClientError 请求参数导致的错误
func isClientError(err error) bool {
	switch {
	case errors.Is(err, service.ErrEmptyTopic),
		errors.Is(err, service.ErrInvalidCount),
		errors.Is(err, service.ErrInvalidSlides),
		errors.Is(err, service.ErrInvalidDuration),
		errors.Is(err, service.ErrInvalidPostType):
		return true
	}
	return false
}
