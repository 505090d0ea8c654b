package client

import (
	"context"
	"encoding/json"
	"fmt"
	"instagen/internal/api/dto"
	"instagen/internal/model"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ==================== 配置 ====================

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Postgen-Go-Client/1.0"
)

// StatusError 服务端返回非 2xx
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// ==================== 客户端 ====================

// APIClient 生成服务的 HTTP 客户端
// 不做重试，失败直接返回给调用方
type APIClient struct {
	client *resty.Client
}

// NewAPIClient 创建客户端，baseURL 形如 http://localhost:5000/api
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent).
		SetHeader("Content-Type", "application/json")

	return &APIClient{client: client}
}

// Generate 调用 POST /generate
func (c *APIClient) Generate(ctx context.Context, req model.GenerationRequest) ([]model.PostRecord, error) {
	body := dto.GenerateReq{
		Topic:      req.Topic,
		PostType:   req.PostType.String(),
		NumPosts:   dto.IntPtr(req.PostCount),
		NumSlides:  dto.IntPtr(req.SlideCount),
		NumSeconds: dto.IntPtr(req.DurationSeconds),
	}

	var items []dto.PostResp
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&items).
		Post("/generate")
	if err != nil {
		return nil, fmt.Errorf("请求生成接口失败: %w", err)
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}

	records, err := dto.ToRecords(items)
	if err != nil {
		return nil, fmt.Errorf("解析生成结果失败: %w", err)
	}
	return records, nil
}

// Export 调用 POST /export，返回 xlsx 内容
func (c *APIClient) Export(ctx context.Context, records []model.PostRecord) ([]byte, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(dto.FromRecords(records)).
		SetHeader("Accept", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet").
		Post("/export")
	if err != nil {
		return nil, fmt.Errorf("请求导出接口失败: %w", err)
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode()}
	}
	return resp.Body(), nil
}

// statusError 解析 {"error": "..."} 形式的错误体
func statusError(resp *resty.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(resp.Body()))
	if err := json.Unmarshal(resp.Body(), &payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &StatusError{StatusCode: resp.StatusCode(), Message: msg}
}
