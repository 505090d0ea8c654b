package middleware

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// ==================== InflightGate 单飞闸门 ====================

// InflightGate 同一 key 同时只允许一个请求执行
// 后到的请求直接拒绝，不排队
type InflightGate struct {
	locks sync.Map // key -> *gateEntry
}

// gateEntry 闸门条目
type gateEntry struct {
	mu      sync.Mutex
	running bool
}

func NewInflightGate() *InflightGate {
	return &InflightGate{}
}

// TryAcquire 尝试进入，成功时调用方须 Release
func (g *InflightGate) TryAcquire(key string) bool {
	actual, _ := g.locks.LoadOrStore(key, &gateEntry{})
	entry := actual.(*gateEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.running {
		return false
	}
	entry.running = true
	return true
}

// Release 释放 key
func (g *InflightGate) Release(key string) {
	actual, ok := g.locks.Load(key)
	if !ok {
		return
	}
	entry := actual.(*gateEntry)

	entry.mu.Lock()
	entry.running = false
	entry.mu.Unlock()
}

// Running 是否有请求在执行
func (g *InflightGate) Running(key string) bool {
	actual, ok := g.locks.Load(key)
	if !ok {
		return false
	}
	entry := actual.(*gateEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.running
}

// ==================== Key 生成工具 ====================

// ClientRouteKey 按客户端 IP + 路由生成 key
func ClientRouteKey(c *gin.Context) string {
	return fmt.Sprintf("%s:%s", c.ClientIP(), c.FullPath())
}

// ==================== Gin 中间件 ====================

// SingleFlight 同一客户端对同一路由只允许一个在途请求
func SingleFlight(gate *InflightGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ClientRouteKey(c)
		if !gate.TryAcquire(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "a generation request is already in progress",
			})
			return
		}
		defer gate.Release(key)

		c.Next()
	}
}
