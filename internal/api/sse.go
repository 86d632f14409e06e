package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/caseops/caseflow-gin/internal/auth"
	"github.com/caseops/caseflow-gin/internal/websocket"
	"github.com/gin-gonic/gin"
)

// SSEHandler SSE 处理器
// 支持 token 认证和审批实例状态实时推送
func SSEHandler(validator *auth.TokenValidator, hub *websocket.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从 query 参数获取 token(认证未启用时放行)
		userID := ""
		if validator != nil && validator.Enabled() {
			token := c.Query("token")
			if token == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
				c.Abort()
				return
			}
			claims, err := validator.ValidateToken(token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				c.Abort()
				return
			}
			userID = claims.Sub
		}

		// 2. 获取实例 ID
		instanceID := c.Param("id")
		if instanceID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "instance id required"})
			c.Abort()
			return
		}

		// 3. 设置 SSE 响应头
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no") // 禁用 Nginx 缓冲

		// 4. 获取 Flusher(用于刷新响应缓冲区)
		flusher, ok := c.Writer.(http.Flusher)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
			c.Abort()
			return
		}

		// 5. 订阅实例事件
		messageChan := hub.Subscribe(instanceID)
		defer hub.Unsubscribe(instanceID, messageChan)

		// 6. 发送初始连接消息
		initialMsg := map[string]interface{}{
			"type":        "connected",
			"instance_id": instanceID,
			"user_id":     userID,
			"time":        time.Now().Unix(),
		}
		initialData, _ := json.Marshal(initialMsg)
		if err := sendSSEMessage(c.Writer, initialData); err != nil {
			return
		}
		flusher.Flush()

		// 7. 持续发送消息,30 秒心跳保活
		heartbeat := time.NewTicker(30 * time.Second)
		defer heartbeat.Stop()

		for {
			select {
			case <-c.Request.Context().Done():
				return
			case <-heartbeat.C:
				msg := map[string]interface{}{
					"type":        "heartbeat",
					"instance_id": instanceID,
					"time":        time.Now().Unix(),
				}
				data, _ := json.Marshal(msg)
				if err := sendSSEMessage(c.Writer, data); err != nil {
					return
				}
				flusher.Flush()
			case message, ok := <-messageChan:
				if !ok {
					return
				}
				if err := sendSSEMessage(c.Writer, message); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

// sendSSEMessage 发送 SSE 消息
func sendSSEMessage(w io.Writer, data []byte) error {
	// SSE 格式: data: <json>\n\n
	_, err := fmt.Fprintf(w, "data: %s\n\n", string(data))
	return err
}
