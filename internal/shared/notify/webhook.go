package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client 群机器人webhook通知客户端
// 批量导入、批量完工等长操作结束后向值班群推送结果摘要
type Client struct {
	webhookURL string
	httpClient *http.Client
}

// NewClient 创建通知客户端，webhookURL为空时调用方应不注入
func NewClient(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type textMessage struct {
	MsgType string `json:"msg_type"`
	Content struct {
		Text string `json:"text"`
	} `json:"content"`
}

// NotifyBatchResult 推送批量操作结果
func (c *Client) NotifyBatchResult(ctx context.Context, entityName string, created, failed int) error {
	text := fmt.Sprintf("批量导入[%s]完成: 成功 %d 条, 失败 %d 条", entityName, created, failed)
	return c.sendText(ctx, text)
}

func (c *Client) sendText(ctx context.Context, text string) error {
	var msg textMessage
	msg.MsgType = "text"
	msg.Content.Text = text

	body, _ := json.Marshal(msg)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("构造通知请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("发送通知失败: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("通知返回异常状态: %d", resp.StatusCode)
	}
	return nil
}
