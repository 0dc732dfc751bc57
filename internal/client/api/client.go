// Package api Mindflow REST 接口的客户端。
// Do 是严格调用，非 2xx 返回 *StatusError；List/Post/Put/Delete 失败时降级，永远不报错。
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
)

// ErrDegraded 服务端连不上数据库，返回的是回显而不是真正落库的记录
var ErrDegraded = errors.New("server store unavailable")

// DegradedHeader 服务端降级响应会带上这个头
const DegradedHeader = "X-Mindflow-Degraded"

// StatusError 服务端返回了非 2xx
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP error! Status: %d", e.Method, e.Path, e.Code)
}

type Client struct {
	baseURL string
	http    *http.Client
	ids     *UserIDs
	log     *logger.Logger
}

func New(baseURL string, timeout time.Duration, ids *UserIDs, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		ids:     ids,
		log:     log.With("component", "api"),
	}
}

// UserID 当前匿名用户 id
func (c *Client) UserID(ctx context.Context) (string, error) {
	return c.ids.ID(ctx)
}

// 被限流（429）时最多重试的次数，以及单次等待的上限
const (
	maxRateLimitRetries = 5
	maxRetryWait        = 5 * time.Second
)

// Do 发送请求并把响应解码到 out（out 为 nil 时丢弃响应体）
// 429 按 Retry-After 等待后重试，重试用完仍被限流才返回 *StatusError
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	userID, err := c.ids.ID(ctx)
	if err != nil {
		return err
	}

	var raw []byte
	if body != nil {
		if raw, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.send(ctx, method, path, userID, raw)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRateLimitRetries {
			wait := retryAfter(resp.Header.Get("Retry-After"))
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			c.log.Debug("rate limited, retrying", "method", method, "path", path, "wait", wait, "attempt", attempt+1)
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s %s: %w", method, path, ctx.Err())
			case <-time.After(wait):
			}
			continue
		}
		return c.read(resp, method, path, out)
	}
}

func (c *Client) send(ctx context.Context, method, path, userID string, raw []byte) (*http.Response, error) {
	var reader io.Reader
	if raw != nil {
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-user-id", userID)

	c.log.Debug("api request", "method", method, "path", path)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func (c *Client) read(resp *http.Response, method, path string, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(snippet)}
	}
	if resp.Header.Get(DegradedHeader) == "true" {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s %s: %w", method, path, ErrDegraded)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	c.log.Debug("api response", "method", method, "path", path, "status", resp.StatusCode)
	return nil
}

// retryAfter 只支持秒数形式；缺省等 1 秒，最多等 maxRetryWait
func retryAfter(v string) time.Duration {
	sec, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || sec < 0 {
		return time.Second
	}
	return min(time.Duration(sec)*time.Second, maxRetryWait)
}

// List GET，失败返回空切片
func List[T any](ctx context.Context, c *Client, path string) []T {
	var out []T
	if err := c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		c.log.Warn("API GET error", "path", path, "error", err)
		return []T{}
	}
	if out == nil {
		out = []T{}
	}
	return out
}

// Post POST，失败时原样返回提交的内容
func Post[T any](ctx context.Context, c *Client, path string, body T) T {
	var out T
	if err := c.Do(ctx, http.MethodPost, path, body, &out); err != nil {
		c.log.Warn("API POST error", "path", path, "error", err)
		return body
	}
	return out
}

// Put PUT，失败时原样返回提交的内容
func Put[T any](ctx context.Context, c *Client, path string, body T) T {
	var out T
	if err := c.Do(ctx, http.MethodPut, path, body, &out); err != nil {
		c.log.Warn("API PUT error", "path", path, "error", err)
		return body
	}
	return out
}

// Delete 失败时返回 {"msg":"Deleted"}
func (c *Client) Delete(ctx context.Context, path string) map[string]any {
	var out map[string]any
	if err := c.Do(ctx, http.MethodDelete, path, nil, &out); err != nil {
		c.log.Warn("API DELETE error", "path", path, "error", err)
		return map[string]any{"msg": "Deleted"}
	}
	return out
}

// Status 服务端和数据库的连接状态
type Status struct {
	Server            string `json:"server" yaml:"server"`
	MongoDBConnection string `json:"mongoDbConnection" yaml:"mongoDbConnection"`
}

func (c *Client) Status(ctx context.Context) (Status, error) {
	var st Status
	err := c.Do(ctx, http.MethodGet, "/api/status", nil, &st)
	return st, err
}
