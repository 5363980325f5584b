package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/shift-manager/client/internal/config"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/session"
)

// Error 描述一次失败的请求，Unwrap 返回 domain 中对应的错误类别
type Error struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %v: %s", e.Op, e.Err, e.Message)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ServerMessage 返回服务器给出的错误信息，没有时返回空字符串
func ServerMessage(err error) string {
	var gwErr *Error
	if errors.As(err, &gwErr) && gwErr.Status != 0 {
		return gwErr.Message
	}
	return ""
}

type Client struct {
	baseURL string
	timeout time.Duration
	session session.Session
	http    *http.Client
}

func New(cfg *config.Config, sess session.Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.API.BaseURL, "/"),
		timeout: time.Duration(cfg.API.Timeout) * time.Second,
		session: sess,
		http:    &http.Client{},
	}
}

// WithSession 返回使用另一个身份发送请求的客户端
func (c *Client) WithSession(sess session.Session) *Client {
	cp := *c
	cp.session = sess
	return &cp
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Err: domain.ErrTransportFailure, Message: err.Error()}
		}
		rd = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return &Error{Op: op, Err: domain.ErrTransportFailure, Message: err.Error()}
	}
	for k, vs := range c.session.AuthHeaders() {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		// 超时也归为传输失败
		slog.Debug("请求失败", "method", method, "path", path, "error", err)
		return &Error{Op: op, Err: domain.ErrTransportFailure, Message: err.Error()}
	}
	defer resp.Body.Close()

	slog.Debug("已收到响应", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(op, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Err: domain.ErrTransportFailure, Message: "无法解析响应: " + err.Error()}
	}

	return nil
}

func statusError(op string, resp *http.Response) *Error {
	e := &Error{Op: op, Status: resp.StatusCode, Message: readMessage(resp.Body)}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		e.Err = domain.ErrUnauthenticated
	case http.StatusForbidden:
		e.Err = domain.ErrAuthorizationDenied
	case http.StatusNotFound:
		e.Err = domain.ErrNotFound
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		e.Err = domain.ErrValidationConflict
	default:
		e.Err = domain.ErrTransportFailure
	}

	return e
}

// readMessage 服务器有时返回 {"error": ...}，有时返回纯文本
func readMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		return body.Message
	}

	return strings.TrimSpace(string(data))
}
