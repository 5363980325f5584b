package session

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
)

// Session 是当前登录身份的只读视图，令牌如何保存不在这里处理
type Session interface {
	IsAuthenticated() bool
	IsAdmin() bool
	Username() string
	AuthHeaders() http.Header
}

type AuthClaims struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Token 从服务器签发的 JWT 中读取身份。签名由服务器校验，客户端只解析声明。
type Token struct {
	raw    string
	claims *AuthClaims
	now    func() time.Time
}

// Anonymous 返回未登录的会话
func Anonymous() *Token {
	return &Token{now: time.Now}
}

func FromToken(raw string) (*Token, error) {
	if raw == "" {
		return Anonymous(), nil
	}

	claims := &AuthClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, err
	}

	return &Token{raw: raw, claims: claims, now: time.Now}, nil
}

func (t *Token) IsAuthenticated() bool {
	if t.claims == nil || t.Username() == "" {
		return false
	}
	if t.claims.ExpiresAt != nil && !t.claims.ExpiresAt.After(t.now()) {
		return false
	}
	return true
}

func (t *Token) IsAdmin() bool {
	return t.IsAuthenticated() && domain.Role(t.claims.Role) == domain.RoleAdmin
}

func (t *Token) Username() string {
	if t.claims == nil {
		return ""
	}
	if t.claims.Username != "" {
		return t.claims.Username
	}
	return t.claims.Subject
}

func (t *Token) AuthHeaders() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if t.raw != "" {
		h.Set("Authorization", "Bearer "+t.raw)
	}
	return h
}
