package middlewares

import (
	"context"
	"strings"

	"manualctf/errs"
	"manualctf/logger"
	"manualctf/models"
	"manualctf/utils"

	"github.com/gin-gonic/gin"
)

// TokenCookie 浏览器访问评审页面时通过 Cookie 携带 Token，登录时以 SameSite=Strict 下发
const TokenCookie = "dalictf_token"

// extractToken 优先读取 Authorization 头，其次读取 Cookie
func extractToken(c *gin.Context) (string, errs.Code) {
	authHeader := c.Request.Header.Get("Authorization")
	if authHeader == "" {
		if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
			return cookie, errs.OK
		}
		return "", errs.Unauthorized
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		return "", errs.TokenInvalid
	}
	return parts[1], errs.OK
}

func setIdentity(c *gin.Context, claims *utils.Claims) {
	c.Set("user_id", claims.UserID)
	c.Set("user_role", claims.Role)
	ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, claims.UserID)
	c.Request = c.Request.WithContext(ctx)
}

// JWTAuthMiddleware 验证用户是否登录
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, code := extractToken(c)
		if code != errs.OK {
			utils.Fail(c, errs.New(code))
			return
		}
		claims, err := utils.ParseToken(token)
		if err != nil {
			utils.Fail(c, errs.New(errs.TokenInvalid))
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// RoleAuthMiddleware 验证用户角色权限
func RoleAuthMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleAny, exists := c.Get("user_role")
		if !exists {
			utils.Fail(c, errs.New(errs.Unauthorized))
			return
		}
		role, _ := roleAny.(models.UserRole)

		// root_admin 拥有所有权限
		hasPermission := role == models.RoleRootAdmin
		for _, requiredRole := range requiredRoles {
			if role == requiredRole {
				hasPermission = true
				break
			}
		}

		if !hasPermission {
			utils.Fail(c, errs.New(errs.Forbidden))
			return
		}
		c.Next()
	}
}

// AdminOnly 登录且为管理员
func AdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{JWTAuthMiddleware(), RoleAuthMiddleware(models.RoleAdmin)}
}

// JWTTryAuthMiddleware 尝试解析Token，即使失败也继续执行
func JWTTryAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, code := extractToken(c)
		if code == errs.OK {
			if claims, err := utils.ParseToken(token); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

// IsAdmin 根据中间件写入的角色判断
func IsAdmin(c *gin.Context) bool {
	roleAny, exists := c.Get("user_role")
	if !exists {
		return false
	}
	role, _ := roleAny.(models.UserRole)
	return role == models.RoleAdmin || role == models.RoleRootAdmin
}
