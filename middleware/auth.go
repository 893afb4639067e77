package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inkstream/inkstream/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID in the Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside the Gin context.
	ContextUsernameKey = "username"

	// LoginPath is where unauthenticated visitors are sent.
	LoginPath = "/auth/login"
	// TokenCookieName carries the session JWT for browser navigation flows.
	TokenCookieName = "token"
)

// LoginRequired ensures the request is authenticated via JWT, either as a
// bearer header or as a session cookie. Unauthenticated requests are
// redirected to the login page with a next parameter pointing back here.
func LoginRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := extractToken(ctx)
		if token == "" {
			redirectToLogin(ctx)
			return
		}

		if utils.IsTokenBlacklisted(token) {
			redirectToLogin(ctx)
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			redirectToLogin(ctx)
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Next()
	}
}

// OptionalAuth populates the user identity when a valid token is present but
// never rejects the request. Listing views use it to compute follow state for
// logged-in visitors.
func OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := extractToken(ctx)
		if token == "" || utils.IsTokenBlacklisted(token) {
			ctx.Next()
			return
		}
		if claims, err := utils.ParseToken(token); err == nil {
			ctx.Set(ContextUserIDKey, claims.UserID)
			ctx.Set(ContextUsernameKey, claims.Username)
		}
		ctx.Next()
	}
}

func extractToken(ctx *gin.Context) string {
	if authHeader := ctx.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := ctx.Cookie(TokenCookieName); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

func redirectToLogin(ctx *gin.Context) {
	next := ctx.Request.URL.Path
	ctx.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(next))
	ctx.Abort()
}
