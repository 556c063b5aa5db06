// README: Auth middleware; verifies Firebase ID tokens and exposes the caller to handlers.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/infra"
)

const (
	ctxCallerUID    = "caller_uid"
	ctxCallerDevice = "caller_device"

	// DeviceClaim is the custom claim binding a token to one device.
	DeviceClaim = "device_id"
)

func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil || token == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxCallerUID, token.UID)
		c.Set(ctxCallerDevice, token.StringClaim(DeviceClaim))
		c.Next()
	}
}

func CallerUID(c *gin.Context) string { return c.GetString(ctxCallerUID) }

// CallerDevice is the device the token was issued for, or "" for operator tokens.
func CallerDevice(c *gin.Context) string { return c.GetString(ctxCallerDevice) }

// RequireDevice rejects device-bound tokens issued for another device.
func RequireDevice(deviceID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d := CallerDevice(c); d != "" && d != deviceID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: token bound to another device"})
			return
		}
		c.Next()
	}
}
