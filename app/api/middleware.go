package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/predixio/settle/internal/security"
)

// PayloadKey is where Authenticate stores the verified token payload.
const PayloadKey = "token_payload"

// Authenticate verifies the bearer capability token and stores its
// payload in the request context.
func Authenticate(maker security.Maker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			UnauthorizedResponse(c)
			c.Abort()
			return
		}

		fields := strings.Fields(header)
		if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
			UnauthorizedResponse(c)
			c.Abort()
			return
		}

		payload, err := maker.VerifyToken(fields[1])
		if err != nil {
			UnauthorizedResponse(c)
			c.Abort()
			return
		}

		c.Set(PayloadKey, payload)
		c.Next()
	}
}

// AuthenticateOptional verifies the bearer token when one is presented
// and otherwise lets the request through without a payload. Routes that
// need credentials still reject via Can.
func AuthenticateOptional(maker security.Maker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		fields := strings.Fields(header)
		if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
			UnauthorizedResponse(c)
			c.Abort()
			return
		}

		payload, err := maker.VerifyToken(fields[1])
		if err != nil {
			UnauthorizedResponse(c)
			c.Abort()
			return
		}

		c.Set(PayloadKey, payload)
		c.Next()
	}
}

// Can gates a route to actors holding one of the given roles. Admin
// passes every gate.
func Can(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := GetPayload(c)
		if payload == nil {
			ForbiddenResponse(c, "Access denied: no credentials in context")
			c.Abort()
			return
		}

		if payload.Role == security.RoleAdmin {
			c.Next()
			return
		}

		for _, role := range roles {
			if payload.Role == role {
				c.Next()
				return
			}
		}

		ForbiddenResponse(c, "Access denied: role not permitted")
		c.Abort()
	}
}

// GetPayload returns the verified token payload, or nil.
func GetPayload(c *gin.Context) *security.Payload {
	value, exists := c.Get(PayloadKey)
	if !exists {
		return nil
	}
	payload, ok := value.(*security.Payload)
	if !ok {
		return nil
	}
	return payload
}
