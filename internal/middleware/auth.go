package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-scheduler/internal/auth"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

const ContextAuth = "authContext"

// StaffResolver links an authenticated user to their staff record.
type StaffResolver interface {
	GetStaffByUserID(ctx context.Context, userID uuid.UUID) (*models.Staff, error)
}

// AuthMiddleware validates the bearer token and stores an auth.Context
// built from the sub, salonId and role claims.
func AuthMiddleware(secret string, staff StaffResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "missing_authorization_header", "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "invalid_authorization_header", "expected a bearer token")
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			httperr.Unauthorized(c, "invalid_token", "invalid token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			httperr.Unauthorized(c, "invalid_token_claims", "invalid token claims")
			c.Abort()
			return
		}

		actor, ok := actorFromClaims(claims)
		if !ok {
			httperr.Unauthorized(c, "invalid_token_payload", "token is missing sub, salonId or role")
			c.Abort()
			return
		}

		var staffID *uuid.UUID
		if staff != nil {
			s, err := staff.GetStaffByUserID(c.Request.Context(), actor.UserID)
			switch {
			case err == nil:
				staffID = &s.ID
			case !httperr.IsNotFound(err):
				httperr.Respond(c, httperr.NewSystemError("resolve staff", err))
				c.Abort()
				return
			}
		}

		ac := auth.NewContext(actor, staffID)
		c.Set(ContextAuth, ac)
		c.Request = c.Request.WithContext(auth.WithContext(c.Request.Context(), ac))

		c.Next()
	}
}

func actorFromClaims(claims jwt.MapClaims) (auth.Actor, bool) {
	sub, _ := claims["sub"].(string)
	salon, _ := claims["salonId"].(string)
	role, _ := claims["role"].(string)

	userID, err := uuid.Parse(sub)
	if err != nil {
		return auth.Actor{}, false
	}
	salonID, err := uuid.Parse(salon)
	if err != nil {
		return auth.Actor{}, false
	}
	r := auth.Role(strings.ToLower(role))
	if !r.Valid() {
		return auth.Actor{}, false
	}

	return auth.Actor{UserID: userID, SalonID: salonID, Role: r}, true
}

// AuthContext returns the context stored by AuthMiddleware.
func AuthContext(c *gin.Context) (auth.Context, bool) {
	v, ok := c.Get(ContextAuth)
	if !ok {
		return auth.Context{}, false
	}
	ac, ok := v.(auth.Context)
	return ac, ok
}

// RequireAuth aborts with 401 when no auth context is present.
func RequireAuth(c *gin.Context) (auth.Context, bool) {
	ac, ok := AuthContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, httperr.HTTPError{Code: "unauthorized", Message: "authentication required"})
	}
	return ac, ok
}
