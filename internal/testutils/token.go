package testutils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/salon-scheduler/internal/auth"
)

const TestJWTSecret = "test-secret"

// Token signs an HS256 bearer token carrying the claims AuthMiddleware reads.
func Token(t *testing.T, secret string, userID, salonID uuid.UUID, role auth.Role) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     userID.String(),
		"salonId": salonID.String(),
		"role":    string(role),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}
