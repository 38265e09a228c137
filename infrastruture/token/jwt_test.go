package token

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJwtService(t *testing.T) {
	// Setup
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatalf("Error generating random bytes: %v", err)
	}
	secretKey := base64.URLEncoding.EncodeToString(bytes)
	issuer := "testIssuer"

	svc := NewJwtService(secretKey, issuer)

	t.Run("Generate and Decode valid token", func(t *testing.T) {
		claims := map[string]interface{}{
			"player_id": "9b2f0c4e",
			"role":      "ghost",
		}
		expDuration := time.Minute * 5

		// Generate token
		token, err := svc.Generate(claims, expDuration)
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		// Decode token
		_, err = svc.Decode(token)
		assert.NoError(t, err)
	})

	t.Run("Decode invalid token", func(t *testing.T) {
		invalidToken := "invalidTokenString"

		// Decode should fail
		_, err := svc.Decode(invalidToken)
		assert.Error(t, err)
	})

	t.Run("Decode expired token", func(t *testing.T) {
		claims := map[string]interface{}{
			"player_id": "9b2f0c4e",
			"role":      "ghost",
		}
		expDuration := -time.Minute // Expired token

		// Generate expired token
		token, err := svc.Generate(claims, expDuration)
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		// Decode should fail
		_, err = svc.Decode(token)
		assert.Error(t, err)
	})

	t.Run("Generate token with empty claims", func(t *testing.T) {
		emptyClaims := map[string]interface{}{}
		expDuration := time.Minute * 5

		// Generate token
		token, err := svc.Generate(emptyClaims, expDuration)
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		// Decode token
		decodedClaims, err := svc.Decode(token)
		assert.NoError(t, err)
		assert.Empty(t, decodedClaims["player_id"])
		assert.Empty(t, decodedClaims["role"])
	})

	t.Run("Decode token of another issuer", func(t *testing.T) {
		other := NewJwtService(secretKey, "otherIssuer")
		token, err := other.Generate(map[string]interface{}{"player_id": "p"}, time.Minute)
		assert.NoError(t, err)

		_, err = svc.Decode(token)
		assert.ErrorIs(t, err, ErrWrongIssuer)
	})

	t.Run("Decoded claims carry the issuer", func(t *testing.T) {
		token, err := svc.Generate(map[string]interface{}{"player_id": "p"}, time.Minute)
		assert.NoError(t, err)

		claims, err := svc.Decode(token)
		assert.NoError(t, err)
		assert.Equal(t, issuer, claims["iss"])
		assert.Equal(t, "p", claims["player_id"])
	})
}
