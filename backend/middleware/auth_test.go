// Copyright (C) 2025 Mukon Labs <dev@mukon.chat>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mukonchat/graph/backend/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	body := base64.RawURLEncoding.EncodeToString(payload)

	message := header + "." + body
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	sig := base64.RawURLEncoding.EncodeToString(h.Sum(nil))

	return message + "." + sig
}

func testClaims(identity models.Identity) Claims {
	now := time.Now()
	return Claims{
		Identity:  identity.String(),
		ExpiresAt: now.Add(time.Hour).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    "mukon",
	}
}

// serve runs a request with the given Authorization header through the
// middleware and captures the identity the inner handler sees.
func serve(t *testing.T, authHeader string) (*httptest.ResponseRecorder, *models.Identity) {
	t.Helper()
	var seen *models.Identity
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := CallerIdentity(r); ok {
			seen = &id
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/graph/contacts", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()

	NewAuthMiddleware(testSecret, "mukon")(inner).ServeHTTP(rec, req)
	return rec, seen
}

func TestAuthAcceptsValidToken(t *testing.T) {
	var identity models.Identity
	identity[0] = 42

	token := signToken(t, testSecret, testClaims(identity))
	rec, seen := serve(t, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, identity, *seen)
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	rec, seen := serve(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	var identity models.Identity
	token := signToken(t, "other-secret", testClaims(identity))

	rec, _ := serve(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	var identity models.Identity
	claims := testClaims(identity)
	claims.ExpiresAt = time.Now().Add(-time.Minute).Unix()

	rec, _ := serve(t, "Bearer "+signToken(t, testSecret, claims))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsWrongIssuer(t *testing.T) {
	var identity models.Identity
	claims := testClaims(identity)
	claims.Issuer = "someone-else"

	rec, _ := serve(t, "Bearer "+signToken(t, testSecret, claims))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsMalformedIdentity(t *testing.T) {
	claims := testClaims(models.Identity{})
	claims.Identity = "not-hex"

	rec, _ := serve(t, "Bearer "+signToken(t, testSecret, claims))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
