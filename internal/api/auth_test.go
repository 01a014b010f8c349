package api

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agrolink/chat-service/internal/database"
	"github.com/agrolink/chat-service/internal/testutil"
	"github.com/agrolink/chat-service/internal/types"
)

func newTestApp(t *testing.T, db database.ChatRepository) *ChatApp {
	return &ChatApp{
		log:        testutil.TestLogger(t),
		db:         db,
		signingKey: []byte("test-signing-key"),
	}
}

func TestJwtRoundTrip(t *testing.T) {
	app := newTestApp(t, &database.MockChatRepository{})

	token, err := app.createJwtForSession(types.User{Id: 7}, time.Hour)
	assert.NoError(t, err, "expected token creation to succeed")

	userId, err := app.extractUserIdFromToken(token)
	assert.NoError(t, err, "expected token to verify")
	assert.Equal(t, 7, userId)
}

func TestJwtExpired(t *testing.T) {
	app := newTestApp(t, &database.MockChatRepository{})

	token, err := app.createJwtForSession(types.User{Id: 7}, -time.Hour)
	assert.NoError(t, err)

	_, err = app.extractUserIdFromToken(token)
	assert.Error(t, err, "expected expired token to be rejected")
}

func TestJwtWrongKey(t *testing.T) {
	app := newTestApp(t, &database.MockChatRepository{})
	other := newTestApp(t, &database.MockChatRepository{})
	other.signingKey = []byte("a-different-key")

	token, err := app.createJwtForSession(types.User{Id: 7}, time.Hour)
	assert.NoError(t, err)

	_, err = other.extractUserIdFromToken(token)
	assert.Error(t, err, "expected token signed with another key to be rejected")
}

func Test_bearerToken(t *testing.T) {
	t.Run("authorization header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/auth/session", nil)
		r.Header.Set("Authorization", "Bearer abc123")

		token, err := bearerToken(r)
		assert.NoError(t, err)
		assert.Equal(t, "abc123", token)
	})

	t.Run("malformed authorization header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/auth/session", nil)
		r.Header.Set("Authorization", "abc123")

		_, err := bearerToken(r)
		assert.Error(t, err, "expected header without Bearer prefix to be rejected")
	})

	t.Run("query parameter", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws?token=abc123", nil)

		token, err := bearerToken(r)
		assert.NoError(t, err)
		assert.Equal(t, "abc123", token)
	})

	t.Run("cookie", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/auth/session", nil)
		r.AddCookie(createJwtCookie("abc123", time.Hour))

		token, err := bearerToken(r)
		assert.NoError(t, err)
		assert.Equal(t, "abc123", token)
	})

	t.Run("no credential", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/auth/session", nil)

		_, err := bearerToken(r)
		assert.Error(t, err, "expected request without a credential to be rejected")
	})
}

func Test_hashAndVerifyPassword(t *testing.T) {
	hash, err := hashPassword("hunter2")
	assert.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, verifyPassword(hash, "hunter2"))
	assert.False(t, verifyPassword(hash, "hunter3"))
}
