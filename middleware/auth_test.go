package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"imagefinder/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func echoUserID() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(UserID(r.Context())))
	})
}

func TestRequireAuthAcceptsBearerToken(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", testSecret)

	token := signToken(t, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()})
	r := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	RequireAuth(echoUserID()).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
}

func TestRequireAuthAcceptsQueryToken(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", testSecret)

	token := signToken(t, jwt.MapClaims{"sub": "user-2", "exp": time.Now().Add(time.Hour).Unix()})
	r := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	w := httptest.NewRecorder()

	RequireAuth(echoUserID()).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-2", w.Body.String())
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", testSecret)

	w := httptest.NewRecorder()
	RequireAuth(echoUserID()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/history", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", testSecret)

	token := signToken(t, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Hour).Unix()})
	r := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	RequireAuth(echoUserID()).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthRejectsMissingSubClaim(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", testSecret)

	token := signToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	r := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	RequireAuth(echoUserID()).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResolveUserPassesThroughWithoutToken(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", testSecret)

	w := httptest.NewRecorder()
	ResolveUser(echoUserID()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/images?query=cat", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestResolveUserAttachesValidPrincipal(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", testSecret)

	token := signToken(t, jwt.MapClaims{"sub": "user-3", "exp": time.Now().Add(time.Hour).Unix()})
	r := httptest.NewRequest(http.MethodGet, "/api/images?query=cat", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	ResolveUser(echoUserID()).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-3", w.Body.String())
}

func TestResolveUserIgnoresForgedToken(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", testSecret)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()}).
		SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/images?query=cat", nil)
	r.Header.Set("Authorization", "Bearer "+forged)
	w := httptest.NewRecorder()

	ResolveUser(echoUserID()).ServeHTTP(w, r)

	// Request goes through, but with no principal attached.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}
