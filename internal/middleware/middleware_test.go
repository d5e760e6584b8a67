package middleware

import (
    "net/http"
    "net/http/httptest"
    "strconv"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"

    "github.com/JasminRadadiya29/QuickCourt-sub000/internal/config"
    "github.com/JasminRadadiya29/QuickCourt-sub000/internal/utils"
)

const secret = "mw-secret"

func whoami(c echo.Context) error {
    id, ok := UserID(c)
    if !ok {
        return c.String(http.StatusOK, "anon")
    }
    return c.String(http.StatusOK, strconv.FormatUint(id, 10))
}

func serve(e *echo.Echo, method, path, tok string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(method, path, nil)
    if tok != "" {
        req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestJWTAuth(t *testing.T) {
    e := echo.New()
    e.GET("/me", whoami, JWTAuth(secret))

    good, err := utils.NewAccessToken(secret, 42, RoleUser, time.Minute)
    require.NoError(t, err)
    rec := serve(e, http.MethodGet, "/me", good.Token)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "42", rec.Body.String())

    other, err := utils.NewAccessToken("other-secret", 42, RoleUser, time.Minute)
    require.NoError(t, err)
    assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/me", other.Token).Code)
    assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/me", "").Code)

    expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
        "sub": 42, "exp": time.Now().Add(-time.Minute).Unix(),
    }).SignedString([]byte(secret))
    require.NoError(t, err)
    assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/me", expired).Code)

    stringSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
        "sub": "7", "role": RoleUser, "exp": time.Now().Add(time.Minute).Unix(),
    }).SignedString([]byte(secret))
    require.NoError(t, err)
    rec = serve(e, http.MethodGet, "/me", stringSub)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "7", rec.Body.String())

    noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
        "sub": "alice", "exp": time.Now().Add(time.Minute).Unix(),
    }).SignedString([]byte(secret))
    require.NoError(t, err)
    assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/me", noSub).Code)
}

func TestRequireRole(t *testing.T) {
    e := echo.New()
    e.GET("/admin", whoami, JWTAuth(secret), RequireRole(RoleAdmin))

    user, err := utils.NewAccessToken(secret, 1, RoleUser, time.Minute)
    require.NoError(t, err)
    admin, err := utils.NewAccessToken(secret, 2, RoleAdmin, time.Minute)
    require.NoError(t, err)

    assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/admin", user.Token).Code)
    assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/admin", admin.Token).Code)
}

func newRedis(t *testing.T) *redis.Client {
    t.Helper()
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = rdb.Close() })
    return rdb
}

func TestTokenBucket(t *testing.T) {
    cfg := config.RateLimitConfig{
        Enabled:        true,
        Capacity:       2,
        RefillTokens:   1,
        RefillInterval: time.Hour,
        TTL:            2 * time.Hour,
        KeyStrategy:    "ip_route",
        Prefix:         "rl",
    }
    e := echo.New()
    e.GET("/limited", whoami, NewTokenBucket(cfg, newRedis(t), zap.NewNop()))

    assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/limited", "").Code)
    rec := serve(e, http.MethodGet, "/limited", "")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

    rec = serve(e, http.MethodGet, "/limited", "")
    assert.Equal(t, http.StatusTooManyRequests, rec.Code)
    assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestTokenBucket_DisabledWithoutRedis(t *testing.T) {
    e := echo.New()
    e.GET("/limited", whoami, NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil, nil))
    for range 3 {
        assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/limited", "").Code)
    }
}

func TestRedisCache(t *testing.T) {
    cfg := config.CacheConfig{
        Enabled:     true,
        Methods:     map[string]bool{http.MethodGet: true},
        TTL:         time.Minute,
        KeyStrategy: "route_query",
        Prefix:      "cache:test",
    }
    calls := 0
    e := echo.New()
    e.GET("/venues/:id/courts", func(c echo.Context) error {
        calls++
        return c.JSON(http.StatusOK, echo.Map{"venue": c.Param("id"), "calls": calls})
    }, NewRedisCache(cfg, newRedis(t)))

    first := serve(e, http.MethodGet, "/venues/1/courts", "")
    assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
    second := serve(e, http.MethodGet, "/venues/1/courts", "")
    assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
    assert.Equal(t, first.Body.String(), second.Body.String())
    assert.Equal(t, echo.MIMEApplicationJSON, second.Header().Get(echo.HeaderContentType))

    other := serve(e, http.MethodGet, "/venues/2/courts", "")
    assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
    assert.Contains(t, other.Body.String(), `"venue":"2"`)
    assert.Equal(t, 2, calls)
}

func TestPayloadRoundTrip(t *testing.T) {
    hdr := http.Header{"Content-Type": []string{"application/json"}}
    bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
    require.NoError(t, err)

    status, got, body, ok := decodePayload(bs)
    require.True(t, ok)
    assert.Equal(t, http.StatusOK, status)
    assert.Equal(t, "application/json", got.Get("Content-Type"))
    assert.Equal(t, `{"a":1}`, string(body))

    _, _, _, ok = decodePayload([]byte{0, 1})
    assert.False(t, ok)
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
    e := echo.New()
    e.Use(RequestLogger(zap.NewNop()))
    e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

    rec := serve(e, http.MethodGet, "/ping", "")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

    req := httptest.NewRequest(http.MethodGet, "/missing", nil)
    req.Header.Set(echo.HeaderXRequestID, "fixed-id")
    rec = httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    assert.Equal(t, http.StatusNotFound, rec.Code)
    assert.Equal(t, "fixed-id", rec.Header().Get(echo.HeaderXRequestID))
}

func TestRecover_PanicBecomes500(t *testing.T) {
    e := echo.New()
    e.Use(RequestLogger(zap.NewNop()), Recover(zap.NewNop()))
    e.GET("/boom", func(c echo.Context) error { panic("boom") })

    rec := serve(e, http.MethodGet, "/boom", "")
    assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
