package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/infrastructure/ratelimit"
	"furiousrepair/pkg/clock"
	"furiousrepair/pkg/errors"
)

func ok(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	guard := RequireRole(entity.RoleRepairer)(ok)

	cases := []struct {
		name      string
		principal interface{}
		code      string
	}{
		{"no principal", nil, errors.CodeUnauthorized},
		{"other role", entity.Principal{SubjectID: "u1", Role: entity.RoleUser}, errors.CodeForbidden},
		{"empty subject", entity.Principal{Role: entity.RoleRepairer}, errors.CodeUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			if tc.principal != nil {
				c.Set(principalKey, tc.principal)
			}
			err := guard(c)
			assert.True(t, errors.Is(err, tc.code), "got %v", err)
		})
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(principalKey, entity.Principal{SubjectID: "r1", Role: entity.RoleRepairer})
	require.NoError(t, guard(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitSetsRetryAfter(t *testing.T) {
	e := echo.New()
	clk := clock.NewFake(codecStart)
	limiter := ratelimit.NewRateLimiter(map[string]ratelimit.Policy{
		ratelimit.ActionAuth: ratelimit.PerMinute(1),
	}, ratelimit.PerMinute(100), clk)
	handler := RateLimit(limiter, ratelimit.ActionAuth)(ok)

	call := func() (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		rec := httptest.NewRecorder()
		return rec, handler(e.NewContext(req, rec))
	}

	_, err := call()
	require.NoError(t, err)

	rec, err := call()
	assert.True(t, errors.Is(err, errors.CodeTooManyRequests))
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	clk.Advance(time.Minute)
	_, err = call()
	assert.NoError(t, err)
}

func TestSameSiteFollowsSecure(t *testing.T) {
	assert.Equal(t, http.SameSiteNoneMode, sameSite(true))
	assert.Equal(t, http.SameSiteLaxMode, sameSite(false))
}
