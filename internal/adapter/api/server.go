package api

import (
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"furiousrepair/pkg/response"
)

type ServerOptions struct {
	FrontendOrigin string
	// RequestLog enables echo's per-request access log.
	RequestLog bool
	// TrustedProxies may set X-Forwarded-For. With none, the client IP is
	// the remote address of the connection.
	TrustedProxies []*net.IPNet
}

// NewEcho returns an echo instance with the shared middleware stack, the
// validator and the JSON error handler installed. Routes are added by the
// router package.
func NewEcho(opts ServerOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.IPExtractor = ipExtractor(opts.TrustedProxies)
	e.Validator = NewValidator()
	e.HTTPErrorHandler = response.HTTPErrorHandler

	e.Use(echo.WrapMiddleware(otelhttp.NewMiddleware("furious-repair-api")))
	if opts.RequestLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{opts.FrontendOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAccept, echo.HeaderOrigin},
		AllowCredentials: true,
	}))

	return e
}

func ipExtractor(proxies []*net.IPNet) echo.IPExtractor {
	if len(proxies) == 0 {
		return echo.ExtractIPDirect()
	}
	trust := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, proxy := range proxies {
		trust = append(trust, echo.TrustIPRange(proxy))
	}
	return echo.ExtractIPFromXFFHeader(trust...)
}
