package audit

import (
	"context"
	"net"
	"net/netip"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequestInfo is the ambient caller identity attached to a request context so
// services can log without depending on the transport.
type RequestInfo struct {
	UserID    string
	IPAddress string
	UserAgent string
}

type contextKey struct{}

func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, contextKey{}, info)
}

func RequestInfoFrom(ctx context.Context) RequestInfo {
	info, _ := ctx.Value(contextKey{}).(RequestInfo)
	return info
}

// InfoFromEcho captures the caller's address and user agent. Forwarding
// headers are walked first; the first syntactically valid address wins.
func InfoFromEcho(c echo.Context, userID string) RequestInfo {
	ua := c.Request().UserAgent()
	if len(ua) > 255 {
		ua = ua[:255]
	}
	return RequestInfo{
		UserID:    userID,
		IPAddress: clientIP(c),
		UserAgent: ua,
	}
}

func clientIP(c echo.Context) string {
	headers := []string{"X-Forwarded-For", "X-Real-IP", "Forwarded-For"}
	for _, h := range headers {
		for _, part := range strings.Split(c.Request().Header.Get(h), ",") {
			ip := strings.TrimSpace(part)
			if _, err := netip.ParseAddr(ip); err == nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(c.Request().RemoteAddr)
	if err != nil {
		host = c.Request().RemoteAddr
	}
	if _, err := netip.ParseAddr(host); err == nil {
		return host
	}
	return "0.0.0.0"
}
