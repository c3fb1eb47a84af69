package audit

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newEchoContext(remoteAddr string, headers map[string]string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestClientIPFromForwardedHeader(t *testing.T) {
	c := newEchoContext("192.0.2.1:1234", map[string]string{
		"X-Forwarded-For": "203.0.113.7, 10.0.0.1",
	})
	if got := clientIP(c); got != "203.0.113.7" {
		t.Errorf("clientIP = %q, want first forwarded address", got)
	}
}

func TestClientIPSkipsGarbageHeader(t *testing.T) {
	c := newEchoContext("192.0.2.1:1234", map[string]string{
		"X-Forwarded-For": "not-an-ip",
	})
	if got := clientIP(c); got != "192.0.2.1" {
		t.Errorf("clientIP = %q, want remote addr fallback", got)
	}
}

func TestClientIPDefault(t *testing.T) {
	c := newEchoContext("garbage", nil)
	if got := clientIP(c); got != "0.0.0.0" {
		t.Errorf("clientIP = %q, want 0.0.0.0", got)
	}
}

func TestInfoFromEchoTruncatesUserAgent(t *testing.T) {
	c := newEchoContext("192.0.2.1:1234", map[string]string{
		"User-Agent": strings.Repeat("x", 300),
	})

	info := InfoFromEcho(c, "u-1")
	if len(info.UserAgent) != 255 {
		t.Errorf("user agent length = %d, want 255", len(info.UserAgent))
	}
	if info.UserID != "u-1" {
		t.Errorf("user id = %q", info.UserID)
	}
}

func TestRequestInfoRoundTrip(t *testing.T) {
	info := RequestInfo{UserID: "u-1", IPAddress: "10.0.0.1", UserAgent: "agent"}
	ctx := WithRequestInfo(newEchoContext("x", nil).Request().Context(), info)

	if got := RequestInfoFrom(ctx); got != info {
		t.Errorf("round trip mismatch: %+v", got)
	}
}
