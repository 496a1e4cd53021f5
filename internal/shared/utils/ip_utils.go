package utils

import (
	"net"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
)

// forwardedHeaders are set by the store proxy, most trusted first.
var forwardedHeaders = []string{"X-Forwarded-For", "X-Real-IP"}

// storeNetworks are the ranges registers connect from.
var storeNetworks = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("fc00::/7"),
}

// ExtractClientIP returns the register address behind the store proxy: the
// first hop of a forwarded header, else the connection address. Unparseable
// values fall through to the next source.
func ExtractClientIP(c *gin.Context) string {
	for _, header := range forwardedHeaders {
		value := c.GetHeader(header)
		if value == "" {
			continue
		}
		first, _, _ := strings.Cut(value, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.Unmap().String()
		}
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.Unmap().String()
	}

	return "127.0.0.1"
}

// IsPrivateIP reports whether ip is loopback or inside a store network.
func IsPrivateIP(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	if addr.IsLoopback() {
		return true
	}
	for _, network := range storeNetworks {
		if network.Contains(addr) {
			return true
		}
	}
	return false
}
