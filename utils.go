package main

import (
	"net"
	"net/http"
	"strings"
)

// isAJAX reports whether the request came from the page script
func isAJAX(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// isBrowserUA checks if the user agent appears to be from a web browser
func isBrowserUA(ua string) bool {
	ua = strings.ToLower(ua)
	browserIndicators := []string{
		"mozilla", "msie", "trident", "edge", "chrome", "safari",
		"firefox", "opera", "webkit", "gecko", "khtml",
	}
	for _, indicator := range browserIndicators {
		if strings.Contains(ua, indicator) {
			return true
		}
	}
	return false
}

// wantsHTML reports whether a non-AJAX request expects a page back. Other
// clients such as curl get plain text.
func wantsHTML(r *http.Request) bool {
	return isBrowserUA(r.Header.Get("User-Agent")) || strings.Contains(r.Header.Get("Accept"), "text/html")
}

// clientHost strips the port from a remote address
func clientHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
