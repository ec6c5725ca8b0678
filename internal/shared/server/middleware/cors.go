package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Origins matches request origins against an allow list. Entries are exact
// origins or "scheme://*.domain" for any subdomain of domain.
type Origins struct {
	exact    map[string]struct{}
	suffixes []string
}

func NewOrigins(allowed []string) Origins {
	o := Origins{exact: make(map[string]struct{})}
	for _, raw := range allowed {
		entry := strings.TrimRight(strings.TrimSpace(raw), "/")
		if entry == "" {
			continue
		}
		if scheme, host, ok := strings.Cut(entry, "://*."); ok && host != "" {
			o.suffixes = append(o.suffixes, scheme+"://|."+host)
			continue
		}
		o.exact[entry] = struct{}{}
	}
	return o
}

// Allowed reports whether origin may call the API.
func (o Origins) Allowed(origin string) bool {
	if origin == "" {
		return false
	}
	if _, ok := o.exact[origin]; ok {
		return true
	}
	for _, s := range o.suffixes {
		scheme, suffix, _ := strings.Cut(s, "|")
		host, ok := strings.CutPrefix(origin, scheme)
		if ok && strings.HasSuffix(host, suffix) && !strings.ContainsAny(host, "/@") {
			return true
		}
	}
	return false
}

// CORS sets CORS headers for allowed origins and answers preflight requests.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	origins := NewOrigins(allowedOrigins)
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")
		if origin := c.GetHeader("Origin"); origins.Allowed(origin) {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")
			h.Set("Access-Control-Expose-Headers", "X-Request-Id, X-Template-Id, Retry-After")
			h.Set("Access-Control-Max-Age", "600")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
