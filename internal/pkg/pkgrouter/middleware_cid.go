package pkgrouter

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/gomony/internal/pkg/pkglog"
	"github.com/shandysiswandi/gomony/internal/pkg/pkguid"
)

const (
	// HeaderCorrelationID is the canonical header used to track requests end-to-end.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is an accepted alternative header name used by some proxies.
	HeaderRequestID = "X-Request-ID"
)

const maxCIDLen = 128

// normalizeCID rejects header values that could split log lines and caps
// the length of the rest.
func normalizeCID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.ContainsAny(v, "\r\n") {
		return ""
	}
	return v[:min(len(v), maxCIDLen)]
}

func middlewareCorrelationID(uid pkguid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := incomingCID(r.Header)
			if cid == "" && uid != nil {
				cid = uid.Generate()
			}

			if cid != "" {
				w.Header().Set(HeaderCorrelationID, cid)
				r = r.WithContext(pkglog.SetCorrelationID(r.Context(), cid))
			}

			next.ServeHTTP(w, r)
		})
	}
}

func incomingCID(h http.Header) string {
	for _, key := range []string{HeaderCorrelationID, HeaderRequestID} {
		if cid := normalizeCID(h.Get(key)); cid != "" {
			return cid
		}
	}
	return ""
}
