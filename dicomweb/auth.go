package dicomweb

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MDWio/ohif-viewer/interfaces"
)

// BearerToken returns a header provider sending "Authorization: Bearer <token>".
// An empty token produces no header.
func BearerToken(token string) interfaces.HeaderProvider {
	return StaticHeaders(bearerHeader(token))
}

// StaticHeaders returns a header provider that always returns a copy of h.
func StaticHeaders(h http.Header) interfaces.HeaderProvider {
	return interfaces.HeaderProviderFunc(func(context.Context) http.Header {
		return h.Clone()
	})
}

func bearerHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// LogErrorInterceptor reports transport failures to log.
func LogErrorInterceptor(log *slog.Logger) interfaces.ErrorInterceptor {
	return func(ctx context.Context, err error) {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			level := slog.LevelWarn
			if errors.Is(err, interfaces.ErrUnauthorized) {
				level = slog.LevelError
			}
			log.LogAttrs(ctx, level, "DICOMweb request failed",
				slog.String("url", httpErr.URL),
				slog.Int("status", httpErr.StatusCode))
			return
		}
		log.Warn("DICOMweb request failed", "err", err)
	}
}
