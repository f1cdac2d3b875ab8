package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/alora-app/alora/internal/pkg/errors"
	"github.com/alora-app/alora/internal/pkg/utils"
)

// WebhookSecretHeader carries the shared secret on billing deliveries.
const WebhookSecretHeader = "X-Webhook-Secret"

// WebhookAuth returns a middleware that authenticates webhook deliveries
// with a shared secret. The comparison is constant-time.
func WebhookAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(WebhookSecretHeader)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				utils.WriteError(w, errors.Unauthorized("Invalid webhook secret"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
