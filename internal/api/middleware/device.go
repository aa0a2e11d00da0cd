package middleware

import (
	"net/http"

	"github.com/dom/superhero-teams/internal/gate"
)

const DevicePinHeader = "X-Device-Pin"

// DeviceCredential hands the device PIN from the request to the gate. A
// request without the header reaches the gate with no credential, which it
// treats as a cancelled prompt.
func DeviceCredential(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if pin := r.Header.Get(DevicePinHeader); pin != "" {
			r = r.WithContext(gate.WithCredential(r.Context(), pin))
		}
		next.ServeHTTP(w, r)
	})
}
