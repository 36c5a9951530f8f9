package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Recoverer converts panics into the uniform 500 envelope. The panic text is
// exposed only when debug is set; production responses stay generic.
func Recoverer(debug bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().
						Interface("panic", rec).
						Str("path", r.URL.Path).
						Msg("Recovered from panic")

					detail := "Something went wrong"
					if debug {
						detail = fmt.Sprint(rec)
					}

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					fmt.Fprintf(w, `{"success":false,"message":"Internal server error","error":%q}`, detail)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
