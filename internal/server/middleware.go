package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type ctxKey int

const ctxKeyUserID ctxKey = iota

func parseUserID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// userIDMiddleware validates the {userID} path parameter.
func userIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUserID(chi.URLParam(r, "userID"))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyUserID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFrom(r *http.Request) int64 {
	return r.Context().Value(ctxKeyUserID).(int64)
}
