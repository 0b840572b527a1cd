package handlers

import (
	"net/http"
	"strconv"
)

// pagination reads page/limit query params with sane bounds
func pagination(r *http.Request, defaultLimit int) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 0 {
		page = 0
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = defaultLimit
	}
	return page, limit
}
