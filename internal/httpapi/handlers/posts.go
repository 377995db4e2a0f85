package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/linkedcraft/internal/common"
	"github.com/suPer8Hu/linkedcraft/internal/httpapi/middleware"
)

// ListPosts pages through the caller's archived generations, newest first.
// GET /posts?limit=20&before=<request_id>
func (h *Handler) ListPosts(c *gin.Context) {
	id, ok := middleware.IdentityFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			common.Fail(c, http.StatusBadRequest, 10002, "invalid limit")
			return
		}
		limit = n
	}

	recs, err := h.History.ListByUser(c.Request.Context(), id.ID, limit, c.Query("before"))
	if err != nil {
		log.Printf("[history] list failed user_id=%s err=%v", id.ID, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to list posts")
		return
	}

	next := ""
	if len(recs) > 0 {
		next = recs[len(recs)-1].ID
	}
	common.OK(c, gin.H{"posts": recs, "next_before": next})
}
