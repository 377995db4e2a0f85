package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/linkedcraft/internal/common"
)

func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("[panic] request_id=%s path=%s err=%v", c.GetString(RequestIDKey), c.Request.URL.Path, recovered)
		common.AbortFail(c, http.StatusInternalServerError, 50001, "internal error")
	})
}
