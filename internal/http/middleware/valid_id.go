package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RequireValidChannelID rejects requests whose ":id" path param is not a
// positive integer. Channel handlers behind it re-parse the param without
// checking the error.
func RequireValidChannelID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		c.Next()
	}
}
