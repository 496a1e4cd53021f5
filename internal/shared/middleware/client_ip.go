package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"pos-backend/internal/shared/utils"
)

const ContextClientIP = "client_ip"

// ClientIPMiddleware stores the register's IP on the context. Registers
// sit behind the store proxy, so forwarded headers are honoured.
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := utils.ExtractClientIP(c)
		c.Set(ContextClientIP, clientIP)

		log.Debug().
			Str("ip", clientIP).
			Bool("is_private", utils.IsPrivateIP(clientIP)).
			Str("path", c.Request.URL.Path).
			Msg("client ip extracted")

		c.Next()
	}
}
