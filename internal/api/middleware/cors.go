package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func ConfigCORS(allowedDomains []string) gin.HandlerFunc {
	conf := cors.DefaultConfig()
	conf.AddAllowHeaders("Authorization", "Accept-Language")
	conf.AddExposeHeaders("X-Request-ID")

	if len(allowedDomains) == 0 {
		conf.AllowAllOrigins = true
		return cors.New(conf)
	}

	conf.AllowOrigins = allowedDomains
	conf.AllowCredentials = true

	return cors.New(conf)
}
