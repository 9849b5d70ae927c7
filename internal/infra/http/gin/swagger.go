package ginserver

import (
	_ "embed"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
)

// The OpenAPI document for the booking API ships inside the binary so the
// docs page works without any static file hosting.

//go:embed swagger/openapi.json
var apiDocJSON []byte

//go:embed swagger/index.html
var apiDocPage string

func registerSwaggerRoutes(router gin.IRoutes) {
	router.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", apiDocJSON)
	})
	router.GET("/swagger", func(c *gin.Context) {
		page := strings.ReplaceAll(apiDocPage, "{{SPEC_URL}}", "/swagger/doc.json")
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	})
}
