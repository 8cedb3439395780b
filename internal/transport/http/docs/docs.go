// Package docs serves the OpenAPI description of the HTTP API and a
// Swagger UI page that renders it.
package docs

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed openapi.json
var openAPI []byte

const swaggerUIVersion = "5.17.14"

const uiPage = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Brands CRUD API</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@` + swaggerUIVersion + `/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@` + swaggerUIVersion + `/swagger-ui-bundle.js"></script>
<script>
window.ui = SwaggerUIBundle({ url: "/api-docs/openapi.json", dom_id: "#swagger-ui" });
</script>
</body>
</html>
`

// Register mounts GET /api-docs (UI) and GET /api-docs/openapi.json.
func Register(router gin.IRoutes) {
	router.GET("/api-docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(uiPage))
	})
	router.GET("/api-docs/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", openAPI)
	})
}
