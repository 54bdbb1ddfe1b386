package restapi

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterSwaggerRoutes serves the static OpenAPI document and the Swagger UI
// under the configured path.
func RegisterSwaggerRoutes(router *gin.Engine, path string) {
	router.StaticFile("/swagger.yaml", "docs/swagger.yaml")
	router.GET(path+"/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger.yaml")))
}
