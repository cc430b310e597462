// Package router wires handlers onto the Gin engine.
package router

import (
	"github.com/gin-gonic/gin"

	"taxdocs/internal/handler"
	"taxdocs/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	redactionH *handler.RedactionHandler,
	extractionH *handler.ExtractionHandler,
	jobH *handler.JobHandler,
	infoH *handler.InfoHandler,
	downloadH *handler.DownloadHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	r.GET("/health", healthH.Health)

	r.GET("/scan-pdfs", redactionH.Scan)
	r.POST("/mask-pdfs", redactionH.Start)
	r.POST("/run-ocr", extractionH.Start)

	r.GET("/job-status/:id", jobH.Status)
	r.GET("/stream-logs/:id", jobH.Stream)

	r.POST("/extract-info", infoH.PersonalInfo)
	r.GET("/download-masked", downloadH.Download)

	return r
}
