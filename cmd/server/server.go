package main

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/bastabarriere/api/pkg/adminauth"
	"github.com/bastabarriere/api/pkg/geocoding"
	"github.com/bastabarriere/api/pkg/middleware"
	"github.com/bastabarriere/api/pkg/reports"
)

type addressResolver interface {
	Resolve(ctx context.Context, rawAddress string) (*geocoding.ResolvedAddress, error)
	Municipality() string
}

type reverseGeocoder interface {
	Reverse(lat, lng float64) (string, error)
}

type server struct {
	resolver addressResolver
	reverse  reverseGeocoder
	reports  reports.Repository
	admin    *adminauth.Service
}

func (s *server) router(debug bool) *gin.Engine {
	r := gin.New()
	r.Use(middleware.TraceID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger(debug))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := r.Group("/api")

	api.GET("/geocode", s.geocodeAddress)
	api.POST("/geocode/batch", s.geocodeBatch)
	api.GET("/geocode/reverse", s.reverseGeocode)

	api.GET("/reports", s.listReports)
	api.POST("/reports", s.createReport)
	api.GET("/reports/:id", s.getReport)
	api.POST("/reports/:id/vote", s.voteReport)

	api.POST("/upload", s.uploadPhoto)

	api.POST("/admin/login", s.adminLogin)
	api.GET("/admin/verify", s.admin.Middleware(), s.adminVerify)

	staff := api.Group("", s.admin.Middleware())
	staff.PATCH("/reports/:id", s.updateReportStatus)
	staff.DELETE("/reports/:id", s.deleteReport)

	return r
}
