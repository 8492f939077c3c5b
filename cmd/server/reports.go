package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bastabarriere/api/pkg/reports"
)

func (s *server) listReports(c *gin.Context) {
	filter := reports.Filter{
		Type:   c.Query("type"),
		Status: c.Query("status"),
	}

	list, err := s.reports.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing reports failed"})
		return
	}

	if list == nil {
		list = []reports.Report{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reports": list})
}

type createReportRequest struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Severity    string   `json:"severity"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`

	PhotoURL      *string `json:"photoUrl"`
	ReporterName  *string `json:"reporterName"`
	ReporterEmail *string `json:"reporterEmail"`
	ReporterPhone *string `json:"reporterPhone"`
}

func (r createReportRequest) validate() string {
	switch {
	case r.Type == "":
		return "type is required"
	case r.Title == "":
		return "title is required"
	case r.Description == "":
		return "description is required"
	case r.Address == "":
		return "address is required"
	case r.Severity == "":
		return "severity is required"
	case r.Lat == nil || r.Lng == nil:
		return "lat and lng are required"
	}

	return ""
}

func (s *server) createReport(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	report := reports.Report{
		Type:          req.Type,
		Title:         req.Title,
		Description:   req.Description,
		Address:       req.Address,
		Severity:      req.Severity,
		Lat:           *req.Lat,
		Lng:           *req.Lng,
		PhotoURL:      req.PhotoURL,
		ReporterName:  req.ReporterName,
		ReporterEmail: req.ReporterEmail,
		ReporterPhone: req.ReporterPhone,
	}

	if err := s.reports.Create(c.Request.Context(), &report); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creating report failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "report": report})
}

func (s *server) getReport(c *gin.Context) {
	report, err := s.reports.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, reports.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "getting report failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
}

func (s *server) updateReportStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !reports.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of open, in_progress, resolved"})
		return
	}

	report, err := s.reports.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if errors.Is(err, reports.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "updating report failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
}

func (s *server) deleteReport(c *gin.Context) {
	err := s.reports.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, reports.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "deleting report failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *server) voteReport(c *gin.Context) {
	var req struct {
		Kind string `json:"kind"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !reports.ValidVote(req.Kind) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be one of relevant, not_relevant"})
		return
	}

	report, err := s.reports.AddVote(c.Request.Context(), c.Param("id"), req.Kind)
	if errors.Is(err, reports.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "recording vote failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"relevantVotes":    report.RelevantVotes,
		"notRelevantVotes": report.NotRelevantVotes,
	})
}
