package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bastabarriere/api/pkg/upload"
)

func (s *server) uploadPhoto(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reading upload failed"})
		return
	}
	defer f.Close()

	file, err := upload.EncodeImage(f, header.Filename, header.Header.Get("Content-Type"))
	if errors.Is(err, upload.ErrNotAnImage) || errors.Is(err, upload.ErrTooLarge) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "encoding upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "file": file})
}
