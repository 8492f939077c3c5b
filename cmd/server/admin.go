package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bastabarriere/api/pkg/adminauth"
)

func (s *server) adminLogin(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	token, err := s.admin.Login(req.Password)
	if errors.Is(err, adminauth.ErrBadPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong password"})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

func (s *server) adminVerify(c *gin.Context) {
	// The auth middleware already rejected anything invalid.
	c.JSON(http.StatusOK, gin.H{"success": true})
}
