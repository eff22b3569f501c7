package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/topicmux/topicmux/internal/service/profile"
	"github.com/topicmux/topicmux/pkg/types"
)

func (s *Server) upsertProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input types.ConnectionProfile
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := s.profileService.Upsert(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, input.Redacted())
	}
}

func (s *Server) listProfilesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		profiles, err := s.profileService.List()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		resp := make([]*types.ConnectionProfile, len(profiles))
		for i, p := range profiles {
			resp[i] = p.Redacted()
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (s *Server) getProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}

		p, err := s.profileService.Get(name)
		if err != nil {
			if errors.Is(err, profile.ErrProfileNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("profile %s not found", name)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, p.Redacted())
	}
}

func (s *Server) deleteProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}

		if err := s.profileService.Delete(name); err != nil {
			if errors.Is(err, profile.ErrProfileNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("profile %s not found", name)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
