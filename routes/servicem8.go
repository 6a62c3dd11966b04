package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"customer-portal-server/servicem8"
)

// ServiceM8Handler exposes diagnostic reads against the external
// field-service API. These endpoints surface upstream failures directly;
// they exist to verify the integration, not to serve booking data.
type ServiceM8Handler struct {
	Client *servicem8.Client
}

// NewServiceM8Handler creates a ServiceM8Handler.
func NewServiceM8Handler(client *servicem8.Client) *ServiceM8Handler {
	return &ServiceM8Handler{Client: client}
}

// Register registers ServiceM8 diagnostic routes on an authenticated group.
func (h *ServiceM8Handler) Register(router *gin.RouterGroup) {
	router.GET("/jobs", h.jobs)
	router.GET("/company", h.company)
	router.GET("/test", h.test)
}

func (h *ServiceM8Handler) jobs(c *gin.Context) {
	jobs, err := h.Client.Jobs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch jobs from ServiceM8"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"source":  "ServiceM8 API",
		"data":    jobs,
	})
}

func (h *ServiceM8Handler) company(c *gin.Context) {
	companies, err := h.Client.CompanyInfo(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch from ServiceM8"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"source":  "ServiceM8 API",
		"data":    companies,
	})
}

// test probes connectivity. It answers 200 either way so the frontend can
// display the integration state, including "configured but failing auth".
func (h *ServiceM8Handler) test(c *gin.Context) {
	if !h.Client.Configured() {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "ServiceM8 API key not configured",
		})
		return
	}

	companies, err := h.Client.CompanyInfo(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "ServiceM8 API integration configured",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Successfully connected to ServiceM8 API",
		"data":    companies,
	})
}
