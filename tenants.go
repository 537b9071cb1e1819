package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"rentledger/db/store"
)

// Tenant handler functions

// @Summary Get all tenants
// @Description Retrieve all tenants with rent history and absence periods
// @Tags tenants
// @Produce json
// @Success 200 {array} Tenant "List of tenants"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/tenants [get]
func getTenants(c *gin.Context) {
	tenants, err := loadTenants(c.Request.Context())
	if err != nil {
		logg.Error().Err(err).Msg("failed to list tenants")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching tenants"})
		return
	}
	c.JSON(http.StatusOK, tenants)
}

// @Summary Get tenant
// @Description Retrieve one tenant by ID
// @Tags tenants
// @Produce json
// @Param id path string true "Tenant ID"
// @Success 200 {object} Tenant "Tenant"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/tenants/{id} [get]
func getTenant(c *gin.Context) {
	row, err := dataStore.GetTenant(c.Request.Context(), c.Param("id"))
	if err != nil {
		status, message := handleDatabaseError(err)
		c.JSON(status, gin.H{"error": message})
		return
	}
	c.JSON(http.StatusOK, tenantRowToTenant(row))
}

// @Summary Create tenant
// @Description Create a new tenant record
// @Tags tenants
// @Accept json
// @Produce json
// @Param tenant body Tenant true "Tenant data (sage_id and tenant_name required)"
// @Success 201 {object} Tenant "Created tenant"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 409 {object} map[string]interface{} "Tenant already exists"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/tenants [post]
func createTenant(c *gin.Context) {
	var req Tenant
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := validateName(req.SageID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sage_id cannot be empty"})
		return
	}
	if err := validateName(req.TenantName); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_name cannot be empty"})
		return
	}
	if req.WeeklyRent.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weekly_rent cannot be negative"})
		return
	}
	if req.Status == "" {
		req.Status = "active"
	}

	row, err := dataStore.CreateTenant(c.Request.Context(), tenantToTenantRow(req))
	if err != nil {
		status, message := handleDatabaseError(err)
		logg.Error().Err(err).Msg("failed to create tenant")
		c.JSON(status, gin.H{"error": message})
		return
	}
	c.JSON(http.StatusCreated, tenantRowToTenant(row))
}

// @Summary Update tenant
// @Description Replace a tenant record
// @Tags tenants
// @Accept json
// @Produce json
// @Param id path string true "Tenant ID"
// @Param tenant body Tenant true "Tenant data"
// @Success 200 {object} Tenant "Updated tenant"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/tenants/{id} [put]
func updateTenant(c *gin.Context) {
	var req Tenant
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := validateName(req.SageID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sage_id cannot be empty"})
		return
	}
	if err := validateName(req.TenantName); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_name cannot be empty"})
		return
	}
	if req.WeeklyRent.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weekly_rent cannot be negative"})
		return
	}

	req.ID = c.Param("id")
	row, err := dataStore.UpdateTenant(c.Request.Context(), tenantToTenantRow(req))
	if err != nil {
		status, message := handleDatabaseError(err)
		c.JSON(status, gin.H{"error": message})
		return
	}
	c.JSON(http.StatusOK, tenantRowToTenant(row))
}

// @Summary Delete tenant
// @Description Delete a tenant and its rent history and absence periods
// @Tags tenants
// @Produce json
// @Param id path string true "Tenant ID"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/tenants/{id} [delete]
func deleteTenant(c *gin.Context) {
	if err := dataStore.DeleteTenant(c.Request.Context(), c.Param("id")); err != nil {
		status, message := handleDatabaseError(err)
		c.JSON(status, gin.H{"error": message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tenant deleted"})
}

type rentHistoryRequest struct {
	WeeklyRent    decimal.Decimal `json:"weekly_rent"`
	EffectiveDate string          `json:"effective_date"`
}

// @Summary Add rent history entry
// @Description Record a weekly rent effective from a given date
// @Tags tenants
// @Accept json
// @Produce json
// @Param id path string true "Tenant ID"
// @Param entry body rentHistoryRequest true "Rent history entry"
// @Success 201 {object} RentHistory "Created entry"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 404 {object} map[string]interface{} "Tenant not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/tenants/{id}/rent-history [post]
func addRentHistory(c *gin.Context) {
	var req rentHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.WeeklyRent.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weekly_rent cannot be negative"})
		return
	}
	effective, err := time.Parse("2006-01-02", req.EffectiveDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "effective_date must be YYYY-MM-DD"})
		return
	}

	row, err := dataStore.AddRentHistory(c.Request.Context(), store.RentHistoryRow{
		TenantID:      c.Param("id"),
		WeeklyRent:    req.WeeklyRent,
		EffectiveDate: effective,
	})
	if err != nil {
		status, message := handleDatabaseError(err)
		c.JSON(status, gin.H{"error": message})
		return
	}
	c.JSON(http.StatusCreated, RentHistory{
		ID:            row.ID,
		TenantID:      row.TenantID,
		WeeklyRent:    row.WeeklyRent,
		EffectiveDate: row.EffectiveDate,
	})
}

// @Summary Delete rent history entry
// @Tags tenants
// @Produce json
// @Param id path string true "Rent history entry ID"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/rent-history/{id} [delete]
func deleteRentHistory(c *gin.Context) {
	if err := dataStore.DeleteRentHistory(c.Request.Context(), c.Param("id")); err != nil {
		status, message := handleDatabaseError(err)
		c.JSON(status, gin.H{"error": message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rent history entry deleted"})
}

type absentPeriodRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes"`
}

// @Summary Add absence period
// @Description Record a period where the tenant was away from the facility
// @Tags tenants
// @Accept json
// @Produce json
// @Param id path string true "Tenant ID"
// @Param period body absentPeriodRequest true "Absence period"
// @Success 201 {object} AbsentPeriod "Created period"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 404 {object} map[string]interface{} "Tenant not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/tenants/{id}/absences [post]
func addAbsentPeriod(c *gin.Context) {
	var req absentPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}
	if err := validateDateRange(start, end); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := dataStore.AddAbsentPeriod(c.Request.Context(), store.AbsentPeriodRow{
		TenantID:  c.Param("id"),
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
		Notes:     req.Notes,
	})
	if err != nil {
		status, message := handleDatabaseError(err)
		c.JSON(status, gin.H{"error": message})
		return
	}
	c.JSON(http.StatusCreated, AbsentPeriod{
		ID:        row.ID,
		TenantID:  row.TenantID,
		StartDate: row.StartDate,
		EndDate:   row.EndDate,
		Reason:    row.Reason,
		Notes:     row.Notes,
	})
}

// @Summary Delete absence period
// @Tags tenants
// @Produce json
// @Param id path string true "Absence period ID"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/absences/{id} [delete]
func deleteAbsentPeriod(c *gin.Context) {
	if err := dataStore.DeleteAbsentPeriod(c.Request.Context(), c.Param("id")); err != nil {
		status, message := handleDatabaseError(err)
		c.JSON(status, gin.H{"error": message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Absence period deleted"})
}
