package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, url string, body map[string]interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	return bytes.NewBuffer(data)
}

func TestCreateTenantValidation(t *testing.T) {
	resetTestStore()

	t.Run("empty sage_id fails", func(t *testing.T) {
		resp := makeRequest("POST", "/api/tenants", postJSON(t, "/api/tenants", map[string]interface{}{
			"sage_id":     " ",
			"tenant_name": "Robert Cam",
		}))
		assertStatusCode(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("empty tenant_name fails", func(t *testing.T) {
		resp := makeRequest("POST", "/api/tenants", postJSON(t, "/api/tenants", map[string]interface{}{
			"sage_id": "190",
		}))
		assertStatusCode(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("negative weekly_rent fails", func(t *testing.T) {
		resp := makeRequest("POST", "/api/tenants", postJSON(t, "/api/tenants", map[string]interface{}{
			"sage_id":     "190",
			"tenant_name": "Robert Cam",
			"weekly_rent": -41,
		}))
		assertStatusCode(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("malformed body fails", func(t *testing.T) {
		resp := makeRequest("POST", "/api/tenants", bytes.NewBufferString("{"))
		assertStatusCode(t, http.StatusBadRequest, resp.Code)
	})
}

func TestTenantCRUD(t *testing.T) {
	resetTestStore()

	var created Tenant
	t.Run("create", func(t *testing.T) {
		resp := makeRequest("POST", "/api/tenants", postJSON(t, "/api/tenants", map[string]interface{}{
			"sage_id":     "190",
			"tenant_name": "Robert Cam",
			"room_code":   "R-12",
			"staff_name":  "J Smith",
			"weekly_rent": 41,
		}))
		assertStatusCode(t, http.StatusCreated, resp.Code)
		assertNoError(t, parseJSONResponse(resp, &created))
		require.NotEmpty(t, created.ID)
		assert.Equal(t, "active", created.Status)
	})

	t.Run("get", func(t *testing.T) {
		resp := makeRequest("GET", "/api/tenants/"+created.ID, nil)
		assertStatusCode(t, http.StatusOK, resp.Code)

		var got Tenant
		assertNoError(t, parseJSONResponse(resp, &got))
		assert.Equal(t, "Robert Cam", got.TenantName)
		assert.True(t, got.WeeklyRent.Equal(decimal.RequireFromString("41")))
	})

	t.Run("update", func(t *testing.T) {
		resp := makeRequest("PUT", "/api/tenants/"+created.ID, postJSON(t, "", map[string]interface{}{
			"sage_id":     "190",
			"tenant_name": "Robert Cam",
			"room_code":   "R-14",
			"staff_name":  "J Smith",
			"weekly_rent": 45,
			"status":      "active",
		}))
		assertStatusCode(t, http.StatusOK, resp.Code)

		var got Tenant
		assertNoError(t, parseJSONResponse(resp, &got))
		assert.Equal(t, "R-14", got.RoomCode)
		assert.True(t, got.WeeklyRent.Equal(decimal.RequireFromString("45")))
	})

	t.Run("list", func(t *testing.T) {
		resp := makeRequest("GET", "/api/tenants", nil)
		assertStatusCode(t, http.StatusOK, resp.Code)

		var got []Tenant
		assertNoError(t, parseJSONResponse(resp, &got))
		assert.Len(t, got, 1)
	})

	t.Run("delete", func(t *testing.T) {
		resp := makeRequest("DELETE", "/api/tenants/"+created.ID, nil)
		assertStatusCode(t, http.StatusOK, resp.Code)

		resp = makeRequest("GET", "/api/tenants/"+created.ID, nil)
		assertStatusCode(t, http.StatusNotFound, resp.Code)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		resp := makeRequest("DELETE", "/api/tenants/does-not-exist", nil)
		assertStatusCode(t, http.StatusNotFound, resp.Code)
	})
}

func TestRentHistoryEndpoints(t *testing.T) {
	resetTestStore()

	id, err := createTestTenant("190", "Robert Cam", "R-12", "J Smith", decimal.RequireFromString("41"))
	require.NoError(t, err)

	var entry RentHistory
	t.Run("add entry", func(t *testing.T) {
		resp := makeRequest("POST", "/api/tenants/"+id+"/rent-history", postJSON(t, "", map[string]interface{}{
			"weekly_rent":    45,
			"effective_date": "2025-06-01",
		}))
		assertStatusCode(t, http.StatusCreated, resp.Code)
		assertNoError(t, parseJSONResponse(resp, &entry))
		assert.Equal(t, id, entry.TenantID)
	})

	t.Run("entry shows up nested on the tenant", func(t *testing.T) {
		resp := makeRequest("GET", "/api/tenants/"+id, nil)
		assertStatusCode(t, http.StatusOK, resp.Code)

		var got Tenant
		assertNoError(t, parseJSONResponse(resp, &got))
		require.Len(t, got.RentHistory, 1)
		assert.Equal(t, "2025-06-01", got.RentHistory[0].EffectiveDate.Format("2006-01-02"))
	})

	t.Run("bad date is rejected", func(t *testing.T) {
		resp := makeRequest("POST", "/api/tenants/"+id+"/rent-history", postJSON(t, "", map[string]interface{}{
			"weekly_rent":    45,
			"effective_date": "01/06/2025",
		}))
		assertStatusCode(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("unknown tenant is 404", func(t *testing.T) {
		resp := makeRequest("POST", "/api/tenants/nope/rent-history", postJSON(t, "", map[string]interface{}{
			"weekly_rent":    45,
			"effective_date": "2025-06-01",
		}))
		assertStatusCode(t, http.StatusNotFound, resp.Code)
	})

	t.Run("delete entry", func(t *testing.T) {
		resp := makeRequest("DELETE", "/api/rent-history/"+entry.ID, nil)
		assertStatusCode(t, http.StatusOK, resp.Code)

		resp = makeRequest("DELETE", "/api/rent-history/"+entry.ID, nil)
		assertStatusCode(t, http.StatusNotFound, resp.Code)
	})
}

func TestAbsenceEndpoints(t *testing.T) {
	resetTestStore()

	id, err := createTestTenant("190", "Robert Cam", "R-12", "J Smith", decimal.RequireFromString("41"))
	require.NoError(t, err)

	var period AbsentPeriod
	t.Run("add period", func(t *testing.T) {
		resp := makeRequest("POST", "/api/tenants/"+id+"/absences", postJSON(t, "", map[string]interface{}{
			"start_date": "2025-01-06",
			"end_date":   "2025-01-12",
			"reason":     "hospital",
		}))
		assertStatusCode(t, http.StatusCreated, resp.Code)
		assertNoError(t, parseJSONResponse(resp, &period))
		assert.Equal(t, "hospital", period.Reason)
	})

	t.Run("end before start is rejected", func(t *testing.T) {
		resp := makeRequest("POST", "/api/tenants/"+id+"/absences", postJSON(t, "", map[string]interface{}{
			"start_date": "2025-01-12",
			"end_date":   "2025-01-06",
		}))
		assertStatusCode(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("delete period", func(t *testing.T) {
		resp := makeRequest("DELETE", "/api/absences/"+period.ID, nil)
		assertStatusCode(t, http.StatusOK, resp.Code)

		resp = makeRequest("DELETE", "/api/absences/"+period.ID, nil)
		assertStatusCode(t, http.StatusNotFound, resp.Code)
	})
}
