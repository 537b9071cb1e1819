package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"rentledger/db/store"
)

var (
	testStore  *store.Memory
	testRouter *gin.Engine
)

// TestMain sets up the test environment
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	decimal.MarshalJSONWithoutQuotes = true

	logg = newLoggerWithWriter(io.Discard)
	ledgerOpt = DefaultLedgerOptions()

	resetTestStore()
	setupTestRouter()

	os.Exit(m.Run())
}

// resetTestStore swaps in a fresh in-memory store.
func resetTestStore() {
	testStore = store.NewMemory()
	dataStore = testStore
}

// setupTestRouter configures the test router with all routes
func setupTestRouter() {
	testRouter = gin.New()

	testRouter.POST("/api/upload", uploadPayments)
	testRouter.GET("/api/years", getYears)
	testRouter.GET("/api/payments", getPayments)
	testRouter.GET("/api/arrears", getMonthlyArrears)
	testRouter.GET("/api/arrears/summary", getArrearsSummary)

	testRouter.GET("/api/tenants", getTenants)
	testRouter.POST("/api/tenants", createTenant)
	testRouter.GET("/api/tenants/:id", getTenant)
	testRouter.PUT("/api/tenants/:id", updateTenant)
	testRouter.DELETE("/api/tenants/:id", deleteTenant)
	testRouter.POST("/api/tenants/:id/rent-history", addRentHistory)
	testRouter.DELETE("/api/rent-history/:id", deleteRentHistory)
	testRouter.POST("/api/tenants/:id/absences", addAbsentPeriod)
	testRouter.DELETE("/api/absences/:id", deleteAbsentPeriod)
}

// createTestTenant seeds a tenant and returns its ID.
func createTestTenant(sageID, name, roomCode, staff string, weeklyRent decimal.Decimal) (string, error) {
	row, err := testStore.CreateTenant(context.Background(), store.TenantRow{
		SageID:     sageID,
		TenantName: name,
		RoomCode:   roomCode,
		StaffName:  staff,
		WeeklyRent: weeklyRent,
		Status:     "active",
	})
	if err != nil {
		return "", err
	}
	return row.ID, nil
}

// makeRequest helper function for making HTTP requests
func makeRequest(method, url string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	testRouter.ServeHTTP(recorder, req)
	return recorder
}

// makeMultipartRequest helper function for making multipart requests (file uploads)
func makeMultipartRequest(url string, fieldName, fileName string, fileContent []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		panic(err)
	}
	part.Write(fileContent)
	writer.Close()

	req := httptest.NewRequest("POST", url, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	recorder := httptest.NewRecorder()
	testRouter.ServeHTTP(recorder, req)
	return recorder
}

// parseJSONResponse helper function to parse JSON response
func parseJSONResponse(recorder *httptest.ResponseRecorder, target interface{}) error {
	return json.Unmarshal(recorder.Body.Bytes(), target)
}

// assertStatusCode helper function to assert HTTP status code
func assertStatusCode(t *testing.T, expected, actual int) {
	t.Helper()
	if expected != actual {
		t.Errorf("Expected status code %d, got %d", expected, actual)
	}
}

// assertNoError helper function to assert no error occurred
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
