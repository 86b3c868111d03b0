package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPricingRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterPricingRoutes(router.Group("/api/v1"), NewPricingHandler())
	return router
}

func postJSON(router *gin.Engine, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestQuoteEndpoint(t *testing.T) {
	router := setupPricingRouter()

	w := postJSON(router, "/api/v1/pricing/quote", `{
		"assetPrice": 64.5,
		"strikePrice": 64.6,
		"volatility": 0.4,
		"expirationDate": "2023-02-17",
		"riskFreeRate": 0.1,
		"drift": 0.2,
		"valuationDate": "2023-02-15"
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response QuoteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "2023-02-15", response.ValuationDate.String())
	assert.Equal(t, 2, response.BusinessDays)
	assert.True(t, response.Price.GreaterThan(decimal.Zero))
	assert.True(t, response.Delta.LessThan(decimal.NewFromFloat(0.5)))
	assert.True(t, response.Delta.GreaterThan(decimal.NewFromFloat(0.49)))
	assert.LessOrEqual(t, response.Price.Exponent(), int32(0))
	assert.GreaterOrEqual(t, response.Price.Exponent(), int32(-quotePrecision))
}

func TestQuoteEndpointRejectsBadInput(t *testing.T) {
	router := setupPricingRouter()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"assetPrice":`},
		{"negative volatility", `{"assetPrice":64.5,"strikePrice":64.6,"volatility":-0.4,"expirationDate":"2023-02-17","valuationDate":"2023-01-20"}`},
		{"expired", `{"assetPrice":64.5,"strikePrice":64.6,"volatility":0.4,"expirationDate":"2023-02-17","valuationDate":"2023-02-17"}`},
		{"bad valuation date", `{"assetPrice":64.5,"strikePrice":64.6,"volatility":0.4,"expirationDate":"2023-02-17","valuationDate":"17/02/2023"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/api/v1/pricing/quote", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}
