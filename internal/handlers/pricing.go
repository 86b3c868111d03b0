package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"optionsimulator/internal/engines/pricing"
	"optionsimulator/internal/models"
)

// quotePrecision is the number of decimal places returned by the quote endpoint
const quotePrecision = 6

type PricingHandler struct{}

func NewPricingHandler() *PricingHandler {
	return &PricingHandler{}
}

type QuoteRequest struct {
	models.ContractParams
	ValuationDate string `json:"valuationDate"` // YYYY-MM-DD, defaults to today
}

type QuoteResponse struct {
	ValuationDate       models.Date     `json:"valuationDate"`
	ExpirationDate      models.Date     `json:"expirationDate"`
	BusinessDays        int             `json:"businessDays"`
	Dt                  decimal.Decimal `json:"dt"`
	D1                  decimal.Decimal `json:"d1"`
	D2                  decimal.Decimal `json:"d2"`
	Price               decimal.Decimal `json:"price"`
	Delta               decimal.Decimal `json:"delta"`
	ExerciseProbability decimal.Decimal `json:"exerciseProbability"`
}

// Quote prices one contract
// POST /api/v1/pricing/quote
func (h *PricingHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := Quote(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// Quote values the request; shared by the HTTP and websocket transports
func Quote(req QuoteRequest) (*QuoteResponse, error) {
	valuationDate, err := ParseValuationDate(req.ValuationDate)
	if err != nil {
		return nil, err
	}

	call, err := pricing.NewEuropeanCall(req.ContractParams, valuationDate)
	if err != nil {
		return nil, err
	}

	return NewQuoteResponse(call), nil
}

func NewQuoteResponse(call *pricing.EuropeanCall) *QuoteResponse {
	round := func(v float64) decimal.Decimal {
		return decimal.NewFromFloat(v).Round(quotePrecision)
	}

	return &QuoteResponse{
		ValuationDate:       call.ValuationDate,
		ExpirationDate:      call.ExpirationDate,
		BusinessDays:        pricing.BusinessDays(call.ValuationDate, call.ExpirationDate),
		Dt:                  round(call.Dt),
		D1:                  round(call.D1),
		D2:                  round(call.D2),
		Price:               round(call.Price),
		Delta:               round(call.Delta),
		ExerciseProbability: round(call.ExerciseProbability()),
	}
}

// RegisterPricingRoutes registers all pricing routes
func RegisterPricingRoutes(router *gin.RouterGroup, handler *PricingHandler) {
	pricingGroup := router.Group("/pricing")
	{
		pricingGroup.POST("/quote", handler.Quote)
	}
}
