package handlers

import (
	"net/http"

	portssvc "github.com/divisando/divisando-backend/internal/core/ports/services"
	"github.com/divisando/divisando-backend/internal/dto"
	"github.com/gin-gonic/gin"
)

// ExchangeHandler handles exchange-rate read requests and the manual
// ingestion trigger.
type ExchangeHandler struct {
	exchangeService portssvc.ExchangeSvcFacade
}

// NewExchangeHandler creates a new ExchangeHandler.
func NewExchangeHandler(exchangeService portssvc.ExchangeSvcFacade) *ExchangeHandler {
	return &ExchangeHandler{exchangeService: exchangeService}
}

// registerExchangeRoutes sets up the exchange-rate routes.
func registerExchangeRoutes(rg *gin.RouterGroup, exchangeService portssvc.ExchangeSvcFacade) {
	h := NewExchangeHandler(exchangeService)

	rg.GET("/currencies", h.GetCurrencies)
	rates := rg.Group("/rates")
	{
		rates.GET("/:base", h.GetRates)
		rates.GET("/:base/compare/:target", h.Compare)
		rates.POST("/refresh", h.TriggerRefresh)
	}
}

// GetRates godoc
// @Summary Latest rates for a base currency
// @Description Returns the most recent rate list stored for the base currency.
// @Tags exchange
// @Produce json
// @Param base path string true "Base currency code" example(USD)
// @Success 200 {object} dto.RatesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "No data for this base currency"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /rates/{base} [get]
func (h *ExchangeHandler) GetRates(c *gin.Context) {
	record, err := h.exchangeService.GetRatesForBase(c.Request.Context(), c.Param("base"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToRatesResponse(record))
}

// Compare godoc
// @Summary Compare a currency pair
// @Description Returns the current rate plus the most recent differing older value and the movement direction.
// @Tags exchange
// @Produce json
// @Param base path string true "Base currency code" example(USD)
// @Param target path string true "Target currency code" example(MXN)
// @Success 200 {object} dto.ComparisonResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "No data for this pair"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /rates/{base}/compare/{target} [get]
func (h *ExchangeHandler) Compare(c *gin.Context) {
	comparison, err := h.exchangeService.Compare(c.Request.Context(), c.Param("base"), c.Param("target"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToComparisonResponse(comparison))
}

// GetCurrencies godoc
// @Summary List known base currencies
// @Description Returns the derived catalog of base currencies with stored rate data.
// @Tags exchange
// @Produce json
// @Success 200 {object} dto.CurrencyCatalogResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /currencies [get]
func (h *ExchangeHandler) GetCurrencies(c *gin.Context) {
	catalog, err := h.exchangeService.GetCurrencyCatalog(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CurrencyCatalogResponse{
		Currencies: catalog.Currencies,
		UpdatedAt:  catalog.UpdatedAt,
	})
}

// TriggerRefresh godoc
// @Summary Trigger an ingestion cycle
// @Description Starts a rate ingestion cycle unless one is already running.
// @Tags exchange
// @Produce json
// @Success 202 {object} dto.RefreshTriggerResponse
// @Success 200 {object} dto.RefreshTriggerResponse "A cycle was already running"
// @Security BearerAuth
// @Router /rates/refresh [post]
func (h *ExchangeHandler) TriggerRefresh(c *gin.Context) {
	if h.exchangeService.TriggerRefresh(c.Request.Context()) {
		c.JSON(http.StatusAccepted, dto.RefreshTriggerResponse{Started: true, Message: "Ingestion cycle started"})
		return
	}
	c.JSON(http.StatusOK, dto.RefreshTriggerResponse{Started: false, Message: "An ingestion cycle is already running"})
}
