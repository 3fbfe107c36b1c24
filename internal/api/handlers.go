package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/elenaruiz/attribution-engine/internal/errors"
	"github.com/elenaruiz/attribution-engine/internal/metrics"
	"github.com/elenaruiz/attribution-engine/internal/models"
	"github.com/elenaruiz/attribution-engine/internal/repository"
	"github.com/elenaruiz/attribution-engine/internal/services"
)

// EventsChannel is the global channel used to hand batch-submitted events to
// the worker pool. Batch ingestion never blocks the caller: a full buffer
// drops the event instead.
var EventsChannel chan models.TrackedEvent

// SetupRoutes configures all Gin API routes and injects necessary dependencies.
// Parameters:
//   - router: Gin engine instance to configure routes on
//   - recorder: touchpoint recording service
//   - attributionService: order revenue attribution service
//   - reportService: rollup reporting service
//   - bufferSize: size of the batch events channel buffer
func SetupRoutes(router *gin.Engine, recorder *services.RecorderService, attributionService *services.AttributionService, reportService *services.ReportService, bufferSize int) {
	if EventsChannel == nil {
		EventsChannel = make(chan models.TrackedEvent, bufferSize)
	}

	// Health check, used by load balancers and monitoring
	router.GET("/health", HealthCheckHandler)

	// Prometheus exposition
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		attribution := api.Group("/attribution")
		{
			attribution.POST("/events", RecordEventHandler(recorder))
			attribution.POST("/events/batch", RecordEventBatchHandler())
			attribution.POST("/orders/:orderID/attribute", AttributeOrderHandler(attributionService))
			attribution.GET("/report", ReportHandler(reportService))
		}
	}
}

// HealthCheckHandler handles the /health route to verify service status.
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// UtmParams carries optional campaign context on a recorded event.
type UtmParams struct {
	Source   string `json:"source"`
	Medium   string `json:"medium"`
	Campaign string `json:"campaign"`
	Content  string `json:"content"`
	Term     string `json:"term"`
}

// RecordEventRequest is the JSON body for recording one touchpoint.
// eventType and sourceType are required; everything else is optional.
type RecordEventRequest struct {
	AccountID      string     `json:"accountId" binding:"required"`
	EventType      string     `json:"eventType" binding:"required"`
	SourceType     string     `json:"sourceType" binding:"required"`
	SourceID       string     `json:"sourceId"`
	QuoteID        string     `json:"quoteId"`
	AssetID        string     `json:"assetId"`
	ProductID      string     `json:"productId"`
	CustomerID     string     `json:"customerId"`
	SessionID      string     `json:"sessionId"`
	Utm            *UtmParams `json:"utm"`
	OrderID        string     `json:"orderId"`
	OrderTotal     float64    `json:"orderTotal"`
	OccurredAt     string     `json:"occurredAt"`     // optional RFC 3339 timestamp, defaults to now
	IdempotencyKey string     `json:"idempotencyKey"` // optional caller-generated key
}

// toInput converts the request body into the recorder's input shape.
func (r *RecordEventRequest) toInput() (models.EventInput, error) {
	input := models.EventInput{
		EventType:      r.EventType,
		SourceType:     r.SourceType,
		SourceID:       r.SourceID,
		QuoteID:        r.QuoteID,
		AssetID:        r.AssetID,
		ProductID:      r.ProductID,
		CustomerID:     r.CustomerID,
		SessionID:      r.SessionID,
		OrderID:        r.OrderID,
		OrderTotal:     r.OrderTotal,
		IdempotencyKey: r.IdempotencyKey,
	}
	if r.Utm != nil {
		input.UtmSource = r.Utm.Source
		input.UtmMedium = r.Utm.Medium
		input.UtmCampaign = r.Utm.Campaign
		input.UtmContent = r.Utm.Content
		input.UtmTerm = r.Utm.Term
	}
	if r.OccurredAt != "" {
		occurred, err := time.Parse(time.RFC3339, r.OccurredAt)
		if err != nil {
			return input, err
		}
		input.OccurredAt = occurred
	}
	return input, nil
}

// eventJSON maps a stored event to its API representation.
func eventJSON(event *models.AttributionEvent) gin.H {
	return gin.H{
		"id":         event.ID,
		"eventKey":   event.EventKey,
		"accountId":  event.AccountID,
		"eventType":  event.EventType,
		"sourceType": event.SourceType,
		"occurredAt": event.OccurredAt.Format(time.RFC3339),
	}
}

// RecordEventHandler handles the synchronous recording of one touchpoint.
// Validation failures are rejected at the boundary and never partially
// recorded.
func RecordEventHandler(recorder *services.RecorderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RecordEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
			return
		}

		input, err := req.toInput()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid occurredAt timestamp: " + err.Error()})
			return
		}

		event, err := recorder.Record(req.AccountID, input)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrMissingEventType),
				errors.Is(err, apperrors.ErrMissingSourceType),
				errors.Is(err, apperrors.ErrMissingAccountID):
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			case errors.Is(err, apperrors.ErrDuplicateEvent):
				c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
			default:
				log.Printf("Error recording event: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to record event"})
			}
			return
		}

		metrics.EventsRecorded.WithLabelValues(event.EventType).Inc()
		c.JSON(http.StatusCreated, gin.H{"success": true, "event": eventJSON(event)})
	}
}

// RecordEventBatchRequest is the JSON body for batch ingestion.
type RecordEventBatchRequest struct {
	Events []RecordEventRequest `json:"events" binding:"required"`
}

// RecordEventBatchHandler enqueues a batch of touchpoints for asynchronous
// recording by the worker pool. The caller gets a 202 with queued/dropped
// counts; a full buffer drops events rather than blocking the request.
func RecordEventBatchHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RecordEventBatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
			return
		}

		queued, dropped := 0, 0
		for i := range req.Events {
			input, err := req.Events[i].toInput()
			if err != nil {
				dropped++
				continue
			}
			tracked := models.TrackedEvent{AccountID: req.Events[i].AccountID, Event: input}
			select {
			case EventsChannel <- tracked:
				queued++
			default:
				// Buffer full: drop rather than block the caller.
				metrics.EventsDropped.Inc()
				dropped++
				log.Printf("WARNING: EventsChannel is full, dropping %s event for account %s",
					input.EventType, req.Events[i].AccountID)
			}
		}

		c.JSON(http.StatusAccepted, gin.H{"queued": queued, "dropped": dropped})
	}
}

// AttributeOrderRequest is the JSON body for running attribution on one order.
type AttributeOrderRequest struct {
	AccountID  string  `json:"accountId" binding:"required"`
	OrderTotal float64 `json:"orderTotal" binding:"required"`
	OrderDate  string  `json:"orderDate" binding:"required"` // ISO date or RFC 3339
	CustomerID string  `json:"customerId"`
}

// attributionJSON maps a stored attribution row to its API representation.
func attributionJSON(row *models.RevenueAttribution) gin.H {
	return gin.H{
		"orderId":           row.OrderID,
		"orderTotal":        row.OrderTotal,
		"orderDate":         row.OrderDate.Format(time.RFC3339),
		"customerId":        row.CustomerID,
		"modelType":         row.ModelType,
		"contentType":       row.ContentType,
		"contentId":         row.ContentID,
		"attributionWeight": row.AttributionWeight,
		"attributedRevenue": row.AttributedRevenue,
		"touchpointType":    row.TouchpointType,
		"touchpointId":      row.TouchpointID,
		"touchpointAt":      row.TouchpointAt.Format(time.RFC3339),
	}
}

func attributionsJSON(rows []models.RevenueAttribution) []gin.H {
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, attributionJSON(&rows[i]))
	}
	return out
}

// AttributeOrderHandler computes and persists revenue attribution for one
// completed order. Zero eligible touchpoints returns success with an empty
// attribution list. A store failure mid-order returns the rows written so far
// with success=false; those rows are not rolled back.
func AttributeOrderHandler(attributionService *services.AttributionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")

		var req AttributeOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
			return
		}

		orderDate, err := parseDate(req.OrderDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid orderDate: " + err.Error()})
			return
		}

		attributions, err := attributionService.Attribute(req.AccountID, orderID, req.OrderTotal, orderDate, req.CustomerID)
		if err != nil {
			var partial apperrors.ErrAttributionFailed
			switch {
			case errors.Is(err, apperrors.ErrInvalidOrderTotal),
				errors.Is(err, apperrors.ErrMissingOrderID),
				errors.Is(err, apperrors.ErrMissingAccountID):
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			case errors.As(err, &partial):
				metrics.AttributionRuns.WithLabelValues("error").Inc()
				c.JSON(http.StatusInternalServerError, gin.H{
					"success":      false,
					"attributions": attributionsJSON(attributions),
					"error":        err.Error(),
				})
			default:
				metrics.AttributionRuns.WithLabelValues("error").Inc()
				log.Printf("Error attributing order %s: %v", orderID, err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to attribute order"})
			}
			return
		}

		if len(attributions) == 0 {
			metrics.AttributionRuns.WithLabelValues("empty").Inc()
		} else {
			metrics.AttributionRuns.WithLabelValues("attributed").Inc()
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "attributions": attributionsJSON(attributions)})
	}
}

// ReportHandler returns the aggregated revenue attribution rollup for an
// account. No matching rows yields the zero-value report, never an error.
func ReportHandler(reportService *services.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := c.Query("accountId")
		if accountID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "accountId query parameter is required"})
			return
		}

		var filter repository.AttributionFilter
		if raw := c.Query("startDate"); raw != "" {
			start, err := parseDate(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate: " + err.Error()})
				return
			}
			filter.StartDate = &start
		}
		if raw := c.Query("endDate"); raw != "" {
			end, err := parseDate(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate: " + err.Error()})
				return
			}
			filter.EndDate = &end
		}
		filter.ContentType = c.Query("contentType")

		report, err := reportService.Report(accountID, filter)
		if err != nil {
			log.Printf("Error building report for account %s: %v", accountID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
			return
		}

		c.JSON(http.StatusOK, report)
	}
}

// parseDate accepts an ISO calendar date or a full RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
