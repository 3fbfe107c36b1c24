package services

import (
	"testing"
	"time"

	"github.com/elenaruiz/attribution-engine/internal/models"
	"github.com/elenaruiz/attribution-engine/internal/repository"
)

func seedAttribution(t *testing.T, repo repository.AttributionRepository, accountID, contentType, contentID, orderID string, revenue float64, orderDate time.Time) {
	t.Helper()
	err := repo.CreateAttribution(&models.RevenueAttribution{
		AccountID:         accountID,
		OrderID:           orderID,
		OrderTotal:        revenue,
		OrderDate:         orderDate,
		ModelType:         models.ModelLastTouch,
		ContentType:       contentType,
		ContentID:         contentID,
		AttributionWeight: 1,
		AttributedRevenue: revenue,
		TouchpointType:    models.EventClick,
	})
	if err != nil {
		t.Fatalf("failed to seed attribution row: %v", err)
	}
}

func TestReportRollup(t *testing.T) {
	db := newTestDB(t)
	attrRepo := repository.NewAttributionRepository(db)
	service := NewReportService(attrRepo)
	orderDate := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	seedAttribution(t, attrRepo, "acct1", models.ContentQuote, "q1", "o1", 50, orderDate)
	seedAttribution(t, attrRepo, "acct1", models.ContentQuote, "q1", "o2", 75, orderDate)
	seedAttribution(t, attrRepo, "acct1", models.ContentAsset, "a1", "o3", 100, orderDate)

	report, err := service.Report("acct1", repository.AttributionFilter{})
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}

	if report.TotalRevenue != 225 {
		t.Errorf("totalRevenue = %v, want 225", report.TotalRevenue)
	}
	if report.TotalOrders != 3 {
		t.Errorf("totalOrders = %d, want 3", report.TotalOrders)
	}
	if len(report.TopContent) != 2 {
		t.Fatalf("topContent has %d entries, want 2", len(report.TopContent))
	}

	first, second := report.TopContent[0], report.TopContent[1]
	if first.ContentType != models.ContentQuote || first.ContentID != "q1" ||
		first.AttributedRevenue != 125 || first.OrderCount != 2 {
		t.Errorf("topContent[0] = %+v, want quote/q1 revenue 125 over 2 orders", first)
	}
	if second.ContentType != models.ContentAsset || second.ContentID != "a1" ||
		second.AttributedRevenue != 100 || second.OrderCount != 1 {
		t.Errorf("topContent[1] = %+v, want asset/a1 revenue 100 over 1 order", second)
	}
}

func TestReportNoData(t *testing.T) {
	db := newTestDB(t)
	service := NewReportService(repository.NewAttributionRepository(db))

	report, err := service.Report("acct1", repository.AttributionFilter{})
	if err != nil {
		t.Fatalf("no data must not be an error, got %v", err)
	}
	if report.TotalRevenue != 0 || report.TotalOrders != 0 {
		t.Errorf("empty report totals = %v/%d, want 0/0", report.TotalRevenue, report.TotalOrders)
	}
	if report.TopContent == nil || len(report.TopContent) != 0 {
		t.Errorf("empty report topContent = %v, want empty slice", report.TopContent)
	}
}

func TestReportDateAndContentFilters(t *testing.T) {
	db := newTestDB(t)
	attrRepo := repository.NewAttributionRepository(db)
	service := NewReportService(attrRepo)

	seedAttribution(t, attrRepo, "acct1", models.ContentQuote, "q1", "o1", 50,
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	seedAttribution(t, attrRepo, "acct1", models.ContentAsset, "a1", "o2", 80,
		time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC))
	seedAttribution(t, attrRepo, "acct2", models.ContentQuote, "q9", "o9", 500,
		time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC))

	// Date range keeps only the August 10 row.
	start := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
	report, err := service.Report("acct1", repository.AttributionFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if report.TotalRevenue != 80 || report.TotalOrders != 1 {
		t.Errorf("date-filtered report = %v/%d, want 80/1", report.TotalRevenue, report.TotalOrders)
	}

	// Content type filter keeps only the quote row; other accounts never leak in.
	report, err = service.Report("acct1", repository.AttributionFilter{ContentType: models.ContentQuote})
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if report.TotalRevenue != 50 || report.TotalOrders != 1 {
		t.Errorf("content-filtered report = %v/%d, want 50/1", report.TotalRevenue, report.TotalOrders)
	}
}

func TestReportTruncatesTopContent(t *testing.T) {
	db := newTestDB(t)
	attrRepo := repository.NewAttributionRepository(db)
	service := NewReportService(attrRepo)
	orderDate := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 25; i++ {
		seedAttribution(t, attrRepo, "acct1", models.ContentProduct,
			string(rune('a'+i)), "o1", float64(i+1), orderDate)
	}

	report, err := service.Report("acct1", repository.AttributionFilter{})
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if len(report.TopContent) != topContentLimit {
		t.Errorf("topContent has %d entries, want %d", len(report.TopContent), topContentLimit)
	}
	// Highest revenue first after truncation.
	if report.TopContent[0].AttributedRevenue != 25 {
		t.Errorf("topContent[0] revenue = %v, want 25", report.TopContent[0].AttributedRevenue)
	}
}
