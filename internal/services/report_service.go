package services

import (
	"sort"

	apperrors "github.com/elenaruiz/attribution-engine/internal/errors"
	"github.com/elenaruiz/attribution-engine/internal/repository"
)

// topContentLimit caps the ranked content list in a report.
const topContentLimit = 20

// ContentRollup is one entry of a report's ranked content list.
type ContentRollup struct {
	ContentType       string  `json:"contentType"`
	ContentID         string  `json:"contentId"`
	AttributedRevenue float64 `json:"attributedRevenue"`
	OrderCount        int     `json:"orderCount"`
}

// Report is the aggregated revenue attribution rollup for an account.
type Report struct {
	TotalRevenue float64         `json:"totalRevenue"`
	TotalOrders  int             `json:"totalOrders"`
	TopContent   []ContentRollup `json:"topContent"`
}

// ReportService aggregates persisted revenue attribution rows into rollup
// reports for presentation.
type ReportService struct {
	attrRepo repository.AttributionRepository
}

// NewReportService creates and returns a new instance of ReportService.
func NewReportService(attrRepo repository.AttributionRepository) *ReportService {
	return &ReportService{attrRepo: attrRepo}
}

// Report aggregates the attribution rows matching the account and filter into
// total revenue, distinct order count, and the top content ranked by summed
// attributed revenue. No matching rows is not an error: the zero-value report
// is returned.
func (s *ReportService) Report(accountID string, filter repository.AttributionFilter) (*Report, error) {
	if accountID == "" {
		return nil, apperrors.ErrMissingAccountID
	}

	rows, err := s.attrRepo.FindAttributions(accountID, filter)
	if err != nil {
		return nil, err
	}

	type contentAgg struct {
		revenue float64
		orders  map[string]struct{}
	}

	allOrders := make(map[string]struct{})
	byContent := make(map[[2]string]*contentAgg)
	var totalRevenue float64

	for i := range rows {
		row := &rows[i]
		totalRevenue += row.AttributedRevenue
		allOrders[row.OrderID] = struct{}{}

		key := [2]string{row.ContentType, row.ContentID}
		agg, ok := byContent[key]
		if !ok {
			agg = &contentAgg{orders: make(map[string]struct{})}
			byContent[key] = agg
		}
		agg.revenue += row.AttributedRevenue
		agg.orders[row.OrderID] = struct{}{}
	}

	topContent := make([]ContentRollup, 0, len(byContent))
	for key, agg := range byContent {
		topContent = append(topContent, ContentRollup{
			ContentType:       key[0],
			ContentID:         key[1],
			AttributedRevenue: agg.revenue,
			OrderCount:        len(agg.orders),
		})
	}

	// Rank by revenue; ties break on content key for a deterministic order.
	sort.Slice(topContent, func(i, j int) bool {
		if topContent[i].AttributedRevenue != topContent[j].AttributedRevenue {
			return topContent[i].AttributedRevenue > topContent[j].AttributedRevenue
		}
		if topContent[i].ContentType != topContent[j].ContentType {
			return topContent[i].ContentType < topContent[j].ContentType
		}
		return topContent[i].ContentID < topContent[j].ContentID
	})
	if len(topContent) > topContentLimit {
		topContent = topContent[:topContentLimit]
	}

	return &Report{
		TotalRevenue: totalRevenue,
		TotalOrders:  len(allOrders),
		TopContent:   topContent,
	}, nil
}
