package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/worknote/backend/internal/models"
)

// CarriedWorkItem is a draft row copied from a prior period. It is not a
// persisted entry: the ID is freshly generated and nothing is written until
// the owner submits the target period.
type CarriedWorkItem struct {
	ID        string  `json:"id"`
	MissionID uint    `json:"mission_id"`
	Content   string  `json:"content"`
	Hours     float64 `json:"hours"`
	SortOrder int     `json:"sort_order"`
	Carried   bool    `json:"carried"`
}

// CarryForwardResult distinguishes "no source report existed" from "the
// source report existed but had no items".
type CarryForwardResult struct {
	Found          bool              `json:"found"`
	SourceReportID uint              `json:"source_report_id,omitempty"`
	Items          []CarriedWorkItem `json:"items"`
}

// CarryForward drafts a new period's work items from the owner's report for
// the source period. Read-only; the caller feeds the drafts into a form.
func (s *ReportService) CarryForward(ctx context.Context, ownerID uint, source models.Period) (*CarryForwardResult, error) {
	report, err := s.GetByPeriod(ctx, ownerID, source)
	if errors.Is(err, ErrNotFound) {
		return &CarryForwardResult{Found: false}, nil
	}
	if err != nil {
		return nil, err
	}

	items := make([]CarriedWorkItem, 0, len(report.WorkItems))
	for _, w := range report.WorkItems {
		items = append(items, CarriedWorkItem{
			ID:        uuid.NewString(),
			MissionID: w.MissionID,
			Content:   w.Content,
			Hours:     w.Hours,
			SortOrder: w.SortOrder,
			Carried:   true,
		})
	}

	return &CarryForwardResult{
		Found:          true,
		SourceReportID: report.ID,
		Items:          items,
	}, nil
}
