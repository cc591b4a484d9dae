package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/worknote/backend/internal/models"
	"github.com/worknote/backend/internal/timeperiod"
	"gorm.io/gorm"
)

// ReportService is the entry point for report create/update. One submission
// runs as a single transaction: uniqueness guard, per-kind reconciliation,
// reference validation, then commit — any failure rolls everything back.
type ReportService struct {
	db  *gorm.DB
	cal *timeperiod.Calendar
}

func NewReportService(db *gorm.DB, cal *timeperiod.Calendar) *ReportService {
	return &ReportService{db: db, cal: cal}
}

type WorkItemInput struct {
	ID        string  `json:"id"`
	MissionID uint    `json:"mission_id" binding:"required"`
	Content   string  `json:"content"`
	Hours     float64 `json:"hours" binding:"min=0"`
	SortOrder int     `json:"sort_order"`
}

type AppealInput struct {
	ID         string `json:"id"`
	CategoryID uint   `json:"category_id" binding:"required"`
	Content    string `json:"content"`
}

type TroubleInput struct {
	ID         string `json:"id"`
	CategoryID uint   `json:"category_id" binding:"required"`
	Content    string `json:"content"`
	Resolved   bool   `json:"resolved"`
}

type SubmitReportRequest struct {
	ReportID   uint   `json:"report_id"` // 0 = create
	PeriodType string `json:"period_type" binding:"required,oneof=daily weekly"`
	Date       string `json:"date"` // daily, YYYY-MM-DD
	Year       int    `json:"year"` // weekly
	Week       int    `json:"week"`

	Status        string `json:"status" binding:"omitempty,oneof=draft published"`
	Note          string `json:"note"`
	WorkedMinutes int    `json:"worked_minutes" binding:"min=0"`
	IsRemote      bool   `json:"is_remote"`

	WorkItems []WorkItemInput `json:"work_items"`
	Appeals   []AppealInput   `json:"appeals"`
	Troubles  []TroubleInput  `json:"troubles"`
}

// SubmitResult reports the touched report and which cached views the caller
// should invalidate. The service never signals caches itself.
type SubmitResult struct {
	ReportID           uint     `json:"report_id"`
	Created            bool     `json:"created"`
	InvalidationTopics []string `json:"-"`
}

func TopicReportOwner(ownerID uint) string { return fmt.Sprintf("report:owner:%d", ownerID) }
func TopicReportID(reportID uint) string   { return fmt.Sprintf("report:id:%d", reportID) }
func TopicReportCount() string             { return "report:count" }
func TopicTroubleOwner(ownerID uint) string {
	return fmt.Sprintf("trouble:owner:%d", ownerID)
}

func (r *SubmitReportRequest) period() (models.Period, error) {
	switch models.PeriodType(r.PeriodType) {
	case models.PeriodDaily:
		date, err := timeperiod.ParseDate(r.Date)
		if err != nil {
			return models.Period{}, err
		}
		return models.DailyPeriod(date), nil
	case models.PeriodWeekly:
		if _, _, err := timeperiod.ISOWeekRange(r.Year, r.Week); err != nil {
			return models.Period{}, err
		}
		return models.WeeklyPeriod(r.Year, r.Week), nil
	default:
		return models.Period{}, &ValidationError{Field: "period_type", Msg: "must be daily or weekly"}
	}
}

// validateEntryIDs rejects a submission that uses one stable entry ID for
// two entries of the same kind. Reconciliation matches by ID, so a
// duplicate would otherwise slip through as two inserts and die on the
// primary key instead of failing as bad input.
func (r *SubmitReportRequest) validateEntryIDs() error {
	sets := []struct {
		field string
		ids   []string
	}{
		{"work_items", make([]string, 0, len(r.WorkItems))},
		{"appeals", make([]string, 0, len(r.Appeals))},
		{"troubles", make([]string, 0, len(r.Troubles))},
	}
	for _, in := range r.WorkItems {
		sets[0].ids = append(sets[0].ids, in.ID)
	}
	for _, in := range r.Appeals {
		sets[1].ids = append(sets[1].ids, in.ID)
	}
	for _, in := range r.Troubles {
		sets[2].ids = append(sets[2].ids, in.ID)
	}

	for _, set := range sets {
		seen := make(map[string]struct{}, len(set.ids))
		for _, id := range set.ids {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				return &ValidationError{Field: set.field, Msg: fmt.Sprintf("duplicate entry id %q", id)}
			}
			seen[id] = struct{}{}
		}
	}
	return nil
}

// Submit creates or updates one report with all its entry sets.
func (s *ReportService) Submit(ctx context.Context, ownerID uint, req *SubmitReportRequest) (*SubmitResult, error) {
	period, err := req.period()
	if err != nil {
		return nil, err
	}
	if err := req.validateEntryIDs(); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = "draft"
	}

	result := &SubmitResult{Created: req.ReportID == 0}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var report models.Report

		if req.ReportID > 0 {
			if err := tx.First(&report, req.ReportID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			if report.OwnerID != ownerID {
				return ErrForbidden
			}
		}

		if err := checkUniqueness(tx, ownerID, period, report.ID); err != nil {
			return err
		}

		report.OwnerID = ownerID
		report.ApplyPeriod(period)
		report.Status = req.Status
		report.Note = req.Note
		report.WorkedMinutes = req.WorkedMinutes
		report.IsRemote = req.IsRemote

		if req.ReportID == 0 {
			if err := tx.Create(&report).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Save(&report).Error; err != nil {
				return err
			}
		}

		refs := NewRefChecker()

		if err := s.applyWorkItems(tx, &report, req.WorkItems, refs); err != nil {
			return err
		}
		if err := s.applyAppeals(tx, &report, req.Appeals, refs); err != nil {
			return err
		}
		troubleTouched, err := s.applyTroubles(tx, ownerID, req.Troubles, refs)
		if err != nil {
			return err
		}

		if err := refs.Validate(tx); err != nil {
			return err
		}

		result.ReportID = report.ID
		result.InvalidationTopics = []string{
			TopicReportOwner(ownerID),
			TopicReportID(report.ID),
			TopicReportCount(),
		}
		if troubleTouched {
			result.InvalidationTopics = append(result.InvalidationTopics, TopicTroubleOwner(ownerID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// checkUniqueness enforces one report per (owner, period). It runs inside
// the submission transaction so two concurrent submissions for the same key
// cannot both pass.
func checkUniqueness(tx *gorm.DB, ownerID uint, period models.Period, excludeID uint) error {
	var existing models.Report
	err := periodQuery(tx, ownerID, period).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != excludeID {
		return &UniquenessConflictError{OwnerID: ownerID, Period: period, ExistingID: existing.ID}
	}
	return nil
}

func periodQuery(tx *gorm.DB, ownerID uint, period models.Period) *gorm.DB {
	q := tx.Where("owner_id = ? AND period_type = ?", ownerID, string(period.Type))
	if period.IsWeekly() {
		return q.Where("year = ? AND week = ?", period.Year, period.Week)
	}
	return q.Where("report_date = ?", period.Date)
}

// claimedInsertIDs lists the client-supplied IDs among the entries a
// reconciliation wants to insert. Generated IDs are fresh UUIDs and need no
// existence probe.
func claimedInsertIDs[T EntryRecord](changes Changes[T], supplied map[string]struct{}) []string {
	var ids []string
	for _, e := range changes.ToInsert {
		if _, ok := supplied[e.EntryID()]; ok {
			ids = append(ids, e.EntryID())
		}
	}
	return ids
}

// assertInsertIDsFree fails when a client-supplied entry ID already exists
// in the store. Reconcile only sees the current report or owner scope, so
// an ID persisted elsewhere would become an insert and hit the primary key
// constraint mid-transaction.
func assertInsertIDsFree(tx *gorm.DB, model interface{}, field string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	var count int64
	if err := tx.Model(model).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &ValidationError{Field: field, Msg: "entry id already in use"}
	}
	return nil
}

func (s *ReportService) applyWorkItems(tx *gorm.DB, report *models.Report, inputs []WorkItemInput, refs *RefChecker) error {
	submitted := make([]*models.WorkItem, 0, len(inputs))
	supplied := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		if in.ID != "" {
			supplied[in.ID] = struct{}{}
		}
		submitted = append(submitted, &models.WorkItem{
			ID:        in.ID,
			ReportID:  report.ID,
			MissionID: in.MissionID,
			Content:   in.Content,
			Hours:     in.Hours,
			SortOrder: in.SortOrder,
		})
	}

	var persisted []*models.WorkItem
	if err := tx.Where("report_id = ?", report.ID).Find(&persisted).Error; err != nil {
		return err
	}

	changes := Reconcile(submitted, persisted, PolicyReplace)

	if len(changes.ToDeleteIDs) > 0 {
		if err := tx.Where("report_id = ? AND id IN ?", report.ID, changes.ToDeleteIDs).
			Delete(&models.WorkItem{}).Error; err != nil {
			return err
		}
	}
	// The report's own rows are gone now, so any surviving match on a
	// supplied ID belongs to a different report.
	if err := assertInsertIDsFree(tx, &models.WorkItem{}, "work_items",
		claimedInsertIDs(changes, supplied)); err != nil {
		return err
	}
	for _, item := range changes.ToInsert {
		refs.Add(RefMission, item.MissionID)
		if err := tx.Create(item).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *ReportService) applyAppeals(tx *gorm.DB, report *models.Report, inputs []AppealInput, refs *RefChecker) error {
	submitted := make([]*models.Appeal, 0, len(inputs))
	supplied := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		if in.ID != "" {
			supplied[in.ID] = struct{}{}
		}
		submitted = append(submitted, &models.Appeal{
			ID:         in.ID,
			ReportID:   report.ID,
			CategoryID: in.CategoryID,
			Content:    in.Content,
		})
	}

	var persisted []*models.Appeal
	if err := tx.Where("report_id = ?", report.ID).Find(&persisted).Error; err != nil {
		return err
	}

	changes := Reconcile(submitted, persisted, PolicyDiffDelete)

	if len(changes.ToDeleteIDs) > 0 {
		if err := tx.Where("report_id = ? AND id IN ?", report.ID, changes.ToDeleteIDs).
			Delete(&models.Appeal{}).Error; err != nil {
			return err
		}
	}
	if err := assertInsertIDsFree(tx, &models.Appeal{}, "appeals",
		claimedInsertIDs(changes, supplied)); err != nil {
		return err
	}
	for _, appeal := range changes.ToInsert {
		refs.Add(RefAppealCategory, appeal.CategoryID)
		if err := tx.Create(appeal).Error; err != nil {
			return err
		}
	}
	for _, appeal := range changes.ToUpdate {
		refs.Add(RefAppealCategory, appeal.CategoryID)
		if err := tx.Model(&models.Appeal{}).Where("id = ? AND report_id = ?", appeal.ID, report.ID).
			Updates(map[string]interface{}{
				"category_id": appeal.CategoryID,
				"content":     appeal.Content,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}

// applyTroubles reconciles the owner's standing issues. Persisted troubles
// absent from the submission stay untouched; updates only write the mutable
// resolved/content fields. Returns whether anything changed.
func (s *ReportService) applyTroubles(tx *gorm.DB, ownerID uint, inputs []TroubleInput, refs *RefChecker) (bool, error) {
	submitted := make([]*models.Trouble, 0, len(inputs))
	supplied := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		if in.ID != "" {
			supplied[in.ID] = struct{}{}
		}
		submitted = append(submitted, &models.Trouble{
			ID:         in.ID,
			OwnerID:    ownerID,
			CategoryID: in.CategoryID,
			Content:    in.Content,
			Resolved:   in.Resolved,
		})
	}

	var persisted []*models.Trouble
	if err := tx.Where("owner_id = ?", ownerID).Find(&persisted).Error; err != nil {
		return false, err
	}

	changes := Reconcile(submitted, persisted, PolicyDiffKeep)

	if err := assertInsertIDsFree(tx, &models.Trouble{}, "troubles",
		claimedInsertIDs(changes, supplied)); err != nil {
		return false, err
	}
	for _, trouble := range changes.ToInsert {
		refs.Add(RefTroubleCategory, trouble.CategoryID)
		if err := tx.Create(trouble).Error; err != nil {
			return false, err
		}
	}
	for _, trouble := range changes.ToUpdate {
		if err := tx.Model(&models.Trouble{}).Where("id = ? AND owner_id = ?", trouble.ID, ownerID).
			Updates(map[string]interface{}{
				"content":  trouble.Content,
				"resolved": trouble.Resolved,
			}).Error; err != nil {
			return false, err
		}
	}
	return !changes.Empty(), nil
}

// Get returns one report with its entries. Owners see only their own.
func (s *ReportService) Get(ctx context.Context, ownerID, reportID uint) (*models.Report, error) {
	var report models.Report
	err := s.db.WithContext(ctx).
		Preload("WorkItems", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, id") }).
		Preload("Appeals").
		First(&report, reportID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if report.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return &report, nil
}

// GetByPeriod finds the owner's report for one period, or ErrNotFound.
func (s *ReportService) GetByPeriod(ctx context.Context, ownerID uint, period models.Period) (*models.Report, error) {
	var report models.Report
	err := periodQuery(s.db.WithContext(ctx), ownerID, period).
		Preload("WorkItems", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, id") }).
		Preload("Appeals").
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

type ReportListRequest struct {
	Page       int    `form:"page" binding:"min=0"`
	PageSize   int    `form:"page_size" binding:"min=0,max=100"`
	PeriodType string `form:"period_type" binding:"omitempty,oneof=daily weekly"`
	Status     string `form:"status" binding:"omitempty,oneof=draft published"`
}

type ReportListResponse struct {
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Items    []models.Report `json:"items"`
}

// List returns the owner's reports, newest period first.
func (s *ReportService) List(ctx context.Context, ownerID uint, req *ReportListRequest) (*ReportListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.WithContext(ctx).Model(&models.Report{}).Where("owner_id = ?", ownerID)
	if req.PeriodType != "" {
		query = query.Where("period_type = ?", req.PeriodType)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	query.Count(&total)

	var reports []models.Report
	offset := (req.Page - 1) * req.PageSize
	err := query.Offset(offset).Limit(req.PageSize).
		Order("report_date DESC, year DESC, week DESC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}

	return &ReportListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    reports,
	}, nil
}

// Delete removes a report and its owned entries. Standing troubles are not
// report-owned and survive.
func (s *ReportService) Delete(ctx context.Context, ownerID, reportID uint) ([]string, error) {
	var topics []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var report models.Report
		if err := tx.First(&report, reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if report.OwnerID != ownerID {
			return ErrForbidden
		}

		if err := tx.Where("report_id = ?", reportID).Delete(&models.WorkItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("report_id = ?", reportID).Delete(&models.Appeal{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&report).Error; err != nil {
			return err
		}

		topics = []string{TopicReportOwner(ownerID), TopicReportID(reportID), TopicReportCount()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return topics, nil
}

// UnresolvedTroubles lists the owner's open standing issues for the
// day-form view.
func (s *ReportService) UnresolvedTroubles(ctx context.Context, ownerID uint) ([]models.Trouble, error) {
	var troubles []models.Trouble
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND resolved = ?", ownerID, false).
		Order("created_at").
		Find(&troubles).Error
	if err != nil {
		return nil, err
	}
	return troubles, nil
}
