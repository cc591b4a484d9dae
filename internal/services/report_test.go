package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/worknote/backend/internal/models"
)

func submitRequest(missionID uint, content string) *SubmitReportRequest {
	return &SubmitReportRequest{
		PeriodType: "daily",
		Date:       "2025-03-10",
		WorkItems: []WorkItemInput{
			{MissionID: missionID, Content: content, Hours: 3},
		},
	}
}

func TestSubmit_CreateDaily(t *testing.T) {
	db := newTestDB(t)
	missionID, appealCatID, troubleCatID := seedReferences(t, db)
	ownerID := seedUser(t, db, "alice")
	svc := newTestReportService(t, db)
	ctx := context.Background()

	req := submitRequest(missionID, "implemented invoice export")
	req.Appeals = []AppealInput{{CategoryID: appealCatID, Content: "shipped ahead of schedule"}}
	req.Troubles = []TroubleInput{{CategoryID: troubleCatID, Content: "staging environment flaky"}}
	req.WorkedMinutes = 480

	result, err := svc.Submit(ctx, ownerID, req)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !result.Created {
		t.Error("expected Created=true for a new report")
	}
	if result.ReportID == 0 {
		t.Fatal("expected a report ID")
	}

	report, err := svc.Get(ctx, ownerID, result.ReportID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(report.WorkItems) != 1 {
		t.Errorf("expected 1 work item, got %d", len(report.WorkItems))
	}
	if len(report.Appeals) != 1 {
		t.Errorf("expected 1 appeal, got %d", len(report.Appeals))
	}
	if report.WorkedMinutes != 480 {
		t.Errorf("WorkedMinutes = %d, expected 480", report.WorkedMinutes)
	}

	var troubleCount int64
	db.Model(&models.Trouble{}).Where("owner_id = ?", ownerID).Count(&troubleCount)
	if troubleCount != 1 {
		t.Errorf("expected 1 standing trouble, got %d", troubleCount)
	}

	wantTopic := TopicTroubleOwner(ownerID)
	found := false
	for _, topic := range result.InvalidationTopics {
		if topic == wantTopic {
			found = true
		}
	}
	if !found {
		t.Errorf("expected invalidation topic %q in %v", wantTopic, result.InvalidationTopics)
	}
}

func TestSubmit_UniquenessPerOwnerAndPeriod(t *testing.T) {
	db := newTestDB(t)
	missionID, _, _ := seedReferences(t, db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	svc := newTestReportService(t, db)
	ctx := context.Background()

	first, err := svc.Submit(ctx, alice, submitRequest(missionID, "first"))
	if err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	// Same owner, same period: rejected.
	_, err = svc.Submit(ctx, alice, submitRequest(missionID, "second"))
	var conflict *UniquenessConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected UniquenessConflictError, got %v", err)
	}
	if conflict.ExistingID != first.ReportID {
		t.Errorf("conflict names report %d, expected %d", conflict.ExistingID, first.ReportID)
	}

	// Different owner, same period: fine.
	if _, err := svc.Submit(ctx, bob, submitRequest(missionID, "bob's day")); err != nil {
		t.Errorf("other owner should not conflict: %v", err)
	}

	// Updating the existing report keeps its own period without conflicting
	// with itself.
	update := submitRequest(missionID, "revised")
	update.ReportID = first.ReportID
	result, err := svc.Submit(ctx, alice, update)
	if err != nil {
		t.Fatalf("self-update should not conflict: %v", err)
	}
	if result.Created {
		t.Error("update should report Created=false")
	}

	// Moving another report onto an occupied period: rejected.
	other := &SubmitReportRequest{PeriodType: "weekly", Year: 2025, Week: 11,
		WorkItems: []WorkItemInput{{MissionID: missionID, Content: "weekly", Hours: 8}}}
	weekly, err := svc.Submit(ctx, alice, other)
	if err != nil {
		t.Fatalf("weekly Submit failed: %v", err)
	}
	move := submitRequest(missionID, "moved")
	move.ReportID = weekly.ReportID
	if _, err := svc.Submit(ctx, alice, move); !errors.As(err, &conflict) {
		t.Errorf("moving onto an occupied period should conflict, got %v", err)
	}
}

func TestSubmit_DuplicateEntryIDsRejected(t *testing.T) {
	db := newTestDB(t)
	missionID, appealCatID, _ := seedReferences(t, db)
	ownerID := seedUser(t, db, "alice")
	svc := newTestReportService(t, db)
	ctx := context.Background()

	shared := uuid.NewString()
	req := submitRequest(missionID, "valid work")
	req.Appeals = []AppealInput{
		{ID: shared, CategoryID: appealCatID, Content: "first"},
		{ID: shared, CategoryID: appealCatID, Content: "second"},
	}

	_, err := svc.Submit(ctx, ownerID, req)
	var invalid *ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if invalid.Field != "appeals" {
		t.Errorf("error names field %q, expected appeals", invalid.Field)
	}

	// Same shape for work items.
	dup := uuid.NewString()
	req = &SubmitReportRequest{
		PeriodType: "daily",
		Date:       "2025-03-10",
		WorkItems: []WorkItemInput{
			{ID: dup, MissionID: missionID, Content: "morning", Hours: 2},
			{ID: dup, MissionID: missionID, Content: "afternoon", Hours: 3},
		},
	}
	if _, err := svc.Submit(ctx, ownerID, req); !errors.As(err, &invalid) {
		t.Errorf("expected ValidationError for duplicate work item ids, got %v", err)
	}

	// Nothing from the rejected submissions reached the store.
	var reports int64
	db.Model(&models.Report{}).Count(&reports)
	if reports != 0 {
		t.Errorf("rejected submissions left %d reports", reports)
	}
}

func TestSubmit_EntryIDClaimedByAnotherOwner(t *testing.T) {
	db := newTestDB(t)
	missionID, appealCatID, troubleCatID := seedReferences(t, db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	svc := newTestReportService(t, db)
	ctx := context.Background()

	req := submitRequest(missionID, "alice's day")
	req.Appeals = []AppealInput{{CategoryID: appealCatID, Content: "alice's appeal"}}
	req.Troubles = []TroubleInput{{CategoryID: troubleCatID, Content: "alice's issue"}}
	if _, err := svc.Submit(ctx, alice, req); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	var appeal models.Appeal
	db.First(&appeal)
	var trouble models.Trouble
	db.First(&trouble)

	// A second owner reusing the persisted appeal ID is bad input, not a
	// store failure.
	steal := submitRequest(missionID, "bob's day")
	steal.Appeals = []AppealInput{{ID: appeal.ID, CategoryID: appealCatID, Content: "hijack"}}
	_, err := svc.Submit(ctx, bob, steal)
	var invalid *ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	var bobReports int64
	db.Model(&models.Report{}).Where("owner_id = ?", bob).Count(&bobReports)
	if bobReports != 0 {
		t.Errorf("failed submission left %d reports for the second owner", bobReports)
	}

	// Same for a trouble ID held by another user.
	steal = submitRequest(missionID, "bob's retry")
	steal.Troubles = []TroubleInput{{ID: trouble.ID, CategoryID: troubleCatID, Content: "not mine"}}
	if _, err := svc.Submit(ctx, bob, steal); !errors.As(err, &invalid) {
		t.Errorf("expected ValidationError for a foreign trouble id, got %v", err)
	}

	var original models.Appeal
	db.First(&original, "id = ?", appeal.ID)
	if original.Content != "alice's appeal" {
		t.Errorf("foreign submission must not touch the original appeal: %q", original.Content)
	}
}

func TestSubmit_ResubmittedWorkItemKeepsID(t *testing.T) {
	db := newTestDB(t)
	missionID, _, _ := seedReferences(t, db)
	ownerID := seedUser(t, db, "alice")
	svc := newTestReportService(t, db)
	ctx := context.Background()

	first, err := svc.Submit(ctx, ownerID, submitRequest(missionID, "draft text"))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	var item models.WorkItem
	db.Where("report_id = ?", first.ReportID).First(&item)

	// Resubmitting the same item under its persisted ID is a normal edit,
	// not a claim on someone else's ID.
	update := &SubmitReportRequest{
		ReportID:   first.ReportID,
		PeriodType: "daily",
		Date:       "2025-03-10",
		WorkItems: []WorkItemInput{
			{ID: item.ID, MissionID: missionID, Content: "final text", Hours: 5},
		},
	}
	if _, err := svc.Submit(ctx, ownerID, update); err != nil {
		t.Fatalf("resubmit with persisted id failed: %v", err)
	}

	var items []models.WorkItem
	db.Where("report_id = ?", first.ReportID).Find(&items)
	if len(items) != 1 || items[0].ID != item.ID || items[0].Content != "final text" {
		t.Errorf("expected one item %s with updated content, got %+v", item.ID, items)
	}
}

func TestSubmit_DanglingMissionRollsBackEverything(t *testing.T) {
	db := newTestDB(t)
	_, appealCatID, _ := seedReferences(t, db)
	ownerID := seedUser(t, db, "alice")
	svc := newTestReportService(t, db)
	ctx := context.Background()

	req := &SubmitReportRequest{
		PeriodType: "daily",
		Date:       "2025-03-10",
		WorkItems:  []WorkItemInput{{MissionID: 9999, Content: "ghost mission", Hours: 1}},
		Appeals:    []AppealInput{{CategoryID: appealCatID, Content: "valid appeal"}},
	}

	_, err := svc.Submit(ctx, ownerID, req)
	var dangling *DanglingReferenceError
	if !errors.As(err, &dangling) {
		t.Fatalf("expected DanglingReferenceError, got %v", err)
	}
	if dangling.Kind != RefMission || dangling.ID != 9999 {
		t.Errorf("error names %s %d, expected mission 9999", dangling.Kind, dangling.ID)
	}

	// The valid appeal must not survive the failed submission.
	var reports, appeals int64
	db.Model(&models.Report{}).Count(&reports)
	db.Model(&models.Appeal{}).Count(&appeals)
	if reports != 0 || appeals != 0 {
		t.Errorf("rollback left reports=%d appeals=%d, expected 0/0", reports, appeals)
	}
}

func TestSubmit_WorkItemsFullyReplaced(t *testing.T) {
	db := newTestDB(t)
	missionID, _, _ := seedReferences(t, db)
	ownerID := seedUser(t, db, "alice")
	svc := newTestReportService(t, db)
	ctx := context.Background()

	first, err := svc.Submit(ctx, ownerID, submitRequest(missionID, "morning work"))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	update := &SubmitReportRequest{
		ReportID:   first.ReportID,
		PeriodType: "daily",
		Date:       "2025-03-10",
		WorkItems: []WorkItemInput{
			{MissionID: missionID, Content: "afternoon work", Hours: 4},
			{MissionID: missionID, Content: "evening review", Hours: 1},
		},
	}
	if _, err := svc.Submit(ctx, ownerID, update); err != nil {
		t.Fatalf("update Submit failed: %v", err)
	}

	var items []models.WorkItem
	db.Where("report_id = ?", first.ReportID).Order("sort_order, id").Find(&items)
	if len(items) != 2 {
		t.Fatalf("expected 2 work items after replace, got %d", len(items))
	}
	for _, item := range items {
		if item.Content == "morning work" {
			t.Error("replaced work item should be gone")
		}
	}
}

func TestSubmit_TroublesSurviveOmission(t *testing.T) {
	db := newTestDB(t)
	missionID, _, troubleCatID := seedReferences(t, db)
	ownerID := seedUser(t, db, "alice")
	svc := newTestReportService(t, db)
	ctx := context.Background()

	req := submitRequest(missionID, "day one")
	req.Troubles = []TroubleInput{{CategoryID: troubleCatID, Content: "CI keeps timing out"}}
	if _, err := svc.Submit(ctx, ownerID, req); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	var persisted models.Trouble
	if err := db.Where("owner_id = ?", ownerID).First(&persisted).Error; err != nil {
		t.Fatalf("trouble not persisted: %v", err)
	}

	// Next day's submission omits the trouble entirely.
	next := &SubmitReportRequest{
		PeriodType: "daily",
		Date:       "2025-03-11",
		WorkItems:  []WorkItemInput{{MissionID: missionID, Content: "day two", Hours: 6}},
	}
	if _, err := svc.Submit(ctx, ownerID, next); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	var count int64
	db.Model(&models.Trouble{}).Where("owner_id = ?", ownerID).Count(&count)
	if count != 1 {
		t.Fatalf("omitted trouble should survive, count = %d", count)
	}

	// Resolving through a later submission updates in place.
	resolve := &SubmitReportRequest{
		PeriodType: "daily",
		Date:       "2025-03-12",
		WorkItems:  []WorkItemInput{{MissionID: missionID, Content: "day three", Hours: 6}},
		Troubles: []TroubleInput{
			{ID: persisted.ID, CategoryID: troubleCatID, Content: "CI keeps timing out", Resolved: true},
		},
	}
	if _, err := svc.Submit(ctx, ownerID, resolve); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	var resolved models.Trouble
	db.First(&resolved, "id = ?", persisted.ID)
	if !resolved.Resolved {
		t.Error("trouble should be marked resolved")
	}

	open, err := svc.UnresolvedTroubles(ctx, ownerID)
	if err != nil {
		t.Fatalf("UnresolvedTroubles failed: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("expected no open troubles, got %d", len(open))
	}
}

func TestGet_OwnerScope(t *testing.T) {
	db := newTestDB(t)
	missionID, _, _ := seedReferences(t, db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	svc := newTestReportService(t, db)
	ctx := context.Background()

	result, err := svc.Submit(ctx, alice, submitRequest(missionID, "private"))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if _, err := svc.Get(ctx, bob, result.ReportID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for foreign report, got %v", err)
	}
	if _, err := svc.Get(ctx, alice, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_KeepsStandingTroubles(t *testing.T) {
	db := newTestDB(t)
	missionID, appealCatID, troubleCatID := seedReferences(t, db)
	ownerID := seedUser(t, db, "alice")
	svc := newTestReportService(t, db)
	ctx := context.Background()

	req := submitRequest(missionID, "to be deleted")
	req.Appeals = []AppealInput{{CategoryID: appealCatID, Content: "appeal"}}
	req.Troubles = []TroubleInput{{CategoryID: troubleCatID, Content: "standing issue"}}
	result, err := svc.Submit(ctx, ownerID, req)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if _, err := svc.Delete(ctx, ownerID, result.ReportID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var reports, items, appeals, troubles int64
	db.Model(&models.Report{}).Count(&reports)
	db.Model(&models.WorkItem{}).Count(&items)
	db.Model(&models.Appeal{}).Count(&appeals)
	db.Model(&models.Trouble{}).Count(&troubles)

	if reports != 0 || items != 0 || appeals != 0 {
		t.Errorf("report-owned rows should be gone: reports=%d items=%d appeals=%d", reports, items, appeals)
	}
	if troubles != 1 {
		t.Errorf("standing troubles should survive report deletion, got %d", troubles)
	}
}

func TestCarryForward(t *testing.T) {
	db := newTestDB(t)
	missionID, _, _ := seedReferences(t, db)
	ownerID := seedUser(t, db, "alice")
	svc := newTestReportService(t, db)
	ctx := context.Background()

	source := models.WeeklyPeriod(2025, 11)

	// No source report at all.
	result, err := svc.CarryForward(ctx, ownerID, source)
	if err != nil {
		t.Fatalf("CarryForward failed: %v", err)
	}
	if result.Found {
		t.Error("expected Found=false with no source report")
	}

	// Source report exists but is empty: Found, zero items.
	empty := &SubmitReportRequest{PeriodType: "weekly", Year: 2025, Week: 11}
	if _, err := svc.Submit(ctx, ownerID, empty); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	result, err = svc.CarryForward(ctx, ownerID, source)
	if err != nil {
		t.Fatalf("CarryForward failed: %v", err)
	}
	if !result.Found || len(result.Items) != 0 {
		t.Errorf("expected Found=true with 0 items, got found=%v items=%d", result.Found, len(result.Items))
	}

	// Populated source: items are drafted with fresh IDs.
	populated := &SubmitReportRequest{
		PeriodType: "weekly", Year: 2025, Week: 12,
		WorkItems: []WorkItemInput{
			{MissionID: missionID, Content: "ongoing migration", Hours: 12, SortOrder: 1},
		},
	}
	submitted, err := svc.Submit(ctx, ownerID, populated)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	result, err = svc.CarryForward(ctx, ownerID, models.WeeklyPeriod(2025, 12))
	if err != nil {
		t.Fatalf("CarryForward failed: %v", err)
	}
	if !result.Found || result.SourceReportID != submitted.ReportID {
		t.Fatalf("expected source report %d, got found=%v id=%d", submitted.ReportID, result.Found, result.SourceReportID)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 carried item, got %d", len(result.Items))
	}
	item := result.Items[0]
	if !item.Carried {
		t.Error("carried item should be flagged")
	}
	if item.Content != "ongoing migration" || item.MissionID != missionID {
		t.Errorf("carried item content/mission mismatch: %+v", item)
	}

	var original models.WorkItem
	db.Where("report_id = ?", submitted.ReportID).First(&original)
	if item.ID == original.ID {
		t.Error("carried item must get a fresh ID, not reuse the source's")
	}

	// Drafting writes nothing.
	var itemCount int64
	db.Model(&models.WorkItem{}).Count(&itemCount)
	if itemCount != 1 {
		t.Errorf("carry-forward must not persist items, count = %d", itemCount)
	}
}
