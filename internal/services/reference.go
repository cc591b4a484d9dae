package services

import (
	"context"
	"errors"
	"strings"

	"github.com/worknote/backend/internal/models"
	"gorm.io/gorm"
)

// ReferenceService manages the reference tables. These are mutated only
// through this surface; report submission just reads them for validation.
type ReferenceService struct {
	db *gorm.DB
}

func NewReferenceService(db *gorm.DB) *ReferenceService {
	return &ReferenceService{db: db}
}

type CreateClientRequest struct {
	Name     string `json:"name" binding:"required"`
	Keywords string `json:"keywords"`
}

type CreateProjectRequest struct {
	ClientID uint   `json:"client_id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Keywords string `json:"keywords"`
}

type CreateMissionRequest struct {
	ProjectID  uint   `json:"project_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Keywords   string `json:"keywords"`
	IsArchived bool   `json:"is_archived"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// normalizeKeywords trims each comma-separated keyword and drops empties.
func normalizeKeywords(raw string) string {
	parts := strings.Split(raw, ",")
	kept := parts[:0]
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, ",")
}

func (s *ReferenceService) CreateClient(ctx context.Context, req *CreateClientRequest) (*models.Client, error) {
	client := models.Client{Name: strings.TrimSpace(req.Name), Keywords: normalizeKeywords(req.Keywords)}
	if err := s.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *ReferenceService) CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error) {
	ok, err := referenceExists(s.db.WithContext(ctx), RefClient, req.ClientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &DanglingReferenceError{Kind: RefClient, ID: req.ClientID}
	}

	project := models.Project{
		ClientID: req.ClientID,
		Name:     strings.TrimSpace(req.Name),
		Keywords: normalizeKeywords(req.Keywords),
	}
	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ReferenceService) CreateMission(ctx context.Context, req *CreateMissionRequest) (*models.Mission, error) {
	ok, err := referenceExists(s.db.WithContext(ctx), RefProject, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &DanglingReferenceError{Kind: RefProject, ID: req.ProjectID}
	}

	mission := models.Mission{
		ProjectID:  req.ProjectID,
		Name:       strings.TrimSpace(req.Name),
		Keywords:   normalizeKeywords(req.Keywords),
		IsArchived: req.IsArchived,
	}
	if err := s.db.WithContext(ctx).Create(&mission).Error; err != nil {
		return nil, err
	}
	return &mission, nil
}

func (s *ReferenceService) CreateAppealCategory(ctx context.Context, req *CreateCategoryRequest) (*models.AppealCategory, error) {
	category := models.AppealCategory{Name: strings.TrimSpace(req.Name)}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *ReferenceService) CreateTroubleCategory(ctx context.Context, req *CreateCategoryRequest) (*models.TroubleCategory, error) {
	category := models.TroubleCategory{Name: strings.TrimSpace(req.Name)}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// SearchClients matches the keyword as a substring of name or keywords.
func (s *ReferenceService) SearchClients(ctx context.Context, keyword string) ([]models.Client, error) {
	var clients []models.Client
	query := s.db.WithContext(ctx).Model(&models.Client{})
	if kw := strings.TrimSpace(keyword); kw != "" {
		like := "%" + kw + "%"
		query = query.Where("name LIKE ? OR keywords LIKE ?", like, like)
	}
	if err := query.Order("name").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// SearchProjects matches against the project's own name/keywords and its
// client's, since users search by whatever level of the hierarchy they
// remember.
func (s *ReferenceService) SearchProjects(ctx context.Context, keyword string) ([]models.Project, error) {
	var projects []models.Project
	query := s.db.WithContext(ctx).Model(&models.Project{}).Preload("Client")
	if kw := strings.TrimSpace(keyword); kw != "" {
		like := "%" + kw + "%"
		query = query.
			Joins("JOIN clients ON clients.id = projects.client_id AND clients.deleted_at IS NULL").
			Where("projects.name LIKE ? OR projects.keywords LIKE ? OR clients.name LIKE ? OR clients.keywords LIKE ?",
				like, like, like, like)
	}
	if err := query.Order("projects.name").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// SearchMissions OR-matches the mission, its project, and its client.
// Archived missions are excluded; they should not appear in report forms.
func (s *ReferenceService) SearchMissions(ctx context.Context, keyword string) ([]models.Mission, error) {
	var missions []models.Mission
	query := s.db.WithContext(ctx).Model(&models.Mission{}).
		Preload("Project").Preload("Project.Client").
		Where("missions.is_archived = ?", false)
	if kw := strings.TrimSpace(keyword); kw != "" {
		like := "%" + kw + "%"
		query = query.
			Joins("JOIN projects ON projects.id = missions.project_id AND projects.deleted_at IS NULL").
			Joins("JOIN clients ON clients.id = projects.client_id AND clients.deleted_at IS NULL").
			Where("missions.name LIKE ? OR missions.keywords LIKE ?"+
				" OR projects.name LIKE ? OR projects.keywords LIKE ?"+
				" OR clients.name LIKE ? OR clients.keywords LIKE ?",
				like, like, like, like, like, like)
	}
	if err := query.Order("missions.name").Find(&missions).Error; err != nil {
		return nil, err
	}
	return missions, nil
}

func (s *ReferenceService) ListAppealCategories(ctx context.Context) ([]models.AppealCategory, error) {
	var categories []models.AppealCategory
	if err := s.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *ReferenceService) ListTroubleCategories(ctx context.Context) ([]models.TroubleCategory, error) {
	var categories []models.TroubleCategory
	if err := s.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// DeleteMission archives rather than hard-deletes when work items still
// reference the mission, so existing reports keep resolving.
func (s *ReferenceService) DeleteMission(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var mission models.Mission
		if err := tx.First(&mission, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var inUse int64
		if err := tx.Model(&models.WorkItem{}).Where("mission_id = ?", id).Count(&inUse).Error; err != nil {
			return err
		}
		if inUse > 0 {
			return tx.Model(&mission).Update("is_archived", true).Error
		}
		return tx.Delete(&mission).Error
	})
}
