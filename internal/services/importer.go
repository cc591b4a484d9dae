package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/worknote/backend/internal/models"
	"github.com/worknote/backend/pkg/logger"
	"gorm.io/gorm"
)

// ImportService loads reference entities from CSV. A batch either applies
// completely or not at all: the first bad row aborts the transaction with a
// 1-based row number that counts the header line.
type ImportService struct {
	db *gorm.DB
}

func NewImportService(db *gorm.DB) *ImportService {
	return &ImportService{db: db}
}

type ImportResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

type columnContract struct {
	required []string
	allowed  []string
}

var importContracts = map[string]columnContract{
	"client": {
		required: []string{"name"},
		allowed:  []string{"id", "name", "keywords"},
	},
	"project": {
		required: []string{"name", "client_id"},
		allowed:  []string{"id", "name", "keywords", "client_id"},
	},
	"mission": {
		required: []string{"name", "project_id"},
		allowed:  []string{"id", "name", "keywords", "project_id", "is_archived"},
	},
	"appeal_category": {
		required: []string{"name"},
		allowed:  []string{"id", "name"},
	},
	"trouble_category": {
		required: []string{"name"},
		allowed:  []string{"id", "name"},
	},
}

// ImportKinds lists the entity kinds the importer accepts.
func ImportKinds() []string {
	return []string{"client", "project", "mission", "appeal_category", "trouble_category"}
}

// Import parses CSV input for one entity kind and commits all rows in a
// single transaction. Rows run in submission order so the row number in a
// failure is deterministic; the first bad row aborts the whole batch.
func (s *ImportService) Import(ctx context.Context, kind string, r io.Reader) (*ImportResult, error) {
	contract, ok := importContracts[kind]
	if !ok {
		return nil, &ValidationError{Field: "kind", Msg: fmt.Sprintf("unknown import kind %q", kind)}
	}

	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, &ValidationError{Msg: "empty or unreadable CSV input"}
	}

	cols, err := validateHeader(header, contract)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := 0; ; i++ {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			rowNum := i + 2 // 1-based, plus the header line
			if err != nil {
				return &ValidationError{Row: rowNum, Msg: "malformed CSV row"}
			}

			row := make(map[string]string, len(cols))
			for name, idx := range cols {
				row[name] = strings.TrimSpace(record[idx])
			}

			if err := s.applyRow(tx, kind, row, rowNum, result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infof("[Import] kind=%s inserted=%d updated=%d", kind, result.Inserted, result.Updated)
	return result, nil
}

// validateHeader enforces the column contract: every required column must
// be present and no column outside the allowed set may appear. Either
// violation rejects the whole batch before any row runs.
func validateHeader(header []string, contract columnContract) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		if _, dup := cols[name]; dup {
			return nil, &ValidationError{Field: name, Msg: "duplicate column"}
		}
		allowed := false
		for _, a := range contract.allowed {
			if name == a {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, &ValidationError{Field: name, Msg: "column not allowed for this import kind"}
		}
		cols[name] = i
	}
	for _, req := range contract.required {
		if _, ok := cols[req]; !ok {
			return nil, &ValidationError{Field: req, Msg: "required column missing"}
		}
	}
	return cols, nil
}

func (s *ImportService) applyRow(tx *gorm.DB, kind string, row map[string]string, rowNum int, result *ImportResult) error {
	if row["name"] == "" {
		return &ValidationError{Row: rowNum, Field: "name", Msg: "must not be empty"}
	}

	targetID, hasID, err := parseOptionalID(row, rowNum)
	if err != nil {
		return err
	}

	switch kind {
	case "client":
		entity := models.Client{Name: row["name"], Keywords: row["keywords"]}
		return upsert(tx, rowNum, targetID, hasID, result, &models.Client{}, &entity, map[string]interface{}{
			"name":     entity.Name,
			"keywords": entity.Keywords,
		}, func(id uint) { entity.ID = id })

	case "project":
		clientID, err := parseRefColumn(tx, row, "client_id", RefClient, rowNum)
		if err != nil {
			return err
		}
		entity := models.Project{Name: row["name"], Keywords: row["keywords"], ClientID: clientID}
		return upsert(tx, rowNum, targetID, hasID, result, &models.Project{}, &entity, map[string]interface{}{
			"name":      entity.Name,
			"keywords":  entity.Keywords,
			"client_id": entity.ClientID,
		}, func(id uint) { entity.ID = id })

	case "mission":
		projectID, err := parseRefColumn(tx, row, "project_id", RefProject, rowNum)
		if err != nil {
			return err
		}
		archived := false
		if v, ok := row["is_archived"]; ok && v != "" {
			archived, err = strconv.ParseBool(v)
			if err != nil {
				return &ValidationError{Row: rowNum, Field: "is_archived", Msg: "must be a boolean"}
			}
		}
		entity := models.Mission{Name: row["name"], Keywords: row["keywords"], ProjectID: projectID, IsArchived: archived}
		return upsert(tx, rowNum, targetID, hasID, result, &models.Mission{}, &entity, map[string]interface{}{
			"name":        entity.Name,
			"keywords":    entity.Keywords,
			"project_id":  entity.ProjectID,
			"is_archived": entity.IsArchived,
		}, func(id uint) { entity.ID = id })

	case "appeal_category":
		entity := models.AppealCategory{Name: row["name"]}
		return upsert(tx, rowNum, targetID, hasID, result, &models.AppealCategory{}, &entity, map[string]interface{}{
			"name": entity.Name,
		}, func(id uint) { entity.ID = id })

	case "trouble_category":
		entity := models.TroubleCategory{Name: row["name"]}
		return upsert(tx, rowNum, targetID, hasID, result, &models.TroubleCategory{}, &entity, map[string]interface{}{
			"name": entity.Name,
		}, func(id uint) { entity.ID = id })
	}

	return &ValidationError{Field: "kind", Msg: fmt.Sprintf("unknown import kind %q", kind)}
}

func parseOptionalID(row map[string]string, rowNum int) (uint, bool, error) {
	v, ok := row["id"]
	if !ok || v == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseUint(v, 10, 32)
	if err != nil || id == 0 {
		return 0, false, &ValidationError{Row: rowNum, Field: "id", Msg: "must be a positive integer"}
	}
	return uint(id), true, nil
}

// parseRefColumn parses a foreign-key column and probes the target inside
// the batch transaction, so references to rows inserted earlier in the same
// batch resolve.
func parseRefColumn(tx *gorm.DB, row map[string]string, col string, kind RefKind, rowNum int) (uint, error) {
	v := row[col]
	if v == "" {
		return 0, &ValidationError{Row: rowNum, Field: col, Msg: "must not be empty"}
	}
	id, err := strconv.ParseUint(v, 10, 32)
	if err != nil || id == 0 {
		return 0, &ValidationError{Row: rowNum, Field: col, Msg: "must be a positive integer"}
	}
	ok, err := referenceExists(tx, kind, uint(id))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &DanglingReferenceError{Kind: kind, ID: uint(id), Row: rowNum}
	}
	return uint(id), nil
}

// upsert resolves insert-vs-update by the optional target ID: a supplied ID
// that exists updates in place, a supplied ID that does not exist inserts
// with that ID, and no ID inserts with a generated one.
func upsert(tx *gorm.DB, rowNum int, targetID uint, hasID bool, result *ImportResult,
	probe interface{}, entity interface{}, updates map[string]interface{}, setID func(uint)) error {

	if hasID {
		err := tx.First(probe, targetID).Error
		switch {
		case err == nil:
			if err := tx.Model(probe).Updates(updates).Error; err != nil {
				return err
			}
			result.Updated++
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			setID(targetID)
		default:
			return err
		}
	}

	if err := tx.Create(entity).Error; err != nil {
		return err
	}
	result.Inserted++
	return nil
}
