package services

import (
	"fmt"

	"github.com/worknote/backend/internal/models"
	"gorm.io/gorm"
)

// RefKind names a reference-entity table for integrity checks.
type RefKind string

const (
	RefClient          RefKind = "client"
	RefProject         RefKind = "project"
	RefMission         RefKind = "mission"
	RefAppealCategory  RefKind = "appeal_category"
	RefTroubleCategory RefKind = "trouble_category"
)

type refPair struct {
	kind RefKind
	id   uint
}

// RefChecker collects the reference IDs one submission depends on and
// probes them against the store. Validate must run on the same transaction
// as the writes that depend on the references, so a concurrent deletion of
// a reference entity cannot race a submission into a dangling row.
type RefChecker struct {
	seen  map[refPair]struct{}
	pairs []refPair
}

func NewRefChecker() *RefChecker {
	return &RefChecker{seen: make(map[refPair]struct{})}
}

// Add records one (kind, id) dependency. Duplicates collapse.
func (c *RefChecker) Add(kind RefKind, id uint) {
	p := refPair{kind: kind, id: id}
	if _, ok := c.seen[p]; ok {
		return
	}
	c.seen[p] = struct{}{}
	c.pairs = append(c.pairs, p)
}

// Validate probes every collected reference on the given transaction. The
// first unresolved reference aborts the whole unit; there is no partial
// acceptance.
func (c *RefChecker) Validate(tx *gorm.DB) error {
	for _, p := range c.pairs {
		ok, err := referenceExists(tx, p.kind, p.id)
		if err != nil {
			return err
		}
		if !ok {
			return &DanglingReferenceError{Kind: p.kind, ID: p.id}
		}
	}
	return nil
}

func referenceExists(tx *gorm.DB, kind RefKind, id uint) (bool, error) {
	var count int64
	var err error

	switch kind {
	case RefClient:
		err = tx.Model(&models.Client{}).Where("id = ?", id).Count(&count).Error
	case RefProject:
		err = tx.Model(&models.Project{}).Where("id = ?", id).Count(&count).Error
	case RefMission:
		err = tx.Model(&models.Mission{}).Where("id = ?", id).Count(&count).Error
	case RefAppealCategory:
		err = tx.Model(&models.AppealCategory{}).Where("id = ?", id).Count(&count).Error
	case RefTroubleCategory:
		err = tx.Model(&models.TroubleCategory{}).Where("id = ?", id).Count(&count).Error
	default:
		return false, fmt.Errorf("unknown reference kind: %s", kind)
	}

	if err != nil {
		return false, err
	}
	return count > 0, nil
}
