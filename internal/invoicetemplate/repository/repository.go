package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	templatedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoicetemplate/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() templatedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tmpl *templatedomain.InvoiceTemplate) error {
	return db.WithContext(ctx).Create(tmpl).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, tmpl *templatedomain.InvoiceTemplate) error {
	return db.WithContext(ctx).Save(tmpl).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*templatedomain.InvoiceTemplate, error) {
	var tmpl templatedomain.InvoiceTemplate
	err := db.WithContext(ctx).Where("org_id = ? AND id = ?", orgID, id).First(&tmpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (r *repo) FindDefault(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (*templatedomain.InvoiceTemplate, error) {
	var tmpl templatedomain.InvoiceTemplate
	err := db.WithContext(ctx).
		Where("org_id = ? AND is_default = ?", orgID, true).
		Order("updated_at DESC").
		First(&tmpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter templatedomain.ListRequest) ([]templatedomain.InvoiceTemplate, error) {
	query := db.WithContext(ctx).Where("org_id = ?", orgID)
	if filter.Name != "" {
		query = query.Where("name = ?", filter.Name)
	}
	if filter.IsDefault != nil {
		query = query.Where("is_default = ?", *filter.IsDefault)
	}
	var items []templatedomain.InvoiceTemplate
	if err := query.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ClearDefault(ctx context.Context, db *gorm.DB, orgID snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&templatedomain.InvoiceTemplate{}).
		Where("org_id = ? AND is_default = ?", orgID, true).
		Update("is_default", false).Error
}
