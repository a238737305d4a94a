package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/phenrril/nutristore/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Save(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProductRepo) SaveVariant(ctx context.Context, v *domain.Variant) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *ProductRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&n).Error
	return n, err
}

func (r *ProductRepo) FindByID(ctx context.Context, productID string) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).Preload("Variants", orderByID).First(&p, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if p.Variants == nil {
		p.Variants = []domain.Variant{}
	}
	return &p, nil
}

// GetVariant toma el ID menor si hay filas duplicadas para la misma terna.
func (r *ProductRepo) GetVariant(ctx context.Context, productID, flavor string, weightGrams int) (*domain.Variant, error) {
	var v domain.Variant
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND flavor = ? AND package_weight_grams = ?", productID, flavor, weightGrams).
		Order("id asc").
		First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *ProductRepo) VariantsForProduct(ctx context.Context, productID string) ([]domain.Variant, error) {
	list := []domain.Variant{}
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ProductRepo) VariantsByWeight(ctx context.Context, productID string, weightGrams int) ([]domain.Variant, error) {
	list := []domain.Variant{}
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND package_weight_grams = ?", productID, weightGrams).
		Order("id asc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// QueryProducts filtra por nombre o categoría en SQL; peso y sabor se
// resuelven al elegir la variante.
func (r *ProductRepo) QueryProducts(ctx context.Context, f domain.FilterCriteria) ([]domain.Product, error) {
	list := []domain.Product{}
	q := r.db.WithContext(ctx).Model(&domain.Product{})
	if f.ByName() {
		for _, w := range strings.Fields(strings.ToLower(f.NameQuery)) {
			q = q.Where("LOWER(name) LIKE ?", "%"+w+"%")
		}
	} else if !f.AllCategories() {
		q = q.Where("LOWER(category) = LOWER(?)", strings.TrimSpace(f.Category))
	}
	if err := q.Order("created_at asc").Order("id asc").Preload("Variants", orderByID).Find(&list).Error; err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Variants == nil {
			list[i].Variants = []domain.Variant{}
		}
	}
	return list, nil
}

func (r *ProductRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	cats := []string{}
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Distinct("category").Where("category <> ''").Order("category asc").Pluck("category", &cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func orderByID(db *gorm.DB) *gorm.DB { return db.Order("id asc") }
