package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pizzatrack/internal/models"
	"pizzatrack/internal/repository"
	"pizzatrack/internal/store"
)

type CatalogService interface {
	Menu() Menu

	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id string) error
}

// Menu is the public storefront view: available products only, grouped by
// category in category order.
type Menu struct {
	Pizzeria PublicProfile    `json:"pizzeria"`
	Sections []MenuSection    `json:"sections"`
	Featured []models.Product `json:"featured"`
	Promos   []models.Product `json:"promos"`
}

type MenuSection struct {
	Category models.Category  `json:"category"`
	Products []models.Product `json:"products"`
}

type catalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	store      *store.Store
	notifier   *Notifier
}

func NewCatalogService(products repository.ProductRepository, categories repository.CategoryRepository, st *store.Store, notifier *Notifier) CatalogService {
	return &catalogService{products: products, categories: categories, store: st, notifier: notifier}
}

func (s *catalogService) Menu() Menu {
	st := s.store.State()
	menu := Menu{
		Pizzeria: publicProfile(st.Settings),
		Sections: make([]MenuSection, 0, len(st.Categories)),
		Featured: []models.Product{},
		Promos:   []models.Product{},
	}

	byCategory := make(map[string][]models.Product)
	for _, p := range st.Products {
		if !p.Available {
			continue
		}
		byCategory[p.CategoryID] = append(byCategory[p.CategoryID], p)
		if p.IsFeatured {
			menu.Featured = append(menu.Featured, p)
		}
		if p.IsPromo {
			menu.Promos = append(menu.Promos, p)
		}
	}
	for _, c := range st.Categories {
		if products := byCategory[c.ID]; len(products) > 0 {
			menu.Sections = append(menu.Sections, MenuSection{Category: c, Products: products})
		}
	}
	return menu
}

func (s *catalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.products.GetAll(ctx)
}

func (s *catalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, catalogErr(err, ErrProductNotFound, "get product")
	}
	return p, nil
}

func (s *catalogService) validateProduct(p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return validationError("product name is required")
	}
	if p.Price < 0 {
		return validationError("price cannot be negative")
	}
	if p.PromoPrice != nil && *p.PromoPrice < 0 {
		return validationError("promo price cannot be negative")
	}
	if p.CategoryID != "" && !s.categoryExists(p.CategoryID) {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, p.CategoryID)
	}
	for i := range p.Variants {
		v := &p.Variants[i]
		v.Name = strings.TrimSpace(v.Name)
		if v.Name == "" {
			return validationError("variant %d has no name", i+1)
		}
		if v.ID == "" {
			v.ID = uuid.NewString()[:8]
		}
	}
	return nil
}

func (s *catalogService) categoryExists(id string) bool {
	for _, c := range s.store.State().Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (s *catalogService) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := s.validateProduct(p); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.products.Create(ctx, p); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	s.store.Dispatch(store.UpsertProduct{Product: *p})
	s.notifier.CatalogEvent(ctx, s.store.Settings(), "product_created", p)
	return nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, p *models.Product) error {
	if err := s.validateProduct(p); err != nil {
		return err
	}
	existing, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = existing.CreatedAt
	if err := s.products.Update(ctx, p); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	s.store.Dispatch(store.UpsertProduct{Product: *p})
	s.notifier.CatalogEvent(ctx, s.store.Settings(), "product_updated", p)
	return nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return catalogErr(err, ErrProductNotFound, "delete product")
	}
	s.store.Dispatch(store.DeleteProduct{ID: id})
	s.notifier.CatalogEvent(ctx, s.store.Settings(), "product_deleted", map[string]string{"id": id})
	return nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.GetAll(ctx)
}

func (s *catalogService) CreateCategory(ctx context.Context, c *models.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return validationError("category name is required")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	s.store.Dispatch(store.UpsertCategory{Category: *c})
	s.notifier.CatalogEvent(ctx, s.store.Settings(), "category_created", c)
	return nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, c *models.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return validationError("category name is required")
	}
	existing, err := s.categories.GetByID(ctx, c.ID)
	if err != nil {
		return catalogErr(err, ErrCategoryNotFound, "get category")
	}
	c.CreatedAt = existing.CreatedAt
	if err := s.categories.Update(ctx, c); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	s.store.Dispatch(store.UpsertCategory{Category: *c})
	s.notifier.CatalogEvent(ctx, s.store.Settings(), "category_updated", c)
	return nil
}

// DeleteCategory leaves the category's products in place; they drop out of
// the menu sections until reassigned.
func (s *catalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return catalogErr(err, ErrCategoryNotFound, "delete category")
	}
	s.store.Dispatch(store.DeleteCategory{ID: id})
	s.notifier.CatalogEvent(ctx, s.store.Settings(), "category_deleted", map[string]string{"id": id})
	return nil
}

func catalogErr(err, notFound error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
