package service

import (
	"strings"

	"github.com/giftledger/internal/models"
	"github.com/giftledger/internal/repository"
)

// VariantService 商品规格服务
type VariantService struct {
	repo repository.VariantRepository
}

// NewVariantService 创建商品规格服务
func NewVariantService(repo repository.VariantRepository) *VariantService {
	return &VariantService{repo: repo}
}

// VariantInput 商品规格入参
type VariantInput struct {
	SKU        string
	Name       string
	Price      models.Money
	IsGiftCard bool
}

// VariantListInput 商品规格列表查询入参
type VariantListInput struct {
	GiftCardOnly bool
	Page         int
	PageSize     int
}

// CreateVariant 创建商品规格
func (s *VariantService) CreateVariant(input VariantInput) (*models.Variant, error) {
	sku := strings.TrimSpace(strings.ToUpper(input.SKU))
	name := strings.TrimSpace(input.Name)
	if sku == "" || name == "" || input.Price.IsNegative() {
		return nil, ErrVariantInvalid
	}

	existing, err := s.repo.GetBySKU(sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrVariantSKUExists
	}

	variant := &models.Variant{
		SKU:        sku,
		Name:       name,
		Price:      input.Price,
		IsGiftCard: input.IsGiftCard,
	}
	if err := s.repo.Create(variant); err != nil {
		return nil, err
	}
	return variant, nil
}

// GetVariant 查询商品规格
func (s *VariantService) GetVariant(id uint) (*models.Variant, error) {
	variant, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, ErrVariantNotFound
	}
	return variant, nil
}

// ListVariants 分页查询商品规格
func (s *VariantService) ListVariants(input VariantListInput) ([]models.Variant, int64, error) {
	return s.repo.List(input.GiftCardOnly, input.Page, input.PageSize)
}

// UpdateVariant 更新商品规格
func (s *VariantService) UpdateVariant(id uint, input VariantInput) (*models.Variant, error) {
	variant, err := s.GetVariant(id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" || input.Price.IsNegative() {
		return nil, ErrVariantInvalid
	}

	sku := strings.TrimSpace(strings.ToUpper(input.SKU))
	if sku != "" && sku != variant.SKU {
		existing, err := s.repo.GetBySKU(sku)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != variant.ID {
			return nil, ErrVariantSKUExists
		}
		variant.SKU = sku
	}

	variant.Name = name
	variant.Price = input.Price
	variant.IsGiftCard = input.IsGiftCard
	if err := s.repo.Update(variant); err != nil {
		return nil, err
	}
	return variant, nil
}

// DeleteVariant 删除商品规格
func (s *VariantService) DeleteVariant(id uint) error {
	if _, err := s.GetVariant(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}
