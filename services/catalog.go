package services

import (
	"context"
	"errors"
	"eshop/apperror"
	"eshop/cache"
	"eshop/models"
	"eshop/uploads"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"log/slog"
	"mime/multipart"
)

const maxCountInStock = 255

type CategoryInput struct {
	Name  string `json:"name" validate:"required"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// 商品欄位，nil表示未提供
type ProductInput struct {
	Name            *string          `form:"name" json:"name"`
	Description     *string          `form:"description" json:"description"`
	RichDescription *string          `form:"richDescription" json:"richDescription"`
	Brand           *string          `form:"brand" json:"brand"`
	Price           *decimal.Decimal `form:"price" json:"price"`
	Category        string           `form:"category" json:"category"`
	CountInStock    *int             `form:"countInStock" json:"countInStock"`
	Rating          *float64         `form:"rating" json:"rating"`
	NumReviews      *int             `form:"numReviews" json:"numReviews"`
	IsFeatured      *bool            `form:"isFeatured" json:"isFeatured"`
}

type CatalogService struct {
	db      *gorm.DB
	cache   cache.ProductCache
	uploads *uploads.Store
	logger  *slog.Logger
}

func NewCatalogService(db *gorm.DB, productCache cache.ProductCache, store *uploads.Store, logger *slog.Logger) *CatalogService {
	if productCache == nil {
		productCache = cache.NoopProductCache{}
	}
	return &CatalogService{
		db:      db,
		cache:   productCache,
		uploads: store,
		logger:  logger,
	}
}

// 查詢分類列表
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, apperror.Internal("cannot list categories", err)
	}
	return categories, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	if err := checkID(id, "invalid category id"); err != nil {
		return nil, err
	}

	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "the category with the given ID was not found")
	}
	return &category, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	category := models.Category{
		Name:  input.Name,
		Icon:  input.Icon,
		Color: input.Color,
	}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, apperror.Internal("the category cannot be created", err)
	}
	return &category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, input CategoryInput) (*models.Category, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = input.Name
	category.Icon = input.Icon
	category.Color = input.Color
	if err := s.db.WithContext(ctx).Save(category).Error; err != nil {
		return nil, apperror.Internal("the category cannot be updated", err)
	}
	s.invalidateCategory(ctx, id)
	return category, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := checkID(id, "invalid category id"); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return apperror.Internal("the category cannot be deleted", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("category not found")
	}
	s.invalidateCategory(ctx, id)
	return nil
}

// 查詢商品列表，categoryIDs不為空時只回傳屬於這些分類的商品
func (s *CatalogService) ListProducts(ctx context.Context, categoryIDs []string) ([]models.Product, error) {
	query := s.db.WithContext(ctx).Preload("Category")
	if len(categoryIDs) > 0 {
		for _, id := range categoryIDs {
			if err := checkID(id, "invalid category id: "+id); err != nil {
				return nil, err
			}
		}
		query = query.Where("category_id IN ?", categoryIDs)
	}

	products := []models.Product{}
	if err := query.Order("date_created DESC").Find(&products).Error; err != nil {
		return nil, apperror.Internal("cannot list products", err)
	}
	return products, nil
}

// 查詢商品詳細資料，優先從快取讀取
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if err := checkID(id, "invalid product id"); err != nil {
		return nil, err
	}

	product, err := s.cache.Get(ctx, id)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("product cache read failed", "productID", id, "error", err)
	}

	product, err = s.findProduct(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, product); err != nil {
		s.logger.Warn("product cache write failed", "productID", id, "error", err)
	}
	return product, nil
}

func (s *CatalogService) findProduct(ctx context.Context, db *gorm.DB, id string) (*models.Product, error) {
	var product models.Product
	if err := db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "the product with the given ID was not found")
	}
	return &product, nil
}

// 檢查分類ID格式及是否存在
func (s *CatalogService) resolveCategory(ctx context.Context, id string) error {
	if !models.IsValidID(id) {
		return apperror.Validation("invalid category id")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperror.Internal("cannot look up category", err)
	}
	if count == 0 {
		return apperror.Validation("invalid category")
	}
	return nil
}

// 將輸入套用到商品上
func applyProductInput(product *models.Product, input ProductInput) error {
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.RichDescription != nil {
		product.RichDescription = *input.RichDescription
	}
	if input.Brand != nil {
		product.Brand = *input.Brand
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.CountInStock != nil {
		product.CountInStock = *input.CountInStock
	}
	if input.Rating != nil {
		product.Rating = *input.Rating
	}
	if input.NumReviews != nil {
		product.NumReviews = *input.NumReviews
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}
	product.CategoryID = input.Category

	switch {
	case product.Name == "":
		return apperror.Validation("name is required")
	case product.Description == "":
		return apperror.Validation("description is required")
	case product.Price.IsNegative():
		return apperror.Validation("price must not be negative")
	case product.CountInStock < 0 || product.CountInStock > maxCountInStock:
		return apperror.Validation("countInStock must be between 0 and 255")
	}
	return nil
}

func imageError(err error) error {
	if errors.Is(err, uploads.ErrInvalidImage) {
		return apperror.Validation("only image files are allowed")
	}
	return apperror.Internal("cannot store image", err)
}

// 刪除已儲存但未使用的圖片
func (s *CatalogService) discard(file *uploads.File) {
	if err := s.uploads.Remove(file); err != nil {
		s.logger.Warn("cannot remove uploaded file", "path", file.Path, "error", err)
	}
}

// 刪除不再使用的圖片，非本機上傳的網址會略過
func (s *CatalogService) discardURL(imageURL string) {
	if file := s.uploads.FromURL(imageURL); file != nil {
		s.discard(file)
	}
}

// 新增商品，驗證失敗時刪除已上傳的圖片
func (s *CatalogService) CreateProduct(ctx context.Context, input ProductInput, image *multipart.FileHeader, baseURL string) (*models.Product, error) {
	var stored *uploads.File
	if image != nil {
		file, err := s.uploads.Save(image)
		if err != nil {
			return nil, imageError(err)
		}
		stored = file
	}

	product, err := s.createProduct(ctx, input, stored, baseURL)
	if err != nil && stored != nil {
		s.discard(stored)
	}
	return product, err
}

func (s *CatalogService) createProduct(ctx context.Context, input ProductInput, image *uploads.File, baseURL string) (*models.Product, error) {
	if err := s.resolveCategory(ctx, input.Category); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, apperror.Validation("no image in the request")
	}

	product := models.Product{
		Image:  s.uploads.URL(baseURL, image),
		Images: []string{},
	}
	if err := applyProductInput(&product, input); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Omit("Category").Create(&product).Error; err != nil {
		return nil, apperror.Internal("the product cannot be created", err)
	}
	return s.findProduct(ctx, s.db, product.ID)
}

// 修改商品，沒有上傳新圖片則保留原圖片
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, input ProductInput, image *multipart.FileHeader, baseURL string) (*models.Product, error) {
	if err := checkID(id, "invalid product id"); err != nil {
		return nil, err
	}
	if err := s.resolveCategory(ctx, input.Category); err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Validation("invalid product")
		}
		return nil, apperror.Internal("database error", err)
	}

	if err := applyProductInput(&product, input); err != nil {
		return nil, err
	}

	previousImage := product.Image
	var stored *uploads.File
	if image != nil {
		file, err := s.uploads.Save(image)
		if err != nil {
			return nil, imageError(err)
		}
		stored = file
		product.Image = s.uploads.URL(baseURL, file)
	}

	if err := s.db.WithContext(ctx).Omit("Category").Save(&product).Error; err != nil {
		if stored != nil {
			s.discard(stored)
		}
		return nil, apperror.Internal("the product cannot be updated", err)
	}
	s.invalidate(ctx, id)
	if stored != nil && previousImage != product.Image {
		s.discardURL(previousImage)
	}

	return s.findProduct(ctx, s.db, id)
}

// 更新商品的圖片集
func (s *CatalogService) UpdateGalleryImages(ctx context.Context, id string, images []*multipart.FileHeader, baseURL string, maxImages int) (*models.Product, error) {
	if err := checkID(id, "invalid product id"); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, apperror.Validation("no images in the request")
	}
	if maxImages > 0 && len(images) > maxImages {
		return nil, apperror.Validation("too many images")
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "the product with the given ID was not found")
	}

	stored := make([]*uploads.File, 0, len(images))
	discardAll := func() {
		for _, file := range stored {
			s.discard(file)
		}
	}

	paths := make([]string, 0, len(images))
	for _, image := range images {
		file, err := s.uploads.Save(image)
		if err != nil {
			discardAll()
			return nil, imageError(err)
		}
		stored = append(stored, file)
		paths = append(paths, s.uploads.URL(baseURL, file))
	}

	previousImages := product.Images
	product.Images = paths
	if err := s.db.WithContext(ctx).Model(&product).Select("Images").Updates(&product).Error; err != nil {
		discardAll()
		return nil, apperror.Internal("the gallery cannot be updated", err)
	}
	s.invalidate(ctx, id)
	for _, image := range previousImages {
		s.discardURL(image)
	}

	return s.findProduct(ctx, s.db, id)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := checkID(id, "invalid product id"); err != nil {
		return err
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return lookupError(err, "product not found")
	}

	result := s.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return apperror.Internal("the product cannot be deleted", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("product not found")
	}
	s.invalidate(ctx, id)

	//刪除商品的圖片及圖片集
	s.discardURL(product.Image)
	for _, image := range product.Images {
		s.discardURL(image)
	}
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Warn("product cache invalidation failed", "productID", id, "error", err)
	}
}

// 分類變更後清除該分類下所有商品的快取
func (s *CatalogService) invalidateCategory(ctx context.Context, categoryID string) {
	var productIDs []string
	err := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ?", categoryID).
		Pluck("id", &productIDs).
		Error
	if err != nil {
		s.logger.Warn("cannot list products of category", "categoryID", categoryID, "error", err)
		return
	}
	for _, id := range productIDs {
		s.invalidate(ctx, id)
	}
}

func (s *CatalogService) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return 0, apperror.Internal("cannot count products", err)
	}
	return count, nil
}

// 查詢精選商品，limit為0表示不限制數量
func (s *CatalogService) FeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	if limit < 0 {
		return nil, apperror.Validation("invalid count")
	}

	query := s.db.WithContext(ctx).Preload("Category").Where("is_featured = ?", true)
	if limit > 0 {
		query = query.Limit(limit)
	}

	products := []models.Product{}
	if err := query.Order("date_created DESC").Find(&products).Error; err != nil {
		return nil, apperror.Internal("cannot list featured products", err)
	}
	return products, nil
}
