package services

import (
	"context"
	"errors"
	"eshop/apperror"
	"eshop/models"
	"fmt"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"log/slog"
	"time"
)

var errInvalidProduct = errors.New("order item references a missing product")

type OrderItemInput struct {
	Product  string `json:"product" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

type CreateOrderInput struct {
	OrderItems       []OrderItemInput `json:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress1 string           `json:"shippingAddress1" validate:"required"`
	ShippingAddress2 string           `json:"shippingAddress2"`
	City             string           `json:"city" validate:"required"`
	Zip              string           `json:"zip" validate:"required"`
	Country          string           `json:"country" validate:"required"`
	Phone            string           `json:"phone" validate:"required"`
	Status           string           `json:"status"`
	User             string           `json:"user" validate:"required,uuid"`
	DateOrdered      *time.Time       `json:"dateOrdered"`
}

type OrderService struct {
	db            *gorm.DB
	logger        *slog.Logger
	transactional bool
	now           func() time.Time
}

// transactional為false時，訂單明細會並行寫入且失敗不會回滾
func NewOrderService(db *gorm.DB, logger *slog.Logger, transactional bool) *OrderService {
	return &OrderService{
		db:            db,
		logger:        logger,
		transactional: transactional,
		now:           time.Now,
	}
}

// 送出訂單：先建立訂單明細，再依明細計算總金額建立訂單
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var (
		order *models.Order
		err   error
	)
	if s.transactional {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			placed, err := s.placeOrder(ctx, tx, input, false)
			if err != nil {
				return err
			}
			order = placed
			return nil
		})
	} else {
		order, err = s.placeOrder(ctx, s.db.WithContext(ctx), input, true)
	}
	if err != nil {
		if errors.Is(err, errInvalidProduct) {
			return nil, apperror.Validation("invalid product")
		}
		return nil, apperror.Internal("the order cannot be created", err)
	}

	return s.GetOrder(ctx, order.ID)
}

func (s *OrderService) placeOrder(ctx context.Context, db *gorm.DB, input CreateOrderInput, concurrent bool) (*models.Order, error) {
	orderItemIDs, err := createOrderItems(ctx, db, input.OrderItems, concurrent)
	if err != nil {
		return nil, err
	}

	totalPrice, err := orderTotal(db, orderItemIDs)
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.DefaultOrderStatus
	}
	dateOrdered := s.now()
	if input.DateOrdered != nil {
		dateOrdered = *input.DateOrdered
	}

	order := models.Order{
		ShippingAddress1: input.ShippingAddress1,
		ShippingAddress2: input.ShippingAddress2,
		City:             input.City,
		Zip:              input.Zip,
		Country:          input.Country,
		Phone:            input.Phone,
		Status:           status,
		TotalPrice:       totalPrice,
		UserID:           input.User,
		DateOrdered:      dateOrdered,
	}
	if err := db.Omit(clause.Associations).Create(&order).Error; err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	err = db.Model(&models.OrderItem{}).
		Where("id IN ?", orderItemIDs).
		Update("order_id", order.ID).
		Error
	if err != nil {
		return nil, fmt.Errorf("link order items: %w", err)
	}

	return &order, nil
}

// 建立訂單明細並依輸入順序回傳ID
func createOrderItems(ctx context.Context, db *gorm.DB, items []OrderItemInput, concurrent bool) ([]string, error) {
	ids := make([]string, len(items))
	create := func(db *gorm.DB, position int, item OrderItemInput) error {
		orderItem := models.OrderItem{
			Position:  position,
			Quantity:  item.Quantity,
			ProductID: item.Product,
		}
		if err := db.Create(&orderItem).Error; err != nil {
			return fmt.Errorf("create order item %d: %w", position, err)
		}
		ids[position] = orderItem.ID
		return nil
	}

	if !concurrent {
		for i, item := range items {
			if err := create(db, i, item); err != nil {
				return nil, err
			}
		}
		return ids, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		g.Go(func() error {
			return create(db.WithContext(gctx), i, item)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ids, nil
}

// 重新讀取每筆明細及商品價格，計算訂單總金額
func orderTotal(db *gorm.DB, orderItemIDs []string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, id := range orderItemIDs {
		var orderItem models.OrderItem
		err := db.
			Preload("Product", func(db *gorm.DB) *gorm.DB {
				return db.Select("id", "price")
			}).
			First(&orderItem, "id = ?", id).
			Error
		if err != nil {
			return decimal.Zero, fmt.Errorf("load order item %s: %w", id, err)
		}
		if orderItem.Product == nil {
			return decimal.Zero, fmt.Errorf("%w: %s", errInvalidProduct, orderItem.ProductID)
		}

		lineTotal := orderItem.Product.Price.Mul(decimal.NewFromInt(int64(orderItem.Quantity)))
		total = total.Add(lineTotal)
	}
	return total, nil
}

func withOrderItems(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func withUserName(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name")
}

// 查詢訂單詳細資訊，包含使用者名稱及每筆明細的商品和分類
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	if err := checkID(id, "invalid order id"); err != nil {
		return nil, err
	}

	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("User", withUserName).
		Preload("OrderItems", withOrderItems).
		Preload("OrderItems.Product.Category").
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return nil, lookupError(err, "the order with the given ID was not found")
	}
	return &order, nil
}

// 查詢所有訂單，最新的在前
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.WithContext(ctx).
		Preload("User", withUserName).
		Preload("OrderItems", withOrderItems).
		Order("date_ordered DESC").
		Find(&orders).
		Error
	if err != nil {
		return nil, apperror.Internal("cannot list orders", err)
	}
	return orders, nil
}

// 查詢使用者的訂單列表
func (s *OrderService) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	if err := checkID(userID, "invalid user id"); err != nil {
		return nil, err
	}

	orders := []models.Order{}
	err := s.db.WithContext(ctx).
		Preload("User", withUserName).
		Preload("OrderItems", withOrderItems).
		Preload("OrderItems.Product.Category").
		Where("user_id = ?", userID).
		Order("date_ordered DESC").
		Find(&orders).
		Error
	if err != nil {
		return nil, apperror.Internal("cannot list user orders", err)
	}
	return orders, nil
}

// 只修改訂單狀態
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	if err := checkID(id, "invalid order id"); err != nil {
		return nil, err
	}
	if status == "" {
		return nil, apperror.Validation("status is required")
	}

	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "the order cannot be updated")
	}

	err := s.db.WithContext(ctx).
		Model(&order).
		Update("status", status).
		Error
	if err != nil {
		return nil, apperror.Internal("the order cannot be updated", err)
	}
	return s.GetOrder(ctx, id)
}

// 刪除訂單及其所有明細，明細刪除失敗只記錄不中止
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	if err := checkID(id, "invalid order id"); err != nil {
		return err
	}

	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("OrderItems").
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return lookupError(err, "order not found")
	}

	teardown := func(tx *gorm.DB) error {
		for _, orderItem := range order.OrderItems {
			if err := tx.Delete(&models.OrderItem{}, "id = ?", orderItem.ID).Error; err != nil {
				s.logger.Warn("cannot delete order item",
					"orderID", order.ID,
					"orderItemID", orderItem.ID,
					"error", err,
				)
			}
		}
		return tx.Delete(&models.Order{}, "id = ?", order.ID).Error
	}

	if s.transactional {
		err = s.db.WithContext(ctx).Transaction(teardown)
	} else {
		err = teardown(s.db.WithContext(ctx))
	}
	if err != nil {
		return apperror.Internal("the order cannot be deleted", err)
	}
	return nil
}

func (s *OrderService) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Count(&count).Error; err != nil {
		return 0, apperror.Internal("cannot count orders", err)
	}
	return count, nil
}

// 所有訂單的總金額
func (s *OrderService) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("SUM(total_price)").
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, apperror.Internal("the order sales cannot be generated", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
