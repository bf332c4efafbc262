package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/giftledger/internal/constants"
	"github.com/giftledger/internal/logger"
	"github.com/giftledger/internal/models"
	"github.com/giftledger/internal/queue"
	"github.com/giftledger/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单服务，只覆盖与礼品卡相关的订单流转
type OrderService struct {
	repo        repository.OrderRepository
	variantRepo repository.VariantRepository
	giftCards   *GiftCardService
	queueClient *queue.Client
}

// NewOrderService 创建订单服务
func NewOrderService(repo repository.OrderRepository, variantRepo repository.VariantRepository, giftCards *GiftCardService, queueClient *queue.Client) *OrderService {
	return &OrderService{
		repo:        repo,
		variantRepo: variantRepo,
		giftCards:   giftCards,
		queueClient: queueClient,
	}
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	UserID uint
	Email  string
	Items  []CreateOrderItem
}

// CreateOrderItem 创建订单项输入
type CreateOrderItem struct {
	VariantID uint
	Quantity  int
}

// CreateOrder 创建订单并按规格单价计算商品金额
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if s == nil || s.repo == nil || s.variantRepo == nil {
		return nil, ErrOrderFetchFailed
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || len(input.Items) == 0 {
		return nil, ErrOrderUpdateFailed
	}

	now := time.Now()
	items := make([]models.LineItem, 0, len(input.Items))
	itemTotal := decimal.Zero
	for _, in := range input.Items {
		if in.VariantID == 0 {
			return nil, ErrOrderUpdateFailed
		}
		quantity := in.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		variant, err := s.variantRepo.GetByID(in.VariantID)
		if err != nil {
			return nil, ErrOrderFetchFailed
		}
		if variant == nil {
			return nil, ErrOrderUpdateFailed
		}
		price := variant.Price.Decimal.Round(2)
		itemTotal = itemTotal.Add(price.Mul(decimal.NewFromInt(int64(quantity))))
		items = append(items, models.LineItem{
			VariantID: variant.ID,
			Quantity:  quantity,
			Price:     variant.Price,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	order := &models.Order{
		OrderNo:         generateOrderNo(),
		UserID:          input.UserID,
		Email:           email,
		State:           constants.OrderStateCart,
		ItemTotal:       models.NewMoneyFromDecimal(itemTotal),
		AdjustmentTotal: models.NewMoneyFromDecimal(decimal.Zero),
		TotalAmount:     models.NewMoneyFromDecimal(itemTotal),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(order, items); err != nil {
		return nil, ErrOrderUpdateFailed
	}
	created, err := s.repo.GetByID(order.ID)
	if err != nil || created == nil {
		return order, nil
	}
	return created, nil
}

// GetOrder 按单号查询订单
func (s *OrderService) GetOrder(orderNo string) (*models.Order, error) {
	if s == nil || s.repo == nil {
		return nil, ErrOrderFetchFailed
	}
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.repo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// AdvanceOrder 推进订单状态
func (s *OrderService) AdvanceOrder(orderNo, state string) (*models.Order, error) {
	if s == nil || s.repo == nil {
		return nil, ErrOrderFetchFailed
	}
	state = strings.TrimSpace(strings.ToLower(state))
	if !isKnownOrderState(state) || state == constants.OrderStateComplete {
		return nil, ErrOrderUpdateFailed
	}
	var result *models.Order
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.GetByOrderNoForUpdate(strings.TrimSpace(orderNo))
		if err != nil {
			return ErrOrderFetchFailed
		}
		if order == nil {
			return ErrOrderNotFound
		}
		order.State = state
		order.UpdatedAt = time.Now()
		if err := repo.Update(order); err != nil {
			return ErrOrderUpdateFailed
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveGiftCard 把礼品卡抵扣从订单上摘掉并重算金额
func (s *OrderService) RemoveGiftCard(orderNo string, cardID uint) (*models.Order, error) {
	if s == nil || s.repo == nil || cardID == 0 {
		return nil, ErrOrderFetchFailed
	}
	var result *models.Order
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.GetByOrderNoForUpdate(strings.TrimSpace(orderNo))
		if err != nil {
			return ErrOrderFetchFailed
		}
		if order == nil {
			return ErrOrderNotFound
		}
		adjustment, err := repo.GetAdjustmentBySource(order.ID, constants.AdjustmentSourceGiftCard, cardID)
		if err != nil {
			return ErrOrderFetchFailed
		}
		if adjustment == nil {
			return ErrGiftCardNotFound
		}
		if adjustment.Captured {
			return ErrOrderUpdateFailed
		}
		if err := repo.DeleteAdjustment(adjustment.ID); err != nil {
			return ErrOrderUpdateFailed
		}
		if err := recalcOrderTotalsInTx(repo, order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CompleteOrder 完成订单。
// 所有未结算的礼品卡抵扣在此一次性从卡余额扣款并标记已结算。
func (s *OrderService) CompleteOrder(orderNo string) (*models.Order, error) {
	if s == nil || s.repo == nil || s.giftCards == nil || s.giftCards.repo == nil {
		return nil, ErrOrderFetchFailed
	}
	var result *models.Order
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cardRepo := s.giftCards.repo.WithTx(tx)

		order, err := repo.GetByOrderNoForUpdate(strings.TrimSpace(orderNo))
		if err != nil {
			return ErrOrderFetchFailed
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.State == constants.OrderStateComplete {
			result = order
			return nil
		}

		adjustments, err := repo.ListAdjustments(order.ID)
		if err != nil {
			return ErrOrderFetchFailed
		}
		now := time.Now()
		for i := range adjustments {
			adjustment := &adjustments[i]
			if adjustment.SourceType != constants.AdjustmentSourceGiftCard || adjustment.Captured {
				continue
			}
			card, err := cardRepo.GetByIDForUpdate(adjustment.SourceID)
			if err != nil {
				return ErrGiftCardFetchFailed
			}
			if card == nil {
				return ErrGiftCardNotFound
			}
			if isGiftCardExpired(card.ExpirationDate, now) {
				return ErrGiftCardExpired
			}
			debit := adjustment.Amount.Decimal.Round(2).Neg()
			balance := card.CurrentValue.Decimal.Round(2)
			if debit.GreaterThan(balance) {
				return ErrGiftCardInsufficientBalance
			}
			card.CurrentValue = models.NewMoneyFromDecimal(balance.Sub(debit))
			card.UpdatedAt = now
			if err := cardRepo.Update(card); err != nil {
				return ErrGiftCardUpdateFailed
			}
			adjustment.Captured = true
			adjustment.UpdatedAt = now
			if err := repo.UpdateAdjustment(adjustment); err != nil {
				return ErrOrderUpdateFailed
			}
		}

		if err := recalcOrderTotalsInTx(repo, order); err != nil {
			return err
		}
		order.State = constants.OrderStateComplete
		if order.TotalAmount.Decimal.IsPositive() {
			order.PaymentState = constants.PaymentStateBalanceDue
		} else {
			order.PaymentState = constants.PaymentStatePaid
		}
		order.CompletedAt = &now
		order.UpdatedAt = now
		if err := repo.Update(order); err != nil {
			return ErrOrderUpdateFailed
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyCompleted(result)
	return result, nil
}

// IssueGiftCardsForOrder 为订单里的礼品卡商品签发卡片。
// 按行项目幂等，已签发过的行项目不会重复出卡。
func (s *OrderService) IssueGiftCardsForOrder(orderID uint) ([]models.GiftCard, error) {
	if s == nil || s.repo == nil || s.giftCards == nil || s.giftCards.repo == nil {
		return nil, ErrOrderFetchFailed
	}
	order, err := s.repo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	issued := make([]models.GiftCard, 0)
	for i := range order.Items {
		item := &order.Items[i]
		if item.Variant == nil || !item.Variant.IsGiftCard {
			continue
		}
		existing, err := s.giftCards.repo.GetByLineItem(item.ID)
		if err != nil {
			return nil, ErrGiftCardFetchFailed
		}
		if existing != nil {
			continue
		}

		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		// 每件商品出一张卡，面值由规格单价派生
		lineItemID := item.ID
		variantID := item.VariantID
		for n := 0; n < quantity; n++ {
			card, err := s.giftCards.IssueGiftCard(IssueGiftCardInput{
				Name:       order.Email,
				Email:      order.Email,
				VariantID:  &variantID,
				LineItemID: &lineItemID,
			})
			if err != nil {
				return issued, err
			}
			issued = append(issued, *card)
		}
	}
	return issued, nil
}

func (s *OrderService) notifyCompleted(order *models.Order) {
	if s == nil || order == nil || !s.queueClient.Enabled() {
		return
	}
	if !orderHasGiftCardItems(order) {
		return
	}
	if err := s.queueClient.EnqueueOrderIssueGiftCards(queue.OrderIssueGiftCardsPayload{OrderID: order.ID}); err != nil {
		logger.Warnw("order_issue_gift_cards_enqueue_failed", "order_id", order.ID, "error", err)
	}
}

func orderHasGiftCardItems(order *models.Order) bool {
	for i := range order.Items {
		if order.Items[i].Variant != nil && order.Items[i].Variant.IsGiftCard {
			return true
		}
	}
	return false
}

// recalcOrderTotalsInTx 按当前抵扣重算订单金额，应付不为负
func recalcOrderTotalsInTx(repo repository.OrderRepository, order *models.Order) error {
	adjustments, err := repo.ListAdjustments(order.ID)
	if err != nil {
		return ErrOrderFetchFailed
	}
	adjustmentTotal := decimal.Zero
	for i := range adjustments {
		adjustmentTotal = adjustmentTotal.Add(adjustments[i].Amount.Decimal.Round(2))
	}
	total := order.ItemTotal.Decimal.Round(2).Add(adjustmentTotal)
	if total.IsNegative() {
		total = decimal.Zero
	}
	order.AdjustmentTotal = models.NewMoneyFromDecimal(adjustmentTotal)
	order.TotalAmount = models.NewMoneyFromDecimal(total)
	order.UpdatedAt = time.Now()
	if err := repo.Update(order); err != nil {
		return ErrOrderUpdateFailed
	}
	return nil
}

func isKnownOrderState(state string) bool {
	switch state {
	case constants.OrderStateCart,
		constants.OrderStateAddress,
		constants.OrderStateDelivery,
		constants.OrderStatePayment,
		constants.OrderStateConfirm,
		constants.OrderStateComplete,
		constants.OrderStateAwaitingReturn,
		constants.OrderStateReturned,
		constants.OrderStateCanceled:
		return true
	}
	return false
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("GL%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(n.String())
	}
	return b.String()
}
