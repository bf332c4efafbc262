package service

import (
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/giftledger/internal/calculator"
	"github.com/giftledger/internal/config"
	"github.com/giftledger/internal/constants"
	"github.com/giftledger/internal/logger"
	"github.com/giftledger/internal/models"
	"github.com/giftledger/internal/queue"
	"github.com/giftledger/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var giftCardEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// GiftCardService 礼品卡服务
type GiftCardService struct {
	repo        repository.GiftCardRepository
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	variantRepo repository.VariantRepository
	registry    *calculator.Registry
	queueClient *queue.Client
	cfg         *config.GiftCardConfig
}

// IssueGiftCardInput 礼品卡签发输入
type IssueGiftCardInput struct {
	Name           string
	Email          string
	Note           string
	Value          models.Money
	VariantID      *uint
	LineItemID     *uint
	ExpirationDate *time.Time
	RestrictToUser bool // 仅允许签发给已注册用户
}

// GiftCardListInput 礼品卡列表输入
type GiftCardListInput struct {
	Code              string
	Email             string
	Status            string
	UserID            uint
	CreatedFrom       *time.Time
	CreatedTo         *time.Time
	ExpiresFrom       *time.Time
	ExpiresTo         *time.Time
	ExpiresWithinDays int
	SortBy            string
	SortDesc          bool
	Page              int
	PageSize          int
}

// UpdateGiftCardInput 礼品卡更新输入
type UpdateGiftCardInput struct {
	Name            *string
	Email           *string
	Note            *string
	ExpirationDate  *time.Time
	ClearExpiration bool
}

// ApplyGiftCardInput 礼品卡抵扣输入
type ApplyGiftCardInput struct {
	UserID  uint
	OrderNo string
	Code    string
}

// DebitGiftCardInput 礼品卡扣款输入
type DebitGiftCardInput struct {
	CardID uint
	Amount models.Money
}

// TransferGiftCardInput 礼品卡转赠输入
type TransferGiftCardInput struct {
	CardID         uint
	Amount         models.Money
	RecipientName  string
	RecipientEmail string
	Note           string
}

// NewGiftCardService 创建礼品卡服务
func NewGiftCardService(
	repo repository.GiftCardRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	variantRepo repository.VariantRepository,
	registry *calculator.Registry,
	queueClient *queue.Client,
	cfg *config.GiftCardConfig,
) *GiftCardService {
	return &GiftCardService{
		repo:        repo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		variantRepo: variantRepo,
		registry:    registry,
		queueClient: queueClient,
		cfg:         cfg,
	}
}

// IssueGiftCard 签发礼品卡
func (s *GiftCardService) IssueGiftCard(input IssueGiftCardInput) (*models.GiftCard, error) {
	if s == nil || s.repo == nil {
		return nil, ErrGiftCardCreateFailed
	}

	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	note := strings.TrimSpace(input.Note)
	value := input.Value.Decimal.Round(2)

	fields := make(map[string]string)
	if name == "" {
		fields["name"] = "不能为空"
	}
	if email == "" || !giftCardEmailPattern.MatchString(email) {
		fields["email"] = "邮箱格式不正确"
	}

	var variant *models.Variant
	if input.VariantID != nil && *input.VariantID > 0 {
		if s.variantRepo == nil {
			return nil, ErrGiftCardCreateFailed
		}
		loaded, err := s.variantRepo.GetByID(*input.VariantID)
		if err != nil {
			return nil, ErrGiftCardFetchFailed
		}
		if loaded == nil {
			fields["variant"] = "商品规格不存在"
		} else {
			variant = loaded
			// 指定了规格时面值一律取规格单价，忽略调用方传入的面值
			value = loaded.Price.Decimal.Round(2)
		}
	}
	if value.IsNegative() {
		fields["original_value"] = "不能为负数"
	}

	var userID *uint
	if input.RestrictToUser && fields["email"] == "" {
		user, err := s.userRepo.GetByEmail(email)
		if err != nil {
			return nil, ErrGiftCardFetchFailed
		}
		if user == nil {
			fields["email"] = "找不到对应邮箱的用户"
		} else {
			userID = &user.ID
		}
	}

	if len(fields) > 0 {
		return nil, &GiftCardValidationError{Fields: fields}
	}

	now := time.Now()
	expiration := normalizeGiftCardExpireAt(input.ExpirationDate)
	if expiration == nil {
		deadline := now.AddDate(0, 0, s.defaultExpirationDays()).UTC()
		expiration = &deadline
	}

	card := &models.GiftCard{
		Name:           name,
		Email:          email,
		Note:           note,
		OriginalValue:  models.NewMoneyFromDecimal(value),
		CurrentValue:   models.NewMoneyFromDecimal(value),
		CalculatorType: s.calculatorType(),
		UserID:         userID,
		LineItemID:     input.LineItemID,
		ExpirationDate: expiration,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if variant != nil {
		card.VariantID = &variant.ID
	}

	if err := models.DB.Transaction(func(tx *gorm.DB) error {
		return s.createWithUniqueCode(tx, card)
	}); err != nil {
		return nil, err
	}

	s.notifyIssued(card)
	return card, nil
}

// GetGiftCard 查询礼品卡详情
func (s *GiftCardService) GetGiftCard(id uint) (*models.GiftCard, error) {
	if s == nil || s.repo == nil || id == 0 {
		return nil, ErrGiftCardInvalid
	}
	card, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrGiftCardFetchFailed
	}
	if card == nil {
		return nil, ErrGiftCardNotFound
	}
	return card, nil
}

// ListGiftCards 获取礼品卡列表
func (s *GiftCardService) ListGiftCards(input GiftCardListInput) ([]models.GiftCard, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, ErrGiftCardFetchFailed
	}
	filter := repository.GiftCardListFilter{
		Code:              strings.TrimSpace(strings.ToUpper(input.Code)),
		Email:             strings.TrimSpace(strings.ToLower(input.Email)),
		Status:            strings.TrimSpace(strings.ToLower(input.Status)),
		UserID:            input.UserID,
		CreatedFrom:       input.CreatedFrom,
		CreatedTo:         input.CreatedTo,
		ExpiresFrom:       input.ExpiresFrom,
		ExpiresTo:         input.ExpiresTo,
		ExpiresWithinDays: input.ExpiresWithinDays,
		SortBy:            strings.TrimSpace(strings.ToLower(input.SortBy)),
		SortDesc:          input.SortDesc,
		Page:              input.Page,
		PageSize:          input.PageSize,
	}

	cards, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, ErrGiftCardFetchFailed
	}
	return cards, total, nil
}

// ListUserGiftCards 查询用户名下的礼品卡
func (s *GiftCardService) ListUserGiftCards(userID uint, usableOnly bool) ([]models.GiftCard, error) {
	if s == nil || s.repo == nil {
		return nil, ErrGiftCardFetchFailed
	}
	if userID == 0 {
		return []models.GiftCard{}, nil
	}
	cards, err := s.repo.ListByUser(userID, usableOnly, time.Now())
	if err != nil {
		return nil, ErrGiftCardFetchFailed
	}
	return cards, nil
}

// ListTransfers 查询礼品卡转出记录
func (s *GiftCardService) ListTransfers(cardID uint) ([]models.GiftCardTransfer, error) {
	if s == nil || s.repo == nil || cardID == 0 {
		return nil, ErrGiftCardInvalid
	}
	transfers, err := s.repo.ListTransfers(cardID)
	if err != nil {
		return nil, ErrGiftCardFetchFailed
	}
	return transfers, nil
}

// ListCardAdjustments 查询礼品卡在订单上的抵扣记录
func (s *GiftCardService) ListCardAdjustments(cardID uint) ([]models.Adjustment, error) {
	if s == nil || s.orderRepo == nil || cardID == 0 {
		return nil, ErrGiftCardInvalid
	}
	adjustments, err := s.orderRepo.ListAdjustmentsBySource(constants.AdjustmentSourceGiftCard, cardID)
	if err != nil {
		return nil, ErrGiftCardFetchFailed
	}
	return adjustments, nil
}

// UpdateGiftCard 更新礼品卡收卡人信息与有效期
func (s *GiftCardService) UpdateGiftCard(id uint, input UpdateGiftCardInput) (*models.GiftCard, error) {
	if s == nil || s.repo == nil || id == 0 {
		return nil, ErrGiftCardInvalid
	}
	card, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrGiftCardFetchFailed
	}
	if card == nil {
		return nil, ErrGiftCardNotFound
	}

	fields := make(map[string]string)
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			fields["name"] = "不能为空"
		} else {
			card.Name = name
		}
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" || !giftCardEmailPattern.MatchString(email) {
			fields["email"] = "邮箱格式不正确"
		} else {
			card.Email = email
		}
	}
	if input.Note != nil {
		card.Note = strings.TrimSpace(*input.Note)
	}
	if input.ClearExpiration {
		card.ExpirationDate = nil
	} else if input.ExpirationDate != nil {
		card.ExpirationDate = normalizeGiftCardExpireAt(input.ExpirationDate)
	}
	if len(fields) > 0 {
		return nil, &GiftCardValidationError{Fields: fields}
	}

	card.UpdatedAt = time.Now()
	if err := s.repo.Update(card); err != nil {
		return nil, ErrGiftCardUpdateFailed
	}
	return card, nil
}

// DeleteGiftCard 软删除礼品卡
func (s *GiftCardService) DeleteGiftCard(id uint) error {
	if s == nil || s.repo == nil || id == 0 {
		return ErrGiftCardInvalid
	}
	card, err := s.repo.GetByID(id)
	if err != nil {
		return ErrGiftCardFetchFailed
	}
	if card == nil {
		return ErrGiftCardNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return ErrGiftCardDeleteFailed
	}
	return nil
}

// ApplyGiftCard 将礼品卡挂到订单上生成抵扣。
// 同一张卡对同一订单重复提交直接返回已有抵扣，不产生副作用。
func (s *GiftCardService) ApplyGiftCard(input ApplyGiftCardInput) (*models.Adjustment, error) {
	if s == nil || s.repo == nil || s.orderRepo == nil {
		return nil, ErrGiftCardFetchFailed
	}
	code := strings.TrimSpace(strings.ToUpper(input.Code))
	orderNo := strings.TrimSpace(input.OrderNo)
	if code == "" || orderNo == "" {
		return nil, ErrGiftCardInvalid
	}

	var result *models.Adjustment
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		order, err := orderRepo.GetByOrderNoForUpdate(orderNo)
		if err != nil {
			return ErrOrderFetchFailed
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if input.UserID != 0 && order.UserID != 0 && order.UserID != input.UserID {
			return ErrOrderNotFound
		}

		card, err := repo.GetByCodeForUpdate(code)
		if err != nil {
			return ErrGiftCardFetchFailed
		}
		if card == nil {
			return ErrGiftCardNotFound
		}

		// 幂等：同卡同订单只保留一条抵扣
		existing, err := orderRepo.GetAdjustmentBySource(order.ID, constants.AdjustmentSourceGiftCard, card.ID)
		if err != nil {
			return ErrOrderFetchFailed
		}
		if existing != nil {
			result = existing
			return nil
		}

		now := time.Now()
		if !card.CurrentValue.Decimal.Round(2).IsPositive() {
			return ErrGiftCardRedeemed
		}
		if isGiftCardExpired(card.ExpirationDate, now) {
			return ErrGiftCardExpired
		}
		if !orderStateAllowsGiftCard(order.State) {
			return ErrGiftCardOrderNotEligible
		}
		if card.UserID != nil && order.UserID != 0 && *card.UserID != order.UserID {
			return ErrGiftCardInvalidUser
		}

		// 先绑定持卡人再生成抵扣，后续扣款依赖持卡关系
		if card.UserID == nil && order.UserID != 0 {
			owner := order.UserID
			card.UserID = &owner
			card.UpdatedAt = now
			if err := repo.Update(card); err != nil {
				return ErrGiftCardUpdateFailed
			}
		}

		amount := s.calculatorFor(card).Compute(order.TotalAmount, card)
		adjustment := &models.Adjustment{
			OrderID:    order.ID,
			SourceType: constants.AdjustmentSourceGiftCard,
			SourceID:   card.ID,
			Amount:     models.NewMoneyFromDecimal(amount.Decimal.Neg()),
			Label:      fmt.Sprintf("礼品卡 %s", card.Code),
			Mandatory:  true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := orderRepo.CreateAdjustment(adjustment); err != nil {
			return ErrOrderUpdateFailed
		}
		if err := recalcOrderTotalsInTx(orderRepo, order); err != nil {
			return err
		}
		result = adjustment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DebitGiftCard 从礼品卡余额扣款
func (s *GiftCardService) DebitGiftCard(input DebitGiftCardInput) (*models.GiftCard, error) {
	if s == nil || s.repo == nil || input.CardID == 0 {
		return nil, ErrGiftCardInvalid
	}
	amount := input.Amount.Decimal.Round(2)
	if amount.IsNegative() {
		return nil, ErrGiftCardInvalid
	}

	var result *models.GiftCard
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		card, err := repo.GetByIDForUpdate(input.CardID)
		if err != nil {
			return ErrGiftCardFetchFailed
		}
		if card == nil {
			return ErrGiftCardNotFound
		}
		balance := card.CurrentValue.Decimal.Round(2)
		if amount.GreaterThan(balance) {
			return ErrGiftCardInsufficientBalance
		}
		card.CurrentValue = models.NewMoneyFromDecimal(balance.Sub(amount))
		card.UpdatedAt = time.Now()
		if err := repo.Update(card); err != nil {
			return ErrGiftCardUpdateFailed
		}
		result = card
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// VoidGiftCard 作废礼品卡，余额清零
func (s *GiftCardService) VoidGiftCard(id uint) (*models.GiftCard, error) {
	if s == nil || s.repo == nil || id == 0 {
		return nil, ErrGiftCardInvalid
	}
	var result *models.GiftCard
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		card, err := repo.GetByIDForUpdate(id)
		if err != nil {
			return ErrGiftCardFetchFailed
		}
		if card == nil {
			return ErrGiftCardNotFound
		}
		if !card.CurrentValue.Decimal.Round(2).IsPositive() {
			return ErrGiftCardVoidFailed
		}
		card.CurrentValue = models.NewMoneyFromDecimal(decimal.Zero)
		card.UpdatedAt = time.Now()
		if err := repo.Update(card); err != nil {
			return ErrGiftCardUpdateFailed
		}
		result = card
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RestoreGiftCard 恢复已作废的礼品卡，余额回到原始面值
func (s *GiftCardService) RestoreGiftCard(id uint) (*models.GiftCard, error) {
	if s == nil || s.repo == nil || id == 0 {
		return nil, ErrGiftCardInvalid
	}
	var result *models.GiftCard
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		card, err := repo.GetByIDForUpdate(id)
		if err != nil {
			return ErrGiftCardFetchFailed
		}
		if card == nil {
			return ErrGiftCardNotFound
		}
		if !card.CurrentValue.Decimal.Round(2).IsZero() {
			return ErrGiftCardRestoreFailed
		}
		card.CurrentValue = card.OriginalValue
		card.UpdatedAt = time.Now()
		if err := repo.Update(card); err != nil {
			return ErrGiftCardUpdateFailed
		}
		result = card
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// TransferGiftCard 把部分或全部余额转成一张新卡送给收件人。
// 扣减与新建在同一事务内完成，失败时两边都不落库。
func (s *GiftCardService) TransferGiftCard(input TransferGiftCardInput) (*models.GiftCard, *models.GiftCardTransfer, error) {
	if s == nil || s.repo == nil || input.CardID == 0 {
		return nil, nil, ErrGiftCardInvalid
	}

	recipientName := strings.TrimSpace(input.RecipientName)
	recipientEmail := strings.ToLower(strings.TrimSpace(input.RecipientEmail))
	note := strings.TrimSpace(input.Note)
	amount := input.Amount.Decimal.Round(2)

	fields := make(map[string]string)
	if recipientName == "" {
		fields["name"] = "不能为空"
	}
	if recipientEmail == "" || !giftCardEmailPattern.MatchString(recipientEmail) {
		fields["email"] = "邮箱格式不正确"
	}
	if len(fields) > 0 {
		return nil, nil, &GiftCardValidationError{Fields: fields}
	}

	var (
		destination *models.GiftCard
		transfer    *models.GiftCardTransfer
	)
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		source, err := repo.GetByIDForUpdate(input.CardID)
		if err != nil {
			return ErrGiftCardFetchFailed
		}
		if source == nil {
			return ErrGiftCardNotFound
		}
		balance := source.CurrentValue.Decimal.Round(2)
		if amount.LessThanOrEqual(decimal.Zero) || amount.GreaterThan(balance) {
			return ErrGiftCardInsufficientBalance
		}

		now := time.Now()
		var recipientID *uint
		if s.userRepo != nil {
			recipient, err := s.userRepo.WithTx(tx).GetByEmail(recipientEmail)
			if err != nil {
				return ErrGiftCardFetchFailed
			}
			if recipient != nil {
				recipientID = &recipient.ID
			}
		}

		destination = &models.GiftCard{
			Name:           recipientName,
			Email:          recipientEmail,
			Note:           note,
			OriginalValue:  models.NewMoneyFromDecimal(amount),
			CurrentValue:   models.NewMoneyFromDecimal(amount),
			CalculatorType: source.CalculatorType,
			UserID:         recipientID,
			ExpirationDate: source.ExpirationDate,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.createWithUniqueCode(tx, destination); err != nil {
			return err
		}

		source.CurrentValue = models.NewMoneyFromDecimal(balance.Sub(amount))
		source.UpdatedAt = now
		if err := repo.Update(source); err != nil {
			return ErrGiftCardUpdateFailed
		}

		transfer = &models.GiftCardTransfer{
			SourceID:      source.ID,
			DestinationID: destination.ID,
			Amount:        models.NewMoneyFromDecimal(amount),
			Note:          note,
			CreatedAt:     now,
		}
		if err := repo.CreateTransfer(transfer); err != nil {
			return ErrGiftCardUpdateFailed
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.notifyTransferred(transfer)
	return destination, transfer, nil
}

// SweepExpiredGiftCards 巡检已过期且仍有余额的礼品卡
func (s *GiftCardService) SweepExpiredGiftCards(limit int) ([]models.GiftCard, error) {
	if s == nil || s.repo == nil {
		return nil, ErrGiftCardFetchFailed
	}
	cards, err := s.repo.ListExpiringBefore(time.Now(), limit)
	if err != nil {
		return nil, ErrGiftCardFetchFailed
	}
	return cards, nil
}

// GiftCardStatus 返回礼品卡派生状态，余额用尽优先于过期
func GiftCardStatus(card *models.GiftCard, now time.Time) string {
	if card == nil {
		return ""
	}
	if !card.CurrentValue.Decimal.Round(2).IsPositive() {
		return constants.GiftCardStatusRedeemed
	}
	if isGiftCardExpired(card.ExpirationDate, now) {
		return constants.GiftCardStatusExpired
	}
	return constants.GiftCardStatusActive
}

// GiftCardOrderActivatable 判断礼品卡能否挂到指定订单
func GiftCardOrderActivatable(card *models.GiftCard, order *models.Order, now time.Time) bool {
	if card == nil || order == nil {
		return false
	}
	if GiftCardStatus(card, now) != constants.GiftCardStatusActive {
		return false
	}
	if card.UserID != nil && order.UserID != 0 && *card.UserID != order.UserID {
		return false
	}
	return orderStateAllowsGiftCard(order.State)
}

// createWithUniqueCode 生成唯一卡号并落库，撞号时重试
func (s *GiftCardService) createWithUniqueCode(tx *gorm.DB, card *models.GiftCard) error {
	repo := s.repo.WithTx(tx)
	for attempt := 0; attempt < constants.GiftCardCodeMaxAttempts; attempt++ {
		code := generateGiftCardCode(s.codePrefix(), s.codeRandomBytes(), time.Now())
		taken, err := repo.CodeTaken(code)
		if err != nil {
			return ErrGiftCardFetchFailed
		}
		if taken {
			continue
		}
		card.Code = code
		if err := repo.Create(card); err != nil {
			return ErrGiftCardCreateFailed
		}
		return nil
	}
	return ErrGiftCardCreateFailed
}

func (s *GiftCardService) calculatorFor(card *models.GiftCard) calculator.Calculator {
	if s == nil || s.registry == nil {
		return calculator.FullBalance{}
	}
	calcType := ""
	if card != nil {
		calcType = card.CalculatorType
	}
	return s.registry.Get(calcType)
}

func (s *GiftCardService) notifyIssued(card *models.GiftCard) {
	if s == nil || card == nil || !s.queueClient.Enabled() {
		return
	}
	if err := s.queueClient.EnqueueGiftCardIssuedEmail(queue.GiftCardIssuedEmailPayload{GiftCardID: card.ID}); err != nil {
		logger.Warnw("gift_card_issued_email_enqueue_failed", "gift_card_id", card.ID, "error", err)
	}
}

func (s *GiftCardService) notifyTransferred(transfer *models.GiftCardTransfer) {
	if s == nil || transfer == nil || !s.queueClient.Enabled() {
		return
	}
	if err := s.queueClient.EnqueueGiftCardTransferredEmail(queue.GiftCardTransferredEmailPayload{TransferID: transfer.ID}); err != nil {
		logger.Warnw("gift_card_transferred_email_enqueue_failed", "transfer_id", transfer.ID, "error", err)
	}
}

func (s *GiftCardService) defaultExpirationDays() int {
	if s != nil && s.cfg != nil && s.cfg.DefaultExpirationDays > 0 {
		return s.cfg.DefaultExpirationDays
	}
	return constants.GiftCardDefaultExpirationDays
}

func (s *GiftCardService) codePrefix() string {
	if s != nil && s.cfg != nil && strings.TrimSpace(s.cfg.CodePrefix) != "" {
		return strings.ToUpper(strings.TrimSpace(s.cfg.CodePrefix))
	}
	return constants.GiftCardDefaultCodePrefix
}

func (s *GiftCardService) codeRandomBytes() int {
	if s != nil && s.cfg != nil && s.cfg.CodeRandomBytes > 0 {
		return s.cfg.CodeRandomBytes
	}
	return constants.GiftCardDefaultCodeRandom
}

func (s *GiftCardService) calculatorType() string {
	if s != nil && s.cfg != nil && strings.TrimSpace(s.cfg.CalculatorType) != "" {
		return strings.TrimSpace(s.cfg.CalculatorType)
	}
	return constants.CalculatorTypeFullBalance
}

func orderStateAllowsGiftCard(state string) bool {
	state = strings.TrimSpace(strings.ToLower(state))
	for _, blocked := range constants.GiftCardUnactivatableOrderStates {
		if state == blocked {
			return false
		}
	}
	return true
}

func normalizeGiftCardExpireAt(raw *time.Time) *time.Time {
	if raw == nil || raw.IsZero() {
		return nil
	}
	value := raw.UTC()
	return &value
}

func isGiftCardExpired(expirationDate *time.Time, now time.Time) bool {
	if expirationDate == nil || expirationDate.IsZero() {
		return false
	}
	return expirationDate.Before(now)
}

func generateGiftCardCode(prefix string, randomBytes int, now time.Time) string {
	return strings.ToUpper(fmt.Sprintf("%s%s%s", prefix, now.Format("060102150405"), randomHex(randomBytes)))
}

func randomHex(n int) string {
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	if _, err := crand.Read(buf); err != nil {
		fallback := make([]byte, n)
		for i := range fallback {
			fallback[i] = byte('A' + (i % 26))
		}
		return hex.EncodeToString(fallback)
	}
	return hex.EncodeToString(buf)
}
