package calculator

import (
	"strings"

	"github.com/giftledger/internal/constants"
	"github.com/giftledger/internal/models"

	"github.com/shopspring/decimal"
)

// Calculator 计算礼品卡在一笔应付金额上的抵扣额
type Calculator interface {
	Type() string
	Compute(payable models.Money, card *models.GiftCard) models.Money
}

// FullBalance 抵扣应付金额与卡余额中的较小值
type FullBalance struct{}

// Type 返回计算器类型
func (FullBalance) Type() string {
	return constants.CalculatorTypeFullBalance
}

// Compute 返回 min(应付金额, 卡余额)，任何一侧为负按 0 处理
func (FullBalance) Compute(payable models.Money, card *models.GiftCard) models.Money {
	if card == nil {
		return models.Money{}
	}
	amount := payable.Decimal
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	balance := card.CurrentValue.Decimal
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	if balance.LessThan(amount) {
		amount = balance
	}
	return models.NewMoneyFromDecimal(amount)
}

// Registry 按类型查找计算器，未注册的类型回退到全额抵扣
type Registry struct {
	calculators map[string]Calculator
	fallback    Calculator
}

// NewRegistry 创建计算器注册表
func NewRegistry(calculators ...Calculator) *Registry {
	registry := &Registry{
		calculators: make(map[string]Calculator, len(calculators)),
		fallback:    FullBalance{},
	}
	for _, calc := range calculators {
		if calc == nil {
			continue
		}
		registry.calculators[calc.Type()] = calc
	}
	return registry
}

// Register 注册计算器，同类型后注册的覆盖先注册的
func (r *Registry) Register(calc Calculator) {
	if r == nil || calc == nil {
		return
	}
	if r.calculators == nil {
		r.calculators = make(map[string]Calculator)
	}
	r.calculators[calc.Type()] = calc
}

// Get 按类型查找计算器
func (r *Registry) Get(calcType string) Calculator {
	if r == nil {
		return FullBalance{}
	}
	if calc, ok := r.calculators[strings.TrimSpace(calcType)]; ok {
		return calc
	}
	return r.fallback
}
