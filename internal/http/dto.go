package http

import (
	"fmt"

	"github.com/fjod/go_bookstore/internal/cart"
	"github.com/fjod/go_bookstore/internal/catalog"
	"github.com/fjod/go_bookstore/internal/checkout/service"
	"github.com/fjod/go_bookstore/internal/installment"
	"github.com/fjod/go_bookstore/pkg/money"
	"github.com/shopspring/decimal"
)

// MoneyDTO carries an amount rounded to cents next to its BRL rendering.
type MoneyDTO struct {
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

func moneyDTO(d decimal.Decimal) MoneyDTO {
	return MoneyDTO{Value: money.Float(d), Display: money.FormatBRL(d)}
}

type BookDTO struct {
	ISBN             string   `json:"isbn"`
	Title            string   `json:"title"`
	Authors          []string `json:"authors"`
	CoverURL         string   `json:"cover_url"`
	FirstPublishYear int      `json:"first_publish_year,omitempty"`
	Price            MoneyDTO `json:"price"`
	InWishlist       bool     `json:"in_wishlist"`
}

func bookDTO(b catalog.Book, inWishlist bool) BookDTO {
	authors := b.Authors
	if authors == nil {
		authors = []string{}
	}
	return BookDTO{
		ISBN:             b.ISBN,
		Title:            b.Title,
		Authors:          authors,
		CoverURL:         b.CoverURL,
		FirstPublishYear: b.FirstPublishYear,
		Price:            moneyDTO(b.Price),
		InWishlist:       inWishlist,
	}
}

type CartItemDTO struct {
	SKU       string   `json:"sku"`
	Title     string   `json:"title"`
	Authors   []string `json:"authors,omitempty"`
	CoverURL  string   `json:"cover_url,omitempty"`
	UnitPrice MoneyDTO `json:"unit_price"`
	Quantity  int      `json:"quantity"`
	LineTotal MoneyDTO `json:"line_total"`
}

type ShippingOptionDTO struct {
	Tier     string   `json:"tier"`
	Cost     MoneyDTO `json:"cost"`
	Selected bool     `json:"selected"`
}

type CouponDTO struct {
	Code    string `json:"code"`
	Applied bool   `json:"applied"`
	Message string `json:"message"`
}

type CartResponseDTO struct {
	Items           []CartItemDTO       `json:"items"`
	ShippingTier    string              `json:"shipping_tier,omitempty"`
	ShippingOptions []ShippingOptionDTO `json:"shipping_options"`
	FreeShipping    bool                `json:"free_shipping"`
	Coupon          *CouponDTO          `json:"coupon,omitempty"`
	Subtotal        MoneyDTO            `json:"subtotal"`
	Shipping        MoneyDTO            `json:"shipping"`
	Discount        MoneyDTO            `json:"discount"`
	Total           MoneyDTO            `json:"total"`
}

func cartDTO(s cart.Snapshot) CartResponseDTO {
	items := make([]CartItemDTO, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, CartItemDTO{
			SKU:       item.SKU,
			Title:     item.Title,
			Authors:   item.Authors,
			CoverURL:  item.CoverURL,
			UnitPrice: moneyDTO(item.UnitPrice),
			Quantity:  item.Quantity,
			LineTotal: moneyDTO(item.LineTotal()),
		})
	}

	free := s.Totals.Subtotal.GreaterThan(cart.FreeShippingThreshold)
	options := make([]ShippingOptionDTO, 0, len(cart.Tiers()))
	for _, tier := range cart.Tiers() {
		options = append(options, ShippingOptionDTO{
			Tier:     string(tier),
			Cost:     moneyDTO(cart.ShippingFor(s.Totals.Subtotal, tier)),
			Selected: tier == s.Shipping,
		})
	}

	dto := CartResponseDTO{
		Items:           items,
		ShippingTier:    string(s.Shipping),
		ShippingOptions: options,
		FreeShipping:    free,
		Subtotal:        moneyDTO(s.Totals.Subtotal),
		Shipping:        moneyDTO(s.Totals.Shipping),
		Discount:        moneyDTO(s.Totals.Discount),
		Total:           moneyDTO(s.Totals.Total),
	}
	if s.Coupon.Code != "" {
		dto.Coupon = &CouponDTO{Code: s.Coupon.Code, Applied: s.Coupon.Applied, Message: s.Coupon.Message}
	}
	return dto
}

type InstallmentOptionDTO struct {
	Count        int      `json:"count"`
	FeePercent   float64  `json:"fee_percent"`
	MonthlyValue MoneyDTO `json:"monthly_value"`
	TotalWithFee MoneyDTO `json:"total_with_fee"`
	Label        string   `json:"label"`
}

func installmentDTOs(plan []installment.Option) []InstallmentOptionDTO {
	out := make([]InstallmentOptionDTO, 0, len(plan))
	for _, o := range plan {
		out = append(out, InstallmentOptionDTO{
			Count:        o.Count,
			FeePercent:   o.FeeFraction.Shift(2).InexactFloat64(),
			MonthlyValue: moneyDTO(o.MonthlyValue),
			TotalWithFee: moneyDTO(o.TotalWithFee),
			Label:        fmt.Sprintf("%dx de %s", o.Count, money.FormatBRL(o.MonthlyValue)),
		})
	}
	return out
}

// FinancingDTO is the "Juros (N%)" line shown for credit split in more than
// one installment.
type FinancingDTO struct {
	Label  string   `json:"label"`
	Amount MoneyDTO `json:"amount"`
}

func financingDTO(count int, fee decimal.Decimal) *FinancingDTO {
	percent := installment.FeeFraction(count).Shift(2)
	return &FinancingDTO{
		Label:  fmt.Sprintf("Juros (%s%%)", percent.String()),
		Amount: moneyDTO(fee),
	}
}

type CheckoutResponseDTO struct {
	Status        string                 `json:"status"`
	Address       interface{}            `json:"address,omitempty"`
	PaymentMethod string                 `json:"payment_method,omitempty"`
	Installments  int                    `json:"installments,omitempty"`
	LastError     *ErrorResponse         `json:"last_error,omitempty"`
	Total         MoneyDTO               `json:"total"`
	Plan          []InstallmentOptionDTO `json:"installment_plan,omitempty"`
	Financing     *FinancingDTO          `json:"financing,omitempty"`
}

func checkoutDTO(s service.State) CheckoutResponseDTO {
	dto := CheckoutResponseDTO{
		Status:        s.Status.String(),
		PaymentMethod: string(s.PaymentMethod),
		Installments:  s.Installments,
		Total:         moneyDTO(s.Totals.Total),
	}
	if !s.Address.IsZero() {
		dto.Address = s.Address
	}
	if s.LastError != nil {
		dto.LastError = &ErrorResponse{Error: s.LastError.Message, Code: "validation_failed", Details: s.LastError.Field}
	}
	if s.Plan != nil {
		dto.Plan = installmentDTOs(s.Plan)
		if s.Installments > 1 && s.Installments <= len(s.Plan) {
			opt := s.Plan[s.Installments-1]
			dto.Financing = financingDTO(opt.Count, opt.TotalWithFee.Sub(s.Totals.Total))
		}
	}
	return dto
}
