package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/food-delivery-web/forms"
	"github.com/yeremiapane/food-delivery-web/models"
	"github.com/yeremiapane/food-delivery-web/utils"
)

const (
	DeliveryFee       = 250.0
	ServiceChargeRate = 0.05

	PaymentStatusConfirmed = "confirmed"
)

// CheckoutService is the payment mock. It prices a cart and hands back a made-up
// confirmation; no gateway is called and nothing is stored.
type CheckoutService struct {
	now    func() time.Time
	newRef func() string
}

func NewCheckoutService() *CheckoutService {
	return &CheckoutService{now: time.Now, newRef: uuid.NewString}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Summarize prices lines: subtotal, flat delivery fee, service charge and total.
func Summarize(lines []models.CartLine) models.OrderSummary {
	var subtotal float64
	for _, l := range lines {
		subtotal += l.UnitPrice * float64(l.Quantity)
	}
	subtotal = roundCents(subtotal)
	charge := roundCents(subtotal * ServiceChargeRate)
	total := roundCents(subtotal + DeliveryFee + charge)

	return models.OrderSummary{
		Lines:         lines,
		Subtotal:      subtotal,
		DeliveryFee:   DeliveryFee,
		ServiceCharge: charge,
		Total:         total,
		TotalDisplay:  utils.FormatCurrency(total),
	}
}

// Summary validates the cart only and prices it.
func (s *CheckoutService) Summary(f *forms.Checkout) (*models.OrderSummary, forms.Errors) {
	if errs := f.ValidateCart(); !errs.Valid() {
		return nil, errs
	}
	sum := Summarize(f.Lines)
	return &sum, forms.Errors{}
}

// Pay validates the whole form and returns the mock confirmation.
func (s *CheckoutService) Pay(ctx context.Context, f *forms.Checkout) (*models.PaymentConfirmation, forms.Outcome) {
	if f.Now == nil {
		f.Now = s.now
	}

	var conf *models.PaymentConfirmation
	out := forms.Submit(ctx, f, func(context.Context) error {
		sum := Summarize(f.Lines)
		conf = &models.PaymentConfirmation{
			Reference: s.newRef(),
			Method:    f.Method,
			Status:    PaymentStatusConfirmed,
			Amount:    sum.Total,
			PaidAt:    s.now(),
		}
		return nil
	})
	if !out.OK() {
		return nil, out
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"reference": conf.Reference,
		"method":    conf.Method,
		"amount":    utils.FormatCurrency(conf.Amount),
	}).Info("Mock payment confirmed")
	return conf, out
}
