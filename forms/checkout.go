package forms

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yeremiapane/food-delivery-web/models"
)

const (
	FieldItems         Field = "items"
	FieldPaymentMethod Field = "paymentMethod"
	FieldHolderName    Field = "holderName"
	FieldCardNumber    Field = "cardNumber"
	FieldExpiry        Field = "expiry"
	FieldCVV           Field = "cvv"
)

var (
	cardNumberPattern = regexp.MustCompile(`^[0-9]{16}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2})$`)
	cvvPattern        = regexp.MustCompile(`^[0-9]{3,4}$`)
)

// Checkout is the mock payment form. Nothing it holds leaves the server.
type Checkout struct {
	Lines  []models.CartLine    `json:"lines"`
	Method models.PaymentMethod `json:"paymentMethod"`
	Card   models.CardDetails   `json:"card"`

	Now func() time.Time `json:"-"`
}

func (c *Checkout) Fields() []Field {
	return []Field{FieldItems, FieldPaymentMethod, FieldHolderName, FieldCardNumber, FieldExpiry, FieldCVV}
}

func (c *Checkout) Validate() Errors {
	e := c.ValidateCart()
	switch c.Method {
	case models.PaymentCashOnDelivery:
	case models.PaymentCard:
		c.validateCard(e)
	case "":
		e.Add(FieldPaymentMethod, "Please select a payment method")
	default:
		e.Add(FieldPaymentMethod, "Unsupported payment method")
	}
	return e
}

// ValidateCart checks only the lines; the summary step needs no payment details.
func (c *Checkout) ValidateCart() Errors {
	e := Errors{}
	if len(c.Lines) == 0 {
		e.Add(FieldItems, "Your cart is empty")
		return e
	}
	for _, l := range c.Lines {
		if l.Quantity < 1 || l.UnitPrice < 0 {
			e.Add(FieldItems, "Each item needs a quantity of at least 1 and a valid price")
			break
		}
	}
	return e
}

func (c *Checkout) validateCard(e Errors) {
	required(e, FieldHolderName, c.Card.HolderName, "Card holder name")
	if required(e, FieldCardNumber, c.Card.Number, "Card number") &&
		!cardNumberPattern.MatchString(strings.ReplaceAll(c.Card.Number, " ", "")) {
		e.Add(FieldCardNumber, "Card number must be 16 digits")
	}
	if required(e, FieldExpiry, c.Card.Expiry, "Expiry date") {
		c.validateExpiry(e, strings.TrimSpace(c.Card.Expiry))
	}
	if required(e, FieldCVV, c.Card.CVV, "CVV") && !cvvPattern.MatchString(c.Card.CVV) {
		e.Add(FieldCVV, "CVV must be 3 or 4 digits")
	}
}

func (c *Checkout) validateExpiry(e Errors, v string) {
	m := expiryPattern.FindStringSubmatch(v)
	if m == nil {
		e.Add(FieldExpiry, "Expiry date must be in MM/YY format")
		return
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])

	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	// Cards stay valid through the last day of their expiry month.
	firstInvalid := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, now.Location())
	if !now.Before(firstInvalid) {
		e.Add(FieldExpiry, "Card has expired")
	}
}
