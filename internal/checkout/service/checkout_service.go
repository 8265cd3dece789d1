package service

import (
	"sync"

	"github.com/fjod/go_bookstore/internal/cart"
	d "github.com/fjod/go_bookstore/internal/checkout/domain"
	"github.com/fjod/go_bookstore/internal/installment"
	"go.uber.org/zap"
)

// Checkout sequences one session from the first input to the created order.
// It owns the address and payment selections; the cart lives in the ledger
// it was created with.
type Checkout struct {
	mu        sync.Mutex
	log       *zap.Logger
	ledger    *cart.Ledger
	assembler *OrderAssembler

	status       d.CheckoutStatus
	address      d.Address
	method       d.PaymentMethod
	installments int
	lastError    *ValidationError
	lastOrder    *d.Order
}

// State is a read-only copy of the checkout state.
type State struct {
	Status        d.CheckoutStatus
	Address       d.Address
	PaymentMethod d.PaymentMethod
	Installments  int
	LastError     *ValidationError
	Totals        cart.Totals
	Plan          []installment.Option
}

func NewCheckout(log *zap.Logger, ledger *cart.Ledger, assembler *OrderAssembler) *Checkout {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checkout{
		log:       log,
		ledger:    ledger,
		assembler: assembler,
		status:    d.CheckoutStatusIdle,
	}
}

func (c *Checkout) EnterAddress(address d.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.address
	c.address = address
	if err := c.moveTo(c.derive()); err != nil {
		c.address = prev
		return err
	}
	return nil
}

// SelectPaymentMethod stores the method. Moving away from credit discards
// the installment count.
func (c *Checkout) SelectPaymentMethod(method d.PaymentMethod) error {
	if !method.Valid() {
		return newValidationError(FieldPaymentMethod, "Selecione um método de pagamento")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.status.IsPreSubmission() {
		return ErrIllegalTransition
	}

	c.method = method
	if !method.IsCredit() {
		c.installments = 0
	}
	return c.moveTo(c.derive())
}

// SelectInstallments is only legal once credit was chosen. The count itself
// is validated on submit, like every other input.
func (c *Checkout) SelectInstallments(count int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.method.IsCredit() || !d.CanTransitionTo(c.status, d.CheckoutStatusInstallmentSelected) {
		return ErrIllegalTransition
	}

	c.installments = count
	c.status = d.CheckoutStatusInstallmentSelected
	return nil
}

// Submit assembles the order. On a validation failure every input is kept
// and the status returns to where it was. On success the cart and all
// selections are cleared and the status goes back to IDLE.
func (c *Checkout) Submit() (d.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prior := c.status
	if err := c.moveTo(d.CheckoutStatusSubmitted); err != nil {
		return d.Order{}, err
	}

	order, err := c.assembler.Assemble(c.ledger.Snapshot(), c.address, c.method, c.installments)
	if err != nil {
		c.status = d.CheckoutStatusValidationFailed
		if v, ok := IsValidation(err); ok {
			c.lastError = v
			c.log.Info("checkout validation failed",
				zap.String("field", v.Field),
				zap.String("status", prior.String()))
		} else {
			c.log.Error("checkout assembly failed", zap.Error(err))
		}
		c.status = prior
		return d.Order{}, err
	}

	c.status = d.CheckoutStatusOrderCreated
	c.lastOrder = &order
	c.ledger.Clear()
	c.resetInputs()
	c.status = d.CheckoutStatusIdle

	c.log.Info("order created",
		zap.Int64("order_id", order.ID),
		zap.String("payment_method", string(order.PaymentMethod)),
		zap.Int("installments", order.Installments),
		zap.String("total", order.Total.StringFixed(2)))

	return order.Clone(), nil
}

// InstallmentPlan returns the financing options for the current cart total.
// It reads only the ledger, so it is safe to call with c.mu held.
func (c *Checkout) InstallmentPlan() ([]installment.Option, error) {
	return installment.Plan(c.ledger.ComputeTotals().Total)
}

func (c *Checkout) Status() d.CheckoutStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Snapshot reports the current inputs. The plan is only filled for credit.
func (c *Checkout) Snapshot() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := State{
		Status:        c.status,
		Address:       c.address,
		PaymentMethod: c.method,
		Installments:  c.installments,
		LastError:     c.lastError,
		Totals:        c.ledger.ComputeTotals(),
	}
	if c.method.IsCredit() {
		plan, err := c.InstallmentPlan()
		if err != nil {
			return State{}, err
		}
		v.Plan = plan
	}
	return v, nil
}

// LastOrder returns the order created in this session, if any.
func (c *Checkout) LastOrder() (d.Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lastOrder == nil {
		return d.Order{}, false
	}
	return c.lastOrder.Clone(), true
}

func (c *Checkout) derive() d.CheckoutStatus {
	switch {
	case c.method.IsCredit() && c.installments != 0:
		return d.CheckoutStatusInstallmentSelected
	case c.method != d.PaymentMethodNone:
		return d.CheckoutStatusPaymentMethodSelected
	case !c.address.IsZero():
		return d.CheckoutStatusAddressEntered
	default:
		return d.CheckoutStatusIdle
	}
}

func (c *Checkout) moveTo(next d.CheckoutStatus) error {
	if next == c.status && next.IsPreSubmission() {
		return nil
	}
	if !d.CanTransitionTo(c.status, next) {
		return ErrIllegalTransition
	}
	c.status = next
	return nil
}

func (c *Checkout) resetInputs() {
	c.address = d.Address{}
	c.method = d.PaymentMethodNone
	c.installments = 0
	c.lastError = nil
}
