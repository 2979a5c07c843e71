package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/analytics"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/delivery"
	"github.com/angelmondragon/storefront-backend/internal/mirror"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/settings"
	pkgcheckout "github.com/angelmondragon/storefront-backend/pkg/checkout"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/lock"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/upi"
)

const (
	cartPath             = "/cart"
	defaultRedirectAfter = 5 * time.Second

	sessionLockScope = "checkout_session"
	orderLockScope   = "order"
)

type cartService interface {
	Get(ctx context.Context, sessionID string) (*cart.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type orderService interface {
	Create(ctx context.Context, input orders.CreateInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	CompleteCheckout(ctx context.Context, id uuid.UUID, method enums.PaymentMethod) (*models.Order, error)
}

type settingsReader interface {
	Snapshot(ctx context.Context) (settings.Snapshot, error)
	UPI(ctx context.Context) (*settings.UPIIdentity, error)
}

type invoiceIssuer interface {
	GetOrCreate(ctx context.Context, order models.Order, business models.BusinessInfo) (*models.Invoice, bool, error)
	PDF(inv models.Invoice) ([]byte, error)
}

type deliverer interface {
	Deliver(ctx context.Context, method enums.PaymentMethod, snap settings.Snapshot, msg delivery.Message) (bool, error)
}

type rowAppender interface {
	AppendRow(ctx context.Context, cfg settings.SheetsConfig, values []any) (bool, error)
}

type purchaseCounter interface {
	IncrementBatch(ctx context.Context, deltas []analytics.Delta) error
}

type locker interface {
	Acquire(ctx context.Context, key string) (*lock.Lease, error)
}

// Service drives the storefront checkout state machine.
type Service interface {
	Begin(ctx context.Context, sessionID string) (*State, error)
	SubmitDetails(ctx context.Context, sessionID string, customer Customer) (*State, error)
	ConfirmPayment(ctx context.Context, sessionID string) (*State, error)
	SelectDeliveryMethod(ctx context.Context, sessionID string, method enums.PaymentMethod) (*State, error)
	Steps(ctx context.Context, orderID uuid.UUID) ([]models.CheckoutStep, error)
}

// Dependencies wires the collaborators of the checkout service.
type Dependencies struct {
	Sessions      *SessionStore
	Locker        locker
	Cart          cartService
	Orders        orderService
	Settings      settingsReader
	Invoices      invoiceIssuer
	Delivery      deliverer
	Mirror        rowAppender
	Analytics     purchaseCounter
	Steps         StepRepository
	Confirmation  PaymentConfirmationSource
	Metrics       *metrics.CheckoutMetrics
	Logger        *logger.Logger
	RedirectAfter time.Duration
}

type service struct {
	sessions      *SessionStore
	locker        locker
	cart          cartService
	orders        orderService
	settings      settingsReader
	invoices      invoiceIssuer
	delivery      deliverer
	mirror        rowAppender
	analytics     purchaseCounter
	steps         StepRepository
	confirmation  PaymentConfirmationSource
	metrics       *metrics.CheckoutMetrics
	logg          *logger.Logger
	redirectAfter time.Duration
	now           func() time.Time
}

// NewService builds the checkout service.
func NewService(deps Dependencies) (Service, error) {
	switch {
	case deps.Sessions == nil:
		return nil, fmt.Errorf("checkout session store required")
	case deps.Locker == nil:
		return nil, fmt.Errorf("locker required")
	case deps.Cart == nil:
		return nil, fmt.Errorf("cart service required")
	case deps.Orders == nil:
		return nil, fmt.Errorf("orders service required")
	case deps.Settings == nil:
		return nil, fmt.Errorf("settings service required")
	case deps.Invoices == nil:
		return nil, fmt.Errorf("invoice service required")
	case deps.Delivery == nil:
		return nil, fmt.Errorf("delivery dispatcher required")
	case deps.Mirror == nil:
		return nil, fmt.Errorf("mirror required")
	case deps.Analytics == nil:
		return nil, fmt.Errorf("analytics service required")
	case deps.Steps == nil:
		return nil, fmt.Errorf("step repository required")
	}
	if deps.Confirmation == nil {
		deps.Confirmation = SelfAttestation{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if deps.RedirectAfter <= 0 {
		deps.RedirectAfter = defaultRedirectAfter
	}
	return &service{
		sessions:      deps.Sessions,
		locker:        deps.Locker,
		cart:          deps.Cart,
		orders:        deps.Orders,
		settings:      deps.Settings,
		invoices:      deps.Invoices,
		delivery:      deps.Delivery,
		mirror:        deps.Mirror,
		analytics:     deps.Analytics,
		steps:         deps.Steps,
		confirmation:  deps.Confirmation,
		metrics:       deps.Metrics,
		logg:          deps.Logger,
		redirectAfter: deps.RedirectAfter,
		now:           time.Now,
	}, nil
}

// Begin reports where the session stands. A finished checkout is shown until
// its redirect elapses; afterwards the session starts over.
func (s *service) Begin(ctx context.Context, sessionID string) (*State, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Stage == enums.CheckoutStageSuccess {
		if s.now().Sub(state.UpdatedAt) < s.redirectAfter {
			return state, nil
		}
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset checkout state")
		}
		state = newState(sessionID)
	}
	if state.Stage != enums.CheckoutStageDetails {
		return state, nil
	}

	c, err := s.cart.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return &State{
			SessionID:    sessionID,
			Stage:        enums.CheckoutStageAborted,
			RedirectTo:   cartPath,
			LockedAmount: state.LockedAmount,
			UpdatedAt:    s.now().UTC(),
		}, nil
	}
	state.LockedAmount = c.Total()
	return state, nil
}

// SubmitDetails creates the pending order from the cart and prepares the payment code.
func (s *service) SubmitDetails(ctx context.Context, sessionID string, customer Customer) (*State, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	customer = customer.Normalize()
	if err := pkgcheckout.ValidateCustomer(customer); err != nil {
		return nil, err
	}
	ctx = s.logg.WithSessionID(ctx, sessionID)
	started := s.now()

	lease, err := s.acquire(ctx, sessionLockScope, sessionID)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, lease)

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch state.Stage {
	case enums.CheckoutStageDetails:
	case enums.CheckoutStageSuccess:
		state = newState(sessionID)
	case enums.CheckoutStagePayment:
		if state.Customer != nil && *state.Customer == customer {
			return state, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "details already submitted for this checkout")
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "details already submitted for this checkout")
	}

	c, err := s.cart.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	order, err := s.orders.Create(ctx, orders.CreateInput{
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
		CustomerEmail: customer.Email,
		Items:         OrderItems(c),
	})
	if err != nil {
		s.logg.Error(ctx, "order creation failed", err)
		return nil, err
	}
	ctx = s.logg.WithOrderNumber(ctx, order.OrderNumber)
	s.record(ctx, *order, enums.CheckoutStepOrderCreated, enums.StepOutcomeSucceeded, nil, nil)

	state.Stage = enums.CheckoutStagePayment
	state.OrderID = &order.ID
	state.OrderNumber = order.OrderNumber
	state.LockedAmount = order.TotalAmount
	state.Customer = &customer
	s.attachPaymentCode(ctx, state, *order)
	state.UpdatedAt = s.now().UTC()

	if err := s.sessions.Save(ctx, state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save checkout state")
	}
	s.metrics.ObserveTransition(enums.CheckoutStageDetails.String(), s.now().Sub(started))
	s.logg.Info(ctx, "checkout order created")
	return state, nil
}

func (s *service) attachPaymentCode(ctx context.Context, state *State, order models.Order) {
	identity, err := s.settings.UPI(ctx)
	if err != nil {
		s.logg.Error(ctx, "load upi identity", err)
		return
	}
	if identity == nil {
		return
	}
	uri, err := upi.BuildPaymentURI(identity.ID, identity.Name, order.TotalAmount, order.OrderNumber)
	if err != nil {
		s.logg.Error(ctx, "build payment uri", err)
		return
	}
	state.PaymentURI = uri
	png, err := upi.RenderQRCode(uri)
	if err != nil {
		s.logg.Error(ctx, "render payment qr code", err)
		return
	}
	state.QRCode = upi.DataURL(png)
}

// ConfirmPayment moves the session to method selection once the confirmation
// source accepts the payment. The order itself is not touched.
func (s *service) ConfirmPayment(ctx context.Context, sessionID string) (*State, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	ctx = s.logg.WithSessionID(ctx, sessionID)
	started := s.now()

	lease, err := s.acquire(ctx, sessionLockScope, sessionID)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, lease)

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch state.Stage {
	case enums.CheckoutStagePayment:
	case enums.CheckoutStageMethodSelection:
		return state, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not awaiting payment")
	}
	if state.OrderID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout has no order")
	}

	order, err := s.orders.Get(ctx, *state.OrderID)
	if err != nil {
		return nil, err
	}
	confirmation, err := s.confirmation.Confirm(ctx, *order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm payment")
	}
	if !confirmation.Confirmed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment not confirmed")
	}

	state.Stage = enums.CheckoutStageMethodSelection
	state.PaymentReference = confirmation.Reference
	state.UpdatedAt = s.now().UTC()
	if err := s.sessions.Save(ctx, state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save checkout state")
	}
	s.metrics.ObserveTransition(enums.CheckoutStagePayment.String(), s.now().Sub(started))
	return state, nil
}

// SelectDeliveryMethod issues the invoice and runs the fulfilment side
// effects in order. Only invoice persistence blocks the transition.
func (s *service) SelectDeliveryMethod(ctx context.Context, sessionID string, method enums.PaymentMethod) (*State, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if !method.IsDeliveryChannel() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery method must be email or whatsapp").
			WithDetails(map[string]string{"method": "must be one of email, whatsapp"})
	}
	ctx = s.logg.WithSessionID(ctx, sessionID)
	started := s.now()

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch state.Stage {
	case enums.CheckoutStageMethodSelection:
	case enums.CheckoutStageSuccess:
		return state, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not awaiting a delivery method")
	}
	if state.OrderID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout has no order")
	}

	lease, err := s.acquire(ctx, orderLockScope, state.OrderID.String())
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, lease)

	// A concurrent submit may have finished while this one waited for the lock.
	state, err = s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch state.Stage {
	case enums.CheckoutStageMethodSelection:
	case enums.CheckoutStageSuccess:
		return state, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not awaiting a delivery method")
	}
	if state.OrderID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout has no order")
	}

	snap, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.Get(ctx, *state.OrderID)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithOrderNumber(ctx, order.OrderNumber)

	inv, created, err := s.invoices.GetOrCreate(ctx, *order, snap.Business)
	if err != nil {
		s.logg.Error(ctx, "invoice persistence failed", err)
		s.record(ctx, *order, enums.CheckoutStepInvoicePersisted, enums.StepOutcomeFailed, &method, err)
		return nil, err
	}

	if !created && order.PaymentStatus == enums.PaymentStatusCompleted {
		// Fulfilment already ran for this order; only the session lagged behind.
		s.logg.Warn(ctx, "checkout already fulfilled, skipping side effects")
		channel := method
		if order.PaymentMethod != nil && order.PaymentMethod.IsDeliveryChannel() {
			channel = *order.PaymentMethod
		}
		return s.finish(ctx, state, channel, *inv, s.wasDelivered(ctx, order.ID), started), nil
	}

	if created {
		s.record(ctx, *order, enums.CheckoutStepInvoicePersisted, enums.StepOutcomeSucceeded, &method, nil)
	} else {
		s.record(ctx, *order, enums.CheckoutStepInvoicePersisted, enums.StepOutcomeSkipped, &method, errors.New("invoice already issued"))
	}

	delivered := s.deliverInvoice(ctx, method, snap, *order, *inv)
	s.mirrorOrder(ctx, snap, *order, *inv)
	s.completeOrder(ctx, *order, method)
	s.countPurchases(ctx, *order)
	s.clearCart(ctx, sessionID, *order)

	return s.finish(ctx, state, method, *inv, delivered, started), nil
}

func (s *service) finish(ctx context.Context, state *State, method enums.PaymentMethod, inv models.Invoice, delivered bool, started time.Time) *State {
	state.Stage = enums.CheckoutStageSuccess
	state.InvoiceNumber = inv.InvoiceNumber
	state.DeliveryChannel = &method
	state.Delivered = delivered
	state.RedirectAfterSeconds = int(s.redirectAfter / time.Second)
	state.UpdatedAt = s.now().UTC()
	if err := s.sessions.Save(ctx, state); err != nil {
		s.logg.Error(ctx, "save checkout state after fulfilment", err)
	}
	s.metrics.ObserveTransition(enums.CheckoutStageMethodSelection.String(), s.now().Sub(started))
	s.logg.Info(s.logg.WithField(ctx, "invoice_number", inv.InvoiceNumber), "checkout completed")
	return state
}

// wasDelivered reports whether the step log holds a successful invoice delivery.
func (s *service) wasDelivered(ctx context.Context, orderID uuid.UUID) bool {
	rows, err := s.steps.ListByOrder(ctx, orderID)
	if err != nil {
		s.logg.Error(ctx, "list checkout steps", err)
		return false
	}
	for _, row := range rows {
		if row.Step == enums.CheckoutStepInvoiceDelivered && row.Outcome == enums.StepOutcomeSucceeded {
			return true
		}
	}
	return false
}

func (s *service) deliverInvoice(ctx context.Context, method enums.PaymentMethod, snap settings.Snapshot, order models.Order, inv models.Invoice) bool {
	pdf, err := s.invoices.PDF(inv)
	if err != nil {
		s.logg.Error(ctx, "render invoice pdf", err)
		s.record(ctx, order, enums.CheckoutStepInvoiceDelivered, enums.StepOutcomeFailed, &method, err)
		s.metrics.IncDelivery(method.String(), false)
		return false
	}
	delivered, err := s.delivery.Deliver(ctx, method, snap, delivery.Message{
		InvoiceNumber: inv.InvoiceNumber,
		OrderNumber:   order.OrderNumber,
		Business:      snap.Business,
		Customer:      inv.CustomerInfo.Data(),
		GrandTotal:    inv.GrandTotal,
		PDF:           pdf,
	})
	switch {
	case errors.Is(err, delivery.ErrChannelDisabled):
		s.record(ctx, order, enums.CheckoutStepInvoiceDelivered, enums.StepOutcomeSkipped, &method, err)
		return false
	case err != nil:
		s.record(ctx, order, enums.CheckoutStepInvoiceDelivered, enums.StepOutcomeFailed, &method, err)
		s.metrics.IncDelivery(method.String(), false)
		return false
	case !delivered:
		s.record(ctx, order, enums.CheckoutStepInvoiceDelivered, enums.StepOutcomeFailed, &method, errors.New("provider did not accept the message"))
		s.metrics.IncDelivery(method.String(), false)
		return false
	}
	s.record(ctx, order, enums.CheckoutStepInvoiceDelivered, enums.StepOutcomeSucceeded, &method, nil)
	s.metrics.IncDelivery(method.String(), true)
	return true
}

func (s *service) mirrorOrder(ctx context.Context, snap settings.Snapshot, order models.Order, inv models.Invoice) {
	_, err := s.mirror.AppendRow(ctx, snap.Sheets, mirror.OrderRow(inv, order, s.now()))
	switch {
	case errors.Is(err, mirror.ErrDisabled):
		s.record(ctx, order, enums.CheckoutStepMirrorAppended, enums.StepOutcomeSkipped, nil, err)
	case err != nil:
		s.record(ctx, order, enums.CheckoutStepMirrorAppended, enums.StepOutcomeFailed, nil, err)
	default:
		s.record(ctx, order, enums.CheckoutStepMirrorAppended, enums.StepOutcomeSucceeded, nil, nil)
	}
}

func (s *service) completeOrder(ctx context.Context, order models.Order, method enums.PaymentMethod) {
	if _, err := s.orders.CompleteCheckout(ctx, order.ID, method); err != nil {
		s.logg.Error(ctx, "order completion failed", err)
		s.record(ctx, order, enums.CheckoutStepOrderCompleted, enums.StepOutcomeFailed, &method, err)
		return
	}
	s.record(ctx, order, enums.CheckoutStepOrderCompleted, enums.StepOutcomeSucceeded, &method, nil)
}

func (s *service) countPurchases(ctx context.Context, order models.Order) {
	if err := s.analytics.IncrementBatch(ctx, PurchaseDeltas(order, analytics.Day(s.now()))); err != nil {
		s.logg.Error(ctx, "purchase analytics failed", err)
		s.record(ctx, order, enums.CheckoutStepAnalyticsIncremented, enums.StepOutcomeFailed, nil, err)
		return
	}
	s.record(ctx, order, enums.CheckoutStepAnalyticsIncremented, enums.StepOutcomeSucceeded, nil, nil)
}

func (s *service) clearCart(ctx context.Context, sessionID string, order models.Order) {
	if err := s.cart.Clear(ctx, sessionID); err != nil {
		s.logg.Error(ctx, "cart clear failed", err)
		s.record(ctx, order, enums.CheckoutStepCartCleared, enums.StepOutcomeFailed, nil, err)
		return
	}
	s.record(ctx, order, enums.CheckoutStepCartCleared, enums.StepOutcomeSucceeded, nil, nil)
}

// Steps lists the step log of an order, oldest first.
func (s *service) Steps(ctx context.Context, orderID uuid.UUID) ([]models.CheckoutStep, error) {
	rows, err := s.steps.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list checkout steps")
	}
	return rows, nil
}

func (s *service) record(ctx context.Context, order models.Order, step enums.CheckoutStep, outcome enums.StepOutcome, channel *enums.PaymentMethod, cause error) {
	entry := &models.CheckoutStep{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Step:        step,
		Outcome:     outcome,
		Channel:     channel,
		Detail:      Detail(cause),
		Attempt:     1,
	}
	if err := s.steps.Create(ctx, entry); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "step", step.String()), "record checkout step", err)
	}
	s.metrics.IncStep(step.String(), outcome.String())
}

func (s *service) load(ctx context.Context, sessionID string) (*State, error) {
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout state")
	}
	return state, nil
}

func (s *service) acquire(ctx context.Context, scope, id string) (*lock.Lease, error) {
	lease, err := s.locker.Acquire(ctx, s.sessions.LockKey(scope, id))
	if errors.Is(err, lock.ErrHeld) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout already in progress")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout lock")
	}
	return lease, nil
}

func (s *service) release(ctx context.Context, lease *lock.Lease) {
	if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "lock", lease.Key()), "release checkout lock failed")
	}
}

// OrderItems snapshots cart lines into order items.
func OrderItems(c *cart.Cart) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(c.Lines))
	for _, line := range c.Lines {
		items = append(items, models.OrderItem{
			ProductID:  line.ProductID,
			Name:       line.Product.Name,
			Price:      line.Product.Price,
			Image:      line.Product.Image,
			Quantity:   line.Quantity,
			Color:      line.Color,
			Size:       line.Size,
			Logo:       line.Logo,
			CustomText: line.CustomText,
		})
	}
	return items
}

// PurchaseDeltas is one purchases increment per order line on day.
func PurchaseDeltas(order models.Order, day time.Time) []analytics.Delta {
	deltas := make([]analytics.Delta, 0, len(order.Items))
	for _, item := range order.Items {
		deltas = append(deltas, analytics.Delta{
			ProductID: item.ProductID,
			Metric:    enums.MetricTypePurchases,
			Day:       day,
			Value:     int64(item.Quantity),
		})
	}
	return deltas
}

const maxDetailLen = 500

// Detail is the step log text for cause, truncated.
func Detail(cause error) string {
	if cause == nil {
		return ""
	}
	msg := cause.Error()
	if len(msg) > maxDetailLen {
		msg = msg[:maxDetailLen]
	}
	return msg
}

func requireSession(sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	return nil
}
