package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgcheckout "github.com/angelmondragon/storefront-backend/pkg/checkout"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

const defaultStateTTL = 24 * time.Hour

// Customer is the contact triple captured on the details stage.
type Customer = pkgcheckout.Customer

// State is the session-local checkout progress. It lives in Redis only.
type State struct {
	SessionID            string               `json:"session_id"`
	Stage                enums.CheckoutStage  `json:"stage"`
	OrderID              *uuid.UUID           `json:"order_id,omitempty"`
	OrderNumber          string               `json:"order_number,omitempty"`
	LockedAmount         decimal.Decimal      `json:"locked_amount"`
	Customer             *Customer            `json:"customer,omitempty"`
	PaymentURI           string               `json:"payment_uri,omitempty"`
	QRCode               string               `json:"qr_code,omitempty"`
	PaymentReference     string               `json:"payment_reference,omitempty"`
	InvoiceNumber        string               `json:"invoice_number,omitempty"`
	DeliveryChannel      *enums.PaymentMethod `json:"delivery_channel,omitempty"`
	Delivered            bool                 `json:"delivered"`
	RedirectTo           string               `json:"redirect_to,omitempty"`
	RedirectAfterSeconds int                  `json:"redirect_after_seconds,omitempty"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

func newState(sessionID string) *State {
	return &State{SessionID: sessionID, Stage: enums.CheckoutStageDetails, LockedAmount: decimal.Zero}
}

// KV is the subset of the redis client the session store needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CheckoutKey(sessionID string) string
	LockKey(scope, id string) string
}

// SessionStore keeps checkout State per browser session.
type SessionStore struct {
	kv  KV
	ttl time.Duration
}

// NewSessionStore uses the cart TTL so checkout state never outlives the cart it was built from.
func NewSessionStore(kv KV, ttl time.Duration) (*SessionStore, error) {
	if kv == nil {
		return nil, errors.New("checkout kv store required")
	}
	if ttl <= 0 {
		ttl = defaultStateTTL
	}
	return &SessionStore{kv: kv, ttl: ttl}, nil
}

// Load returns the stored state, or a fresh details state when none exists.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*State, error) {
	raw, err := s.kv.Get(ctx, s.kv.CheckoutKey(sessionID))
	if errors.Is(err, redis.Nil) {
		return newState(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load checkout state: %w", err)
	}
	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decode checkout state: %w", err)
	}
	if !state.Stage.IsValid() {
		return newState(sessionID), nil
	}
	state.SessionID = sessionID
	return &state, nil
}

func (s *SessionStore) Save(ctx context.Context, state *State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode checkout state: %w", err)
	}
	if err := s.kv.Set(ctx, s.kv.CheckoutKey(state.SessionID), string(payload), s.ttl); err != nil {
		return fmt.Errorf("save checkout state: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.kv.Del(ctx, s.kv.CheckoutKey(sessionID)); err != nil {
		return fmt.Errorf("delete checkout state: %w", err)
	}
	return nil
}

// LockKey names the in-flight lock for scope and id.
func (s *SessionStore) LockKey(scope, id string) string {
	return s.kv.LockKey(scope, strings.TrimSpace(id))
}
