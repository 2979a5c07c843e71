// Package upi builds UPI deep-link payment requests and renders them as QR codes.
package upi

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	scheme              = "upi"
	currencyINR         = "INR"
	defaultNote         = "Payment"
	defaultMerchantCode = "0000"
)

var (
	ErrMissingPayee   = errors.New("payee id and name are required")
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrNotUPI         = errors.New("not a upi payment uri")
	ErrMissingPayeeID = errors.New("payment uri has no payee address")
)

// Request is a decoded UPI payment request.
type Request struct {
	PayeeID      string
	PayeeName    string
	Amount       decimal.Decimal
	Currency     string
	Note         string
	MerchantCode string
}

// BuildPaymentURI renders a upi://pay link for a fixed amount. An empty note
// becomes "Payment" and an empty merchant code becomes "0000".
func BuildPaymentURI(payeeID, payeeName string, amount decimal.Decimal, note string) (string, error) {
	return Request{
		PayeeID:   payeeID,
		PayeeName: payeeName,
		Amount:    amount,
		Note:      note,
	}.URI()
}

// URI encodes the request. Components use the same escaping as JavaScript's
// encodeURIComponent so links match what UPI apps already accept.
func (r Request) URI() (string, error) {
	if strings.TrimSpace(r.PayeeID) == "" || strings.TrimSpace(r.PayeeName) == "" {
		return "", ErrMissingPayee
	}
	if !r.Amount.IsPositive() {
		return "", ErrInvalidAmount
	}
	note := r.Note
	if note == "" {
		note = defaultNote
	}
	mc := r.MerchantCode
	if mc == "" {
		mc = defaultMerchantCode
	}
	cur := r.Currency
	if cur == "" {
		cur = currencyINR
	}

	return fmt.Sprintf("%s://pay?pa=%s&pn=%s&am=%s&cu=%s&tn=%s&mc=%s",
		scheme,
		encodeComponent(r.PayeeID),
		encodeComponent(r.PayeeName),
		r.Amount.StringFixed(2),
		cur,
		encodeComponent(note),
		encodeComponent(mc),
	), nil
}

// ParsePaymentURI decodes a upi://pay link.
func ParsePaymentURI(raw string) (Request, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Request{}, fmt.Errorf("parse upi uri: %w", err)
	}
	if u.Scheme != scheme || (u.Host != "pay" && u.Opaque != "pay") {
		return Request{}, ErrNotUPI
	}
	q := u.Query()
	req := Request{
		PayeeID:      q.Get("pa"),
		PayeeName:    q.Get("pn"),
		Currency:     q.Get("cu"),
		Note:         q.Get("tn"),
		MerchantCode: q.Get("mc"),
	}
	if req.PayeeID == "" {
		return Request{}, ErrMissingPayeeID
	}
	if am := q.Get("am"); am != "" {
		if req.Amount, err = decimal.NewFromString(am); err != nil {
			return Request{}, fmt.Errorf("parse amount: %w", err)
		}
	}
	return req, nil
}

const upperhex = "0123456789ABCDEF"

func encodeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
