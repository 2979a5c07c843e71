package pagination

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCursorRoundTripIsURLSafe(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2026, 3, 1, 10, 30, 0, 123456789, time.UTC), ID: uuid.New()}
	token := EncodeCursor(in)
	for _, r := range token {
		if r == '+' || r == '/' || r == '=' {
			t.Fatalf("cursor %q is not url safe", token)
		}
	}
	out, err := ParseCursor(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) || out.ID != in.ID {
		t.Fatalf("expected %+v got %+v", in, out)
	}
}

func TestParseCursorRejectsForeignTokens(t *testing.T) {
	for _, value := range []string{"%%%", "bm90LWEtY3Vyc29y", EncodeCursor(Cursor{CreatedAt: time.Now(), ID: uuid.New()})[:4]} {
		if _, err := ParseCursor(value); !errors.Is(err, ErrInvalidCursor) {
			t.Fatalf("%q: expected ErrInvalidCursor, got %v", value, err)
		}
	}
	if cursor, err := ParseCursor("  "); err != nil || cursor != nil {
		t.Fatalf("empty cursor should be nil, got %v %v", cursor, err)
	}
}

func TestNormalizeLimit(t *testing.T) {
	if NormalizeLimit(0) != DefaultLimit || NormalizeLimit(MaxLimit+1) != MaxLimit || NormalizeLimit(7) != 7 {
		t.Fatalf("unexpected limit normalization")
	}
	if LimitWithBuffer(7) != 8 {
		t.Fatalf("expected buffered limit 8")
	}
}
