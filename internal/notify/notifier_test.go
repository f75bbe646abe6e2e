package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestSendCouponEmail(t *testing.T) {
	var gotAuth string
	var gotPayload CouponEmail

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/email/send-coupon" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	n := New(Config{BaseURL: srv.URL, Token: "secret"}, zap.NewNop())
	err := n.SendCouponEmail(context.Background(), CouponEmail{
		RecipientEmail:   "friend@example.com",
		CouponCode:       "ACM-1",
		Discount:         "25% OFF",
		OrganizationName: "Acme Bakery",
		ExpiresAt:        "Dec 15, 2026",
	})
	if err != nil {
		t.Fatalf("SendCouponEmail: %v", err)
	}

	if gotAuth != "Bearer secret" {
		t.Fatalf("authorization header %q", gotAuth)
	}
	if gotPayload.CouponCode != "ACM-1" || gotPayload.RecipientEmail != "friend@example.com" {
		t.Fatalf("payload %+v", gotPayload)
	}
}

func TestSendCouponEmailFailures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"service failure", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":false}`))
		}},
		{"garbage body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			n := New(Config{BaseURL: srv.URL}, zap.NewNop())
			err := n.SendCouponEmail(context.Background(), CouponEmail{})
			if !errors.Is(err, ErrSend) {
				t.Fatalf("want ErrSend, got %v", err)
			}
		})
	}
}

func TestSendCouponEmailDisabled(t *testing.T) {
	n := New(Config{}, zap.NewNop())
	if err := n.SendCouponEmail(context.Background(), CouponEmail{}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("want ErrDisabled, got %v", err)
	}
}
