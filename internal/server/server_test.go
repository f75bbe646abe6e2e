package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smallbiznis/couponview/internal/config"
	"github.com/smallbiznis/couponview/internal/coupon/domain"
)

// stubService cans every Service response; tests override per call.
type stubService struct {
	coupons []domain.Coupon
	counts  domain.StatusCounts
	err     error
}

func (s *stubService) Dashboard(ctx context.Context, identity string) (domain.Dashboard, error) {
	return domain.Dashboard{}, s.err
}

func (s *stubService) ListCoupons(ctx context.Context, identity string, q domain.Query, refresh bool) ([]domain.Coupon, domain.StatusCounts, error) {
	return s.coupons, s.counts, s.err
}

func (s *stubService) ListOrganizations(ctx context.Context, identity string) ([]domain.Organization, error) {
	return nil, s.err
}

func (s *stubService) OrganizationDetails(ctx context.Context, identity, orgID string) (domain.OrganizationDetails, error) {
	return domain.OrganizationDetails{}, s.err
}

func (s *stubService) CreateOrganization(ctx context.Context, identity, name, description string) (domain.WriteResult, error) {
	return domain.WriteResult{TxHash: "0xabc"}, s.err
}

func (s *stubService) CreateCoupon(ctx context.Context, identity string, req domain.CreateCouponRequest) (domain.CreateCouponResult, error) {
	return domain.CreateCouponResult{TxHash: "0xabc", Code: "ACM-1"}, s.err
}

func (s *stubService) UseCoupon(ctx context.Context, identity, couponID string) (domain.WriteResult, error) {
	return domain.WriteResult{TxHash: "0xabc"}, s.err
}

func (s *stubService) ShareCoupon(ctx context.Context, identity, couponID, recipientEmail string) (domain.ShareResult, error) {
	return domain.ShareResult{TxHash: "0xabc", EmailSent: true}, s.err
}

func (s *stubService) LookupRedemption(ctx context.Context, code string) (domain.Redemption, error) {
	return domain.Redemption{}, s.err
}

func (s *stubService) Redeem(ctx context.Context, identity, code string) (domain.WriteResult, error) {
	return domain.WriteResult{TxHash: "0xabc"}, s.err
}

func newTestServer(t *testing.T, svc domain.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := NewEngine(config.Config{}, nil)
	srv := NewServer(ServerParam{
		Cfg: config.Config{},
		Log: zap.NewNop(),
		Svc: svc,
	}, engine)
	srv.RegisterAPIRoutes()
	return engine
}

func doRequest(engine *gin.Engine, method, path, identity, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if identity != "" {
		req.Header.Set(identityHeader, identity)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestMissingIdentityRejected(t *testing.T) {
	engine := newTestServer(t, &stubService{})

	for _, path := range []string{"/api/dashboard", "/api/coupons", "/api/organizations"} {
		rec := doRequest(engine, http.MethodGet, path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: got %d, want 401", path, rec.Code)
		}
	}
}

func TestListCouponsResponseShape(t *testing.T) {
	engine := newTestServer(t, &stubService{
		coupons: []domain.Coupon{{ID: "10", Code: "ACM-1"}},
		counts:  domain.StatusCounts{All: 1, Active: 1},
	})

	rec := doRequest(engine, http.MethodGet, "/api/coupons?status=active&sort=newest", "0xabc", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data   []domain.Coupon     `json:"data"`
		Counts domain.StatusCounts `json:"counts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 || resp.Counts.All != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrCouponNotFound, http.StatusNotFound},
		{domain.ErrCouponAlreadyUsed, http.StatusConflict},
		{domain.ErrCouponInactive, http.StatusConflict},
		{domain.ErrWriteInFlight, http.StatusConflict},
		{domain.ErrTransactionRejected, http.StatusBadGateway},
		{domain.ErrTransactionReverted, http.StatusUnprocessableEntity},
		{domain.ErrReconcileFailed, http.StatusBadGateway},
		{domain.ErrValidation, http.StatusBadRequest},
	}

	for _, tc := range cases {
		engine := newTestServer(t, &stubService{err: tc.err})
		rec := doRequest(engine, http.MethodPost, "/api/coupons/10/use", "0xabc", "")
		if rec.Code != tc.want {
			t.Fatalf("%v: got %d, want %d", tc.err, rec.Code, tc.want)
		}

		var body apiError
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%v: decode: %v", tc.err, err)
		}
		if body.Code == "" {
			t.Fatalf("%v: missing error code in %s", tc.err, rec.Body.String())
		}
	}
}

func TestCreateCouponValidation(t *testing.T) {
	engine := newTestServer(t, &stubService{})

	rec := doRequest(engine, http.MethodPost, "/api/coupons", "0xabc", `{"organization_id":"1","recipient_email":"a@b.c"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("zero discount: got %d, want 400", rec.Code)
	}

	rec = doRequest(engine, http.MethodPost, "/api/coupons", "0xabc", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad body: got %d, want 400", rec.Code)
	}
}

func TestRedeemPublicLookupNeedsNoIdentity(t *testing.T) {
	engine := newTestServer(t, &stubService{})

	rec := doRequest(engine, http.MethodGet, "/api/redeem/ACM-1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(engine, http.MethodPost, "/api/redeem/ACM-1", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("redeem without identity: got %d, want 401", rec.Code)
	}
}

func TestRedeemRateLimited(t *testing.T) {
	engine := newTestServer(t, &stubService{})

	var last int
	for i := 0; i < redeemRateLimit+1; i++ {
		rec := doRequest(engine, http.MethodGet, "/api/redeem/ACM-1", "", "")
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("got %d after exceeding limit, want 429", last)
	}
}

func TestHealthz(t *testing.T) {
	engine := newTestServer(t, &stubService{})
	rec := doRequest(engine, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}
}
