package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/couponview/internal/coupon/domain"
)

func (s *Server) ListCoupons(c *gin.Context) {
	identity, ok := s.identity(c)
	if !ok {
		return
	}

	q := domain.Query{
		Search: strings.TrimSpace(c.Query("search")),
		Tab:    domain.StatusTab(c.DefaultQuery("status", string(domain.TabAll))),
		Sort:   domain.SortOrder(c.DefaultQuery("sort", string(domain.SortNewest))),
	}
	refresh, _ := strconv.ParseBool(c.Query("refresh"))

	coupons, counts, err := s.svc.ListCoupons(c.Request.Context(), identity, q, refresh)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   coupons,
		"counts": counts,
	})
}

type createCouponRequest struct {
	OrganizationID string `json:"organization_id"`
	Code           string `json:"code"`
	DiscountAmount uint64 `json:"discount_amount"`
	RecipientEmail string `json:"recipient_email"`
}

func (s *Server) CreateCoupon(c *gin.Context) {
	identity, ok := s.identity(c)
	if !ok {
		return
	}

	var req createCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.DiscountAmount == 0 {
		AbortWithError(c, newValidationError("discount_amount", "required", "discount amount is required"))
		return
	}

	resp, err := s.svc.CreateCoupon(c.Request.Context(), identity, domain.CreateCouponRequest{
		OrganizationID: strings.TrimSpace(req.OrganizationID),
		Code:           strings.TrimSpace(req.Code),
		DiscountAmount: req.DiscountAmount,
		RecipientEmail: strings.TrimSpace(req.RecipientEmail),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UseCoupon(c *gin.Context) {
	identity, ok := s.identity(c)
	if !ok {
		return
	}

	resp, err := s.svc.UseCoupon(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type shareCouponRequest struct {
	RecipientEmail string `json:"recipient_email"`
}

func (s *Server) ShareCoupon(c *gin.Context) {
	identity, ok := s.identity(c)
	if !ok {
		return
	}

	var req shareCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.svc.ShareCoupon(c.Request.Context(), identity, c.Param("id"), strings.TrimSpace(req.RecipientEmail))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
