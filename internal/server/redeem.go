package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LookupRedemption is the public preview of a coupon by code. It carries no
// identity; anyone holding a redemption link can see what the coupon offers.
func (s *Server) LookupRedemption(c *gin.Context) {
	resp, err := s.svc.LookupRedemption(c.Request.Context(), c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) Redeem(c *gin.Context) {
	identity, ok := s.identity(c)
	if !ok {
		return
	}

	resp, err := s.svc.Redeem(c.Request.Context(), identity, c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
