package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	searchdomain "github.com/stayhive/stayhive/internal/search/domain"
)

type searchQuery struct {
	Q          string   `form:"q"`
	City       string   `form:"city"`
	Country    string   `form:"country"`
	PriceMin   string   `form:"price_min"`
	PriceMax   string   `form:"price_max"`
	StarRating *int     `form:"star_rating"`
	Amenities  []string `form:"amenities"`
	PriceRange string   `form:"price_range"`
	CheckIn    string   `form:"check_in"`
	CheckOut   string   `form:"check_out"`
	SortBy     string   `form:"sort_by"`
	Page       int      `form:"page"`
	PageSize   int      `form:"page_size"`
}

func (s *Server) SearchHotels(c *gin.Context) {
	var query searchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	q := searchdomain.Query{
		Text:       query.Q,
		City:       query.City,
		Country:    query.Country,
		StarRating: query.StarRating,
		Amenities:  query.Amenities,
		PriceRange: searchdomain.PriceRange(strings.TrimSpace(query.PriceRange)),
		SortBy:     searchdomain.SortKey(strings.TrimSpace(query.SortBy)),
		Page:       query.Page,
		PageSize:   query.PageSize,
	}

	if raw := strings.TrimSpace(query.PriceMin); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("price_min", "invalid_price_min", "invalid price_min"))
			return
		}
		q.PriceMin = &parsed
	}
	if raw := strings.TrimSpace(query.PriceMax); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("price_max", "invalid_price_max", "invalid price_max"))
			return
		}
		q.PriceMax = &parsed
	}
	if raw := strings.TrimSpace(query.CheckIn); raw != "" {
		parsed, err := parseDate("check_in", raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		q.CheckIn = &parsed
	}
	if raw := strings.TrimSpace(query.CheckOut); raw != "" {
		parsed, err := parseDate("check_out", raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		q.CheckOut = &parsed
	}

	result, err := s.searchSvc.Search(c.Request.Context(), q)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result.Hits, "meta": result.Meta})
}
