package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sales_tracker/internal/model"
	"sales_tracker/internal/service"
)

func createCustomer(svc *service.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			LastName  string  `json:"last_name" binding:"required"`
			FirstName string  `json:"first_name" binding:"required"`
			Email     string  `json:"email" binding:"required"`
			Phone     *string `json:"phone"`
			City      *string `json:"city"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		cust, err := svc.Create(c.Request.Context(), service.CustomerInput{
			LastName:  req.LastName,
			FirstName: req.FirstName,
			Email:     req.Email,
			Phone:     req.Phone,
			City:      req.City,
		})
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusCreated, cust)
	}
}

func listCustomers(svc *service.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.List(c.Request.Context(), model.CustomerFilter{
			City:   c.Query("city"),
			Search: c.Query("q"),
		})
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, list)
	}
}

func listCities(svc *service.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cities, err := svc.Cities(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, cities)
	}
}

func getCustomer(svc *service.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := pathID(c)
		if !valid {
			return
		}
		cust, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, cust)
	}
}

func updateCustomer(svc *service.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := pathID(c)
		if !valid {
			return
		}
		var req model.CustomerUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if err := svc.Update(c.Request.Context(), id, req); err != nil {
			fail(c, err)
			return
		}
		cust, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, cust)
	}
}
