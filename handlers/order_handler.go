package handlers

import (
	"eshop/middleware"
	"eshop/services"
	"github.com/gin-gonic/gin"
	"net/http"
)

// 查詢訂單列表
func GetOrderListHandler(c *gin.Context, orders *services.OrderService) {
	orderList, err := orders.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderList)
}

// 查詢訂單詳細資訊
func GetOrderDataHandler(c *gin.Context, orders *services.OrderService) {
	order, err := orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// 送出訂單，未指定user時使用Token內的使用者
func SendOrderHandler(c *gin.Context, orders *services.OrderService) {
	var orderReq services.CreateOrderInput
	if err := c.ShouldBindJSON(&orderReq); err != nil {
		respondError(c, bindError(err))
		return
	}

	if orderReq.User == "" {
		if userID, ok := middleware.CurrentUserID(c); ok {
			orderReq.User = userID
		}
	}

	order, err := orders.CreateOrder(c.Request.Context(), orderReq)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// 修改訂單狀態
func UpdateOrderStatusHandler(c *gin.Context, orders *services.OrderService) {
	var statusReq struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&statusReq); err != nil {
		respondError(c, bindError(err))
		return
	}

	order, err := orders.UpdateStatus(c.Request.Context(), c.Param("id"), statusReq.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// 刪除訂單及其明細
func DeleteOrderHandler(c *gin.Context, orders *services.OrderService) {
	if err := orders.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, "the order is deleted!")
}

func GetOrderCountHandler(c *gin.Context, orders *services.OrderService) {
	count, err := orders.CountOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orderCount": count,
	})
}

// 查詢總銷售額
func GetTotalSalesHandler(c *gin.Context, orders *services.OrderService) {
	total, err := orders.TotalSales(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"totalsales": total,
	})
}

// 查詢使用者的訂單
func GetUserOrdersHandler(c *gin.Context, orders *services.OrderService) {
	orderList, err := orders.ListUserOrders(c.Request.Context(), c.Param("userid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderList)
}
