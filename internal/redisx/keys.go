package redisx

import (
	"fmt"
	"time"
)

const (
	// Order status mirror: order_status:{order_id} -> order.StatusSnapshot JSON
	KeyOrderStatus = "order_status:%s"
)

var TTLStatusCache = 5 * time.Minute

func OrderStatusKey(orderID string) string {
	return fmt.Sprintf(KeyOrderStatus, orderID)
}
