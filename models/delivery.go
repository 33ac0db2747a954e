package models

import "time"

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "PENDING"
	DeliveryAssigned  DeliveryStatus = "ASSIGNED"
	DeliveryPickedUp  DeliveryStatus = "PICKED_UP"
	DeliveryDelivered DeliveryStatus = "DELIVERED"
	DeliveryCancelled DeliveryStatus = "CANCELLED"
)

type Delivery struct {
	ID              string         `json:"id"`
	OrderID         string         `json:"orderId"`
	DriverID        string         `json:"driverId,omitempty"`
	Status          DeliveryStatus `json:"status"`
	PickupAddress   Address        `json:"pickupAddress"`
	DeliveryAddress Address        `json:"deliveryAddress"`
	Items           []OrderItem    `json:"items,omitempty"`
	TotalAmount     float64        `json:"totalAmount"`
	AssignedAt      *time.Time     `json:"assignedAt,omitempty"`
	DeliveredAt     *time.Time     `json:"deliveredAt,omitempty"`
}
