package models

import (
	"time"
)

// Endpoint methods. WS rows describe socket feeds, BASE rows hold upstream
// base addresses; the rest are plain HTTP routes.
const (
	MethodGET    = "GET"
	MethodPOST   = "POST"
	MethodPUT    = "PUT"
	MethodDELETE = "DELETE"
	MethodWS     = "WS"
	MethodBASE   = "BASE"
)

var EndpointMethods = []string{MethodGET, MethodPOST, MethodPUT, MethodDELETE, MethodWS, MethodBASE}

type Endpoint struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:255;not null;uniqueIndex"`
	URL         string    `json:"url" gorm:"type:text;not null"`
	Method      string    `json:"method" gorm:"size:10;default:GET"`
	Description string    `json:"description" gorm:"type:text"`
	Category    string    `json:"category" gorm:"size:100;default:general;index"`
	IsActive    bool      `json:"is_active" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
