package models

import (
	"time"

	"github.com/google/uuid"
)

// Tote is a physical container. OrderID is nil while the tote sits on the
// shelf; a non-nil value binds it to exactly one open order.
type Tote struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string     `gorm:"column:name;not null;uniqueIndex:ux_totes_name"`
	OrderID   *uuid.UUID `gorm:"column:order_id;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
