package membership

import "time"

type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Membership grants a user access to one course within a tenant.
type Membership struct {
	ID        string     `gorm:"column:id;primaryKey"`
	TenantID  string     `gorm:"column:tenant_id;not null;uniqueIndex:ux_memberships_tenant_user_course,priority:1"`
	UserID    string     `gorm:"column:user_id;not null;uniqueIndex:ux_memberships_tenant_user_course,priority:2"`
	CourseID  string     `gorm:"column:course_id;not null;uniqueIndex:ux_memberships_tenant_user_course,priority:3"`
	SaleID    string     `gorm:"column:sale_id;index"`
	Status    Status     `gorm:"column:status;type:varchar(20);not null;default:active"`
	StartedAt time.Time  `gorm:"column:started_at"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	CreatedAt time.Time  `gorm:"column:created_at"`
}

func (Membership) TableName() string {
	return "memberships"
}

// User is a platform account as seen by the provisioner.
type User struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Email     string    `gorm:"column:email;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (User) TableName() string {
	return "users"
}

// CourseProduct maps a sellable product to a course it unlocks.
type CourseProduct struct {
	ID        string `gorm:"column:id;primaryKey"`
	TenantID  string `gorm:"column:tenant_id;index:idx_course_products_tenant_product,priority:1"`
	ProductID string `gorm:"column:product_id;index:idx_course_products_tenant_product,priority:2"`
	CourseID  string `gorm:"column:course_id"`
}

func (CourseProduct) TableName() string {
	return "course_products"
}
