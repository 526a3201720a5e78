package models

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role,omitempty"`
	// VendorType is required when Role is "vendor".
	VendorType string `json:"vendor_type,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type CreateBrandRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

type UpdateBrandRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	ParentID    *string `json:"parent_id,omitempty"`
}

type CreateReviewRequest struct {
	ProductID string   `json:"product_id" binding:"required"`
	OrderID   string   `json:"order_id" binding:"required"`
	Rating    int      `json:"rating" binding:"required,min=1,max=5"`
	Title     string   `json:"title,omitempty"`
	Comment   string   `json:"comment,omitempty"`
	Images    []string `json:"images,omitempty" binding:"max=5"`
}

type UpdateReviewRequest struct {
	Rating  *int      `json:"rating,omitempty" binding:"omitempty,min=1,max=5"`
	Title   *string   `json:"title,omitempty"`
	Comment *string   `json:"comment,omitempty"`
	Images  *[]string `json:"images,omitempty" binding:"omitempty,max=5"`
}

type VendorResponseRequest struct {
	Comment string `json:"comment" binding:"required"`
}

type CreateServiceRequest struct {
	ServiceType   string  `json:"service_type" binding:"required"`
	PickupAddress Address `json:"pickup_address" binding:"required"`
	DropAddress   Address `json:"drop_address,omitempty"`
	Birds         []Bird  `json:"birds" binding:"required,min=1"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	TotalAmount   float64 `json:"total_amount" binding:"required,gt=0"`
}

type UpdateServiceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
