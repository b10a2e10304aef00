package dto

// SignUpInput contains user registration data
type SignUpInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Gender   string `json:"gender" validate:"required,gender"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// LoginInput contains login credentials
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
