package dto

type UpdateUserRequest struct {
	Username string `json:"username" binding:"required,max=80"`
	Email    string `json:"email" binding:"required,email,max=120"`
	Role     string `json:"role" binding:"required,oneof=Administrator Leader Operator"`
}
