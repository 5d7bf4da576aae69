package dto

// Operator endpoints speak the Portuguese field names the existing
// frontend expects.

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"senha" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"usuario"`
}

type ChangePasswordRequest struct {
	Current string `json:"senha_atual" binding:"required"`
	Next    string `json:"senha_nova" binding:"required,min=8"`
}
