package dto

// Data Transfer Objects for authentication requests and responses

// SignupRequest: payload for account creation
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest: payload for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse: response payload after successful authentication
type AuthResponse struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

// MessageResponse: generic acknowledgement body
type MessageResponse struct {
	Message string `json:"message"`
}
