package contracts

import "Wildfund/internal/domain/user"

type UserCreateRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Email string `json:"email" binding:"required,email"`
}

type UserResponse struct {
	User *user.User `json:"user"`
}
