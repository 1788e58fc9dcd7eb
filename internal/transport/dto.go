package transport

import "github.com/Skotchmaster/blog/internal/models"

// LoginRequest accepts either local credentials or a Google ID token.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
	Token    string `json:"token"    form:"token"`
}

type CreateUserRequest struct {
	Username string      `json:"username" form:"username"`
	Email    string      `json:"email"    form:"email"`
	Password string      `json:"password" form:"password"`
	Role     models.Role `json:"role"     form:"role"`
}

type UpdateUserRequest struct {
	Username string `json:"username" form:"username"`
}

type UpdateRoleRequest struct {
	Role models.Role `json:"role" form:"role"`
}

type CreatePostRequest struct {
	Title   string `json:"title"   form:"title"`
	Content string `json:"content" form:"content"`
	UserID  *uint  `json:"user_id" form:"user_id"`
}

type UpdatePostRequest struct {
	Title   *string `json:"title"   form:"title"`
	Content *string `json:"content" form:"content"`
	UserID  *uint   `json:"user_id" form:"user_id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
