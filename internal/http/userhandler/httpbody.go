package userhandler

type CredentialsBody struct {
	Email    string `json:"email"    binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required"       example:"hunter2hunter2"`
} // @name CredentialsRequest

type AuthResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"  example:"bidder"`
	Token string `json:"token"`
} // @name AuthResponse

type ErrorResponse struct {
	Error string `json:"error"`
} // @name UserErrorResponse
