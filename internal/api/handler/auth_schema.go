package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type registerRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,strongpw"`
	FullName string `json:"full_name" validate:"required,min=2"`
}

type registerResponse struct {
	User accountResponse `json:"user"`
	// Message tells the caller a verification email is on its way.
	Message string `json:"message"`
}

type loginRequest struct {
	Email      string `json:"email"    validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

type loginResponse struct {
	Token string          `json:"token"`
	User  accountResponse `json:"user"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// forgotPasswordResponse is deliberately identical whether or not the account
// exists, so the endpoint cannot be used to enumerate addresses.
type forgotPasswordResponse struct {
	Message string `json:"message"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required,strongpw"`
}

type verifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type accountResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Verified bool   `json:"verified"`
}

type sessionResponse struct {
	// Session is null when no active session exists; that is a normal
	// response, not an error.
	Session *sessionDescriptorResponse `json:"session"`
}

type sessionDescriptorResponse struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	CreatedAt string `json:"created_at"`
}

type welcomeResponse struct {
	Shown bool `json:"shown"`
}
