package dto

// AdminUserCreateRequest pre-provisions a whitelist entry. The created user
// starts unbound; their Google identity is linked on first login.
type AdminUserCreateRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Grade string `json:"grade,omitempty"`
}
