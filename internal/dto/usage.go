package dto

// TokenUsageResponse is the caller's view of the usage ledger.
type TokenUsageResponse struct {
	UserID               int64   `json:"user_id"`
	UserEmail            string  `json:"user_email"`
	TotalTokensUsed      int64   `json:"total_tokens_used"`
	PromptTokensUsed     int64   `json:"prompt_tokens_used"`
	CompletionTokensUsed int64   `json:"completion_tokens_used"`
	LastTokenUpdate      *string `json:"last_token_update"`
}

// UserTokenUsageItem is one per-user entry in the system-wide report.
type UserTokenUsageItem struct {
	UserID               int64   `json:"user_id"`
	Email                string  `json:"email"`
	Name                 string  `json:"name,omitempty"`
	TotalTokensUsed      int64   `json:"total_tokens_used"`
	PromptTokensUsed     int64   `json:"prompt_tokens_used"`
	CompletionTokensUsed int64   `json:"completion_tokens_used"`
	LastTokenUpdate      *string `json:"last_token_update"`
}

// AllTokenUsageResponse is the system-wide usage report, users sorted by
// total usage descending.
type AllTokenUsageResponse struct {
	TotalTokens           int64                `json:"total_tokens"`
	TotalPromptTokens     int64                `json:"total_prompt_tokens"`
	TotalCompletionTokens int64                `json:"total_completion_tokens"`
	TotalUsers            int                  `json:"total_users"`
	Users                 []UserTokenUsageItem `json:"users"`
}
