package domain

// CurrentUser is the minimal projection of a stored user exposed to the rest
// of the system after session resolution. It is echoed back to the calling
// client, so it must never carry the password hash, salt, or reset token
// fields; the resolver selects only the fields listed here.
type CurrentUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email,omitempty"`
	Roles Roles  `json:"roles"`
}
