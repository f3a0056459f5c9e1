package models

// WelcomeMessage is queued after a successful registration.
type WelcomeMessage struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// PasswordResetMessage carries the plaintext reset code to the sender;
// the code itself is never persisted anywhere.
type PasswordResetMessage struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Code  string `json:"code"`
}
