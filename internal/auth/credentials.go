package auth

import "github.com/example/campusmart/internal/apperrors"

// Credentials is the closed set of accepted login credential shapes. Adding
// a new authentication path means adding a variant here and a case to
// Service.Resolve; the compiler flags any handler left behind.
type Credentials interface {
	credentials()
}

// PasswordCredentials is the email+password path. Only accounts holding a
// password hash (admins) can match it.
type PasswordCredentials struct {
	Email    string
	Password string
}

// WhatsAppCodeCredentials is the messaging-app one-time-code path.
type WhatsAppCodeCredentials struct {
	PhoneNumber string
	Code        string
}

// EmailCodeCredentials is the email one-time-code path.
type EmailCodeCredentials struct {
	Email string
	Code  string
}

func (PasswordCredentials) credentials()     {}
func (WhatsAppCodeCredentials) credentials() {}
func (EmailCodeCredentials) credentials()    {}

// LoginRequest mirrors the login endpoint body. Which fields are populated
// decides the credential path.
type LoginRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	OTPCode         string `json:"otpCode"`
	WhatsAppNumber  string `json:"whatsappNumber"`
	WhatsAppOTPCode string `json:"whatsappOtpCode"`
}

// ParseLogin selects the credential variant for a login request. Dispatch
// order: password, whatsapp code, email code.
func ParseLogin(req LoginRequest) (Credentials, error) {
	switch {
	case req.Email != "" && req.Password != "":
		return PasswordCredentials{Email: req.Email, Password: req.Password}, nil
	case req.WhatsAppNumber != "" && req.WhatsAppOTPCode != "":
		return WhatsAppCodeCredentials{PhoneNumber: req.WhatsAppNumber, Code: req.WhatsAppOTPCode}, nil
	case req.Email != "" && req.OTPCode != "":
		return EmailCodeCredentials{Email: req.Email, Code: req.OTPCode}, nil
	}
	return nil, apperrors.Validation("no valid credential combination")
}
