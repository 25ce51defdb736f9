package api

import (
	"time"

	"uptime/cmd/identity"
	"uptime/cmd/internal/auth/token"
)

// Check is the persisted monitored-endpoint definition, keyed by its
// 20-char id in the "checks" namespace. UserPhone references the owning
// account; the id must also appear in that account's CheckIDs.
type Check struct {
	ID             string `cbor:"id"`
	UserPhone      string `cbor:"user_phone"`
	Protocol       string `cbor:"protocol"`
	URL            string `cbor:"url"`
	Method         string `cbor:"method"`
	SuccessCodes   []int  `cbor:"success_codes"`
	TimeoutSeconds int    `cbor:"timeout_seconds"`
}

// ---- requests ----

type userCreateRequest struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Phone         string `json:"phone"`
	Password      string `json:"password"`
	TermsAccepted bool   `json:"termsAccepted"`
}

// userUpdateRequest uses pointers so "field absent" and "field present
// but invalid" stay distinguishable: partial updates apply only what
// was sent, and anything sent must be valid.
type userUpdateRequest struct {
	Phone     string  `json:"phone"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Password  *string `json:"password"`
}

type tokenCreateRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type tokenExtendRequest struct {
	ID     string `json:"id"`
	Extend bool   `json:"extend"`
}

type checkCreateRequest struct {
	Protocol       string `json:"protocol"`
	URL            string `json:"url"`
	Method         string `json:"method"`
	SuccessCodes   []int  `json:"successCodes"`
	TimeoutSeconds *int   `json:"timeoutSeconds"`
}

type checkUpdateRequest struct {
	ID             string  `json:"id"`
	Protocol       *string `json:"protocol"`
	URL            *string `json:"url"`
	Method         *string `json:"method"`
	SuccessCodes   []int   `json:"successCodes"`
	TimeoutSeconds *int    `json:"timeoutSeconds"`
}

// ---- responses ----

type messageResponse struct {
	Message string `json:"message"`
}

// accountResponse is the externally visible account shape. The password
// digest is stripped even for the owner.
type accountResponse struct {
	FirstName     string   `json:"firstName"`
	LastName      string   `json:"lastName"`
	Phone         string   `json:"phone"`
	TermsAccepted bool     `json:"termsAccepted"`
	CheckIDs      []string `json:"checkIds"`
}

func toAccountResponse(a identity.Account) accountResponse {
	checkIDs := a.CheckIDs
	if checkIDs == nil {
		checkIDs = []string{}
	}
	return accountResponse{
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Phone:         a.Phone,
		TermsAccepted: a.TermsAccepted,
		CheckIDs:      checkIDs,
	}
}

type tokenResponse struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func toTokenResponse(t token.Token) tokenResponse {
	return tokenResponse{ID: t.ID, Phone: t.Phone, ExpiresAt: t.ExpiresAt}
}

type checkResponse struct {
	ID             string `json:"id"`
	UserPhone      string `json:"userPhone"`
	Protocol       string `json:"protocol"`
	URL            string `json:"url"`
	Method         string `json:"method"`
	SuccessCodes   []int  `json:"successCodes"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

func toCheckResponse(c Check) checkResponse {
	return checkResponse{
		ID:             c.ID,
		UserPhone:      c.UserPhone,
		Protocol:       c.Protocol,
		URL:            c.URL,
		Method:         c.Method,
		SuccessCodes:   c.SuccessCodes,
		TimeoutSeconds: c.TimeoutSeconds,
	}
}
