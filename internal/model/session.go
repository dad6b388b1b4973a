package model

// Session is the verified caller of an authenticated route.
type Session struct {
	UserID      string
	Role        string
	Permissions []string
}
