package domain

// User is the narrow projection of the externally managed account system.
// Registration, authentication and profile data live outside this service;
// only identity and contact fields are consumed here.
type User struct {
	ID    int32  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
