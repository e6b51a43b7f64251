package handler

const (
	msgRegistered     = "Registration successful"
	msgLoggedIn       = "Login successful"
	msgContactDeleted = "Contact deleted"
)
