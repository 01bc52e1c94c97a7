package controller

// Collection is a tenant-scoped object listing, e.g. "sites" at "v4.7".
type Collection struct {
	Name    string
	Version string
}

// Tenant is the subset of tenant info the report prints.
type Tenant struct {
	ID   string
	Name string
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
