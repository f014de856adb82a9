package domain

// User is the authenticated requester as supplied by the auth collaborator.
type User struct {
	ID        string
	Username  string
	FirstName string
	LastName  string
}

// Owner is the display summary attached to a task. It never carries
// credentials.
type Owner struct {
	ID        string
	Username  string
	FirstName string
	LastName  string
}

func (u User) Owner() *Owner {
	return &Owner{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
