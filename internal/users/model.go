package users

import "time"

// User is the profile recorded at sign-in. ID is the token subject, e.g.
// "google:123".
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"fullName"`
	GivenName    string     `json:"givenName"`
	FamilyName   string     `json:"familyName"`
	PictureURL   string     `json:"pictureUrl"`
	LastSignInAt *time.Time `json:"lastSignInAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
