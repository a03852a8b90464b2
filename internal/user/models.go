package user

import "time"

type User struct {
	ID           string
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}

const RKRegistered = "user.registered"

type Registered struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}
