package domain

import "time"

// Customer is the requester of tickets. The transition engine only reads it.
type Customer struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}

// Agent is a support representative tickets get assigned to.
type Agent struct {
	ID        int64
	Name      string
	Email     string
	Active    bool
	CreatedAt time.Time
}
