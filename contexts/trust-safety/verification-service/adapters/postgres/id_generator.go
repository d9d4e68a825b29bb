package postgresadapter

import "github.com/google/uuid"

// UUIDGenerator creates UUIDv4 identifiers for submissions and audit rows.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
