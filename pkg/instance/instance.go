package instance

import "os"

// GetID returns the identifier of this counter process, used to tell tills apart in logs.
func GetID() string {
	if id := os.Getenv("COUNTERPOS_INSTANCE_ID"); id != "" {
		return id
	}
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	return "local"
}
