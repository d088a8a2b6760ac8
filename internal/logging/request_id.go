package logging

import "github.com/google/uuid"

// GenerateRequestID generates a unique request ID used to correlate all log
// lines of one client connection.
func GenerateRequestID() string {
	return uuid.NewString()
}
