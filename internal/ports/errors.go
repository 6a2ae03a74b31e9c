package ports

import "fmt"

// RoutingServiceError reports an unreachable routing service or a non-success
// HTTP status from one of its endpoints. StatusCode is 0 for transport-level
// failures that never produced a response.
type RoutingServiceError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *RoutingServiceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("routing service %s unreachable: %s", e.Endpoint, e.Body)
	}
	return fmt.Sprintf("routing service %s returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// MalformedResponseError reports a routing-service response that decoded but
// lacks the expected fields or shape.
type MalformedResponseError struct {
	Endpoint string
	Reason   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %s", e.Endpoint, e.Reason)
}
