package mqtt

import (
	"fmt"
	"strings"
)

// TopicCompletion is where a session's completed slot set is published.
func TopicCompletion(prefix, sessionID string) string {
	return fmt.Sprintf("%s/session/%s/complete", prefix, sessionID)
}

// TopicCompletions matches every completion topic under prefix.
func TopicCompletions(prefix string) string {
	return fmt.Sprintf("%s/session/+/complete", prefix)
}

// TopicStatus carries the retained online/offline marker of the service.
func TopicStatus(prefix string) string {
	return fmt.Sprintf("%s/service/status", prefix)
}

// expected: {prefix}/session/{sessionId}/complete
func ParseSessionID(topic, prefix string) (string, error) {
	parts := strings.Split(topic, "/")
	prefixParts := strings.Split(prefix, "/")
	if len(parts) != len(prefixParts)+3 {
		return "", fmt.Errorf("invalid topic: %s", topic)
	}
	for i, p := range prefixParts {
		if parts[i] != p {
			return "", fmt.Errorf("topic prefix mismatch: %s", topic)
		}
	}
	if parts[len(prefixParts)] != "session" || parts[len(parts)-1] != "complete" {
		return "", fmt.Errorf("invalid topic pattern: %s", topic)
	}
	sessionID := parts[len(prefixParts)+1]
	if sessionID == "" {
		return "", fmt.Errorf("empty session id: %s", topic)
	}
	return sessionID, nil
}
