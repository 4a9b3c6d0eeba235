package storage

import "fmt"

func manifestKey(sessionID string) string {
	return SessionKeyPrefix + sessionID + ":manifest"
}

func summaryKey(sessionID string) string {
	return SessionKeyPrefix + sessionID + ":summary"
}

func fileKey(sessionID string, index int) string {
	return fmt.Sprintf("%s%s:file:%d", SessionKeyPrefix, sessionID, index)
}

func archiveKey(sessionID string) string {
	return SessionKeyPrefix + sessionID + ":archive"
}

func jobKey(jobID string) string {
	return JobKeyPrefix + jobID
}
