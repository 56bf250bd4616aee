package store

// Key layout mirrors the session-prefixed object naming of the index and
// document namespaces: everything owned by a session lives under "<sid>/".

func SessionPrefix(sessionID string) string {
	return sessionID + "/"
}

func indexKey(sessionID string) string {
	return SessionPrefix(sessionID) + "index.json"
}

func statusKey(sessionID string) string {
	return SessionPrefix(sessionID) + "status.json"
}

func TokenKey(sessionID string) string {
	return SessionPrefix(sessionID) + "tokens"
}
