package storage

func findFirst[T any](entities []T, condition func(T) bool) (T, bool) {
	for _, e := range entities {
		if condition(e) {
			return e, true
		}
	}

	var zero T
	return zero, false
}

// removeOldest drops the entry with the smallest creation timestamp. Used to
// bound the session maps.
func removeOldest[T any](entities map[string]T, createdAt func(T) int) {
	var oldestID string
	oldest := -1
	for id, e := range entities {
		if oldest == -1 || createdAt(e) < oldest {
			oldestID = id
			oldest = createdAt(e)
		}
	}

	delete(entities, oldestID)
}
