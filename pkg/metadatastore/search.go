package metadatastore

import "strings"

// Search resolves a SEARCH query against the registry, filtered to files
// requester may read. On a cache hit the stored result list is returned
// as-is; on a miss the registry is scanned doing exact, substring, and
// case-insensitive substring matching, and the result is cached (spec.md
// §4.2 SEARCH).
func (s *Store) Search(query, requester string) []string {
	if cached, ok := s.cache.get(cacheQueryKey(query, requester)); ok {
		return cached
	}

	lowerQuery := strings.ToLower(query)

	s.filesMu.RLock()
	var matches []string
	for name, rec := range s.files {
		if !matchesQuery(name, query, lowerQuery) {
			continue
		}
		if rec.Owner == requester {
			matches = append(matches, name)
			continue
		}
		if entry, ok := rec.ACL[requester]; ok && entry.CanRead {
			matches = append(matches, name)
		}
	}
	s.filesMu.RUnlock()

	s.cache.put(cacheQueryKey(query, requester), matches)
	return matches
}

func matchesQuery(name, query, lowerQuery string) bool {
	if name == query {
		return true
	}
	if strings.Contains(name, query) {
		return true
	}
	return strings.Contains(strings.ToLower(name), lowerQuery)
}

// cacheQueryKey scopes a cached SEARCH result to the requester, since
// different users see different result sets for the same query string.
func cacheQueryKey(query, requester string) string {
	return requester + "\x00" + query
}

// CacheSize exposes the current number of cached queries, for metrics.
func (s *Store) CacheSize() int {
	return s.cache.len()
}
