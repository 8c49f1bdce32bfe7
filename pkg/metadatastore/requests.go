package metadatastore

import "time"

// RequestAccess enqueues a pending access request by requester for mask
// access to name. A user may not request access to a file they own, and at
// most one pending request may exist per (requester, file) (spec.md §3,
// §4.2 REQUESTACCESS).
func (s *Store) RequestAccess(name, requester string, mask AccessType) (*AccessRequest, error) {
	owner, err := s.IsOwner(name, requester)
	if err != nil {
		return nil, err
	}
	if owner {
		return nil, ErrCannotRequestOwnFile
	}

	s.requestsMu.Lock()
	defer s.requestsMu.Unlock()

	for _, r := range s.requests {
		if r.File == name && r.Requester == requester && r.Status == RequestPending {
			return nil, ErrRequestExists
		}
	}

	s.nextReqID++
	req := &AccessRequest{
		ID:          s.nextReqID,
		Requester:   requester,
		File:        name,
		AccessType:  mask.Normalize(),
		RequestedAt: time.Now(),
		Status:      RequestPending,
	}
	s.requests[req.ID] = req
	r := *req
	return &r, nil
}

// ViewRequests returns every pending request against name (spec.md §4.2
// VIEWREQUESTS). owner must own name, or ErrDenied is returned; with no
// pending request it returns ErrNoRequests.
func (s *Store) ViewRequests(name, owner string) ([]*AccessRequest, error) {
	isOwner, err := s.IsOwner(name, owner)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		return nil, ErrDenied
	}

	s.requestsMu.Lock()
	defer s.requestsMu.Unlock()

	var out []*AccessRequest
	for _, r := range s.requests {
		if r.File == name && r.Status == RequestPending {
			c := *r
			out = append(out, &c)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoRequests
	}
	return out, nil
}

// ResolveRequest approves or denies a pending request by id on behalf of
// owner, who must own the request's file. Approval grants or updates the
// file's ACL with the request's mask (spec.md §4.2 APPROVE/DENY).
func (s *Store) ResolveRequest(id int64, owner string, approve bool) (*AccessRequest, error) {
	s.requestsMu.Lock()
	req, ok := s.requests[id]
	if !ok {
		s.requestsMu.Unlock()
		return nil, ErrRequestNotFound
	}
	if req.Status != RequestPending {
		s.requestsMu.Unlock()
		return nil, ErrRequestNotFound
	}

	isOwner, err := s.IsOwner(req.File, owner)
	if err != nil {
		s.requestsMu.Unlock()
		return nil, err
	}
	if !isOwner {
		s.requestsMu.Unlock()
		return nil, ErrDenied
	}

	if approve {
		req.Status = RequestApproved
	} else {
		req.Status = RequestDenied
	}
	result := *req
	s.requestsMu.Unlock()

	if approve {
		if err := s.AddAccess(req.File, owner, req.Requester, req.AccessType); err != nil {
			return nil, err
		}
	}
	return &result, nil
}
