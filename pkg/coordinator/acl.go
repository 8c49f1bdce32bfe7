package coordinator

import (
	"strconv"
	"strings"

	"github.com/corefs/docfs/pkg/metadatastore"
	"github.com/corefs/docfs/pkg/wire"
)

// maskFromFlags reads an AccessType out of Frame.Flags, shared by
// ADDACCESS and REQUESTACCESS (spec.md §6 "Flags carried in Frame.Flags").
func maskFromFlags(flags int32) metadatastore.AccessType {
	return metadatastore.AccessType(flags).Normalize()
}

// handleAddAccess grants or updates an ACL entry; owner-only, target must
// already be a registered user, write implies read (spec.md §4.2
// ADDACCESS).
func (c *clientConnection) handleAddAccess(req *wire.Frame) *wire.Frame {
	target := string(req.Data)
	if !c.coord.store.UserExists(target) {
		return req.ReplyText(wire.ResultNotFound, "target user is not registered")
	}
	if err := c.coord.store.AddAccess(req.Filename, req.Username, target, maskFromFlags(req.Flags)); err != nil {
		return storeError(req, err)
	}
	return req.Reply(wire.ResultSuccess)
}

// handleRemAccess revokes an ACL entry; owner-only, owner cannot remove
// themselves (spec.md §4.2 REMACCESS).
func (c *clientConnection) handleRemAccess(req *wire.Frame) *wire.Frame {
	target := string(req.Data)
	if err := c.coord.store.RemAccess(req.Filename, req.Username, target); err != nil {
		return storeError(req, err)
	}
	return req.Reply(wire.ResultSuccess)
}

// handleRequestAccess enqueues a pending access request from a non-owner
// (spec.md §4.2 REQUESTACCESS).
func (c *clientConnection) handleRequestAccess(req *wire.Frame) *wire.Frame {
	reqRec, err := c.coord.store.RequestAccess(req.Filename, req.Username, maskFromFlags(req.Flags))
	if err != nil {
		return storeError(req, err)
	}
	return req.ReplyText(wire.ResultSuccess, formatRequest(reqRec))
}

// handleViewRequests lists pending requests against a file the caller owns
// (spec.md §4.2 VIEWREQUESTS).
func (c *clientConnection) handleViewRequests(req *wire.Frame) *wire.Frame {
	requests, err := c.coord.store.ViewRequests(req.Filename, req.Username)
	if err != nil {
		return storeError(req, err)
	}
	lines := make([]string, 0, len(requests))
	for _, r := range requests {
		lines = append(lines, formatRequest(r))
	}
	return req.ReplyText(wire.ResultSuccess, strings.Join(lines, "\n"))
}

// handleResolveRequest approves or denies a pending request by id, carried
// in SentenceNum for lack of a dedicated request-id field on the wire
// frame; approval appends/updates the requester's ACL entry (spec.md §4.2
// APPROVEREQUEST/DENYREQUEST).
func (c *clientConnection) handleResolveRequest(req *wire.Frame, approve bool) *wire.Frame {
	result, err := c.coord.store.ResolveRequest(int64(req.SentenceNum), req.Username, approve)
	if err != nil {
		return storeError(req, err)
	}
	return req.ReplyText(wire.ResultSuccess, formatRequest(result))
}

func formatRequest(r *metadatastore.AccessRequest) string {
	status := "pending"
	switch r.Status {
	case metadatastore.RequestApproved:
		status = "approved"
	case metadatastore.RequestDenied:
		status = "denied"
	}
	return "id=" + strconv.FormatInt(r.ID, 10) +
		" file=" + r.File +
		" requester=" + r.Requester +
		" status=" + status
}
