package metadatastore

import "errors"

// Sentinel errors map 1:1 onto wire result codes (spec.md §7); the
// coordinator translates between the two at the router boundary so this
// package stays free of any wire dependency.
var (
	ErrFileExists           = errors.New("metadatastore: file already exists")
	ErrFileNotFound         = errors.New("metadatastore: file not found")
	ErrFolderExists         = errors.New("metadatastore: folder already exists")
	ErrFolderNotFound       = errors.New("metadatastore: folder not found")
	ErrCheckpointExists     = errors.New("metadatastore: checkpoint tag already in use")
	ErrCheckpointNotFound   = errors.New("metadatastore: checkpoint not found")
	ErrDenied               = errors.New("metadatastore: permission denied")
	ErrNotOwner             = errors.New("metadatastore: operation requires file ownership")
	ErrUserNotFound         = errors.New("metadatastore: user not registered")
	ErrSessionExists        = errors.New("metadatastore: user already has an active session")
	ErrSessionNotFound      = errors.New("metadatastore: no active session for user")
	ErrRequestExists        = errors.New("metadatastore: a pending access request already exists")
	ErrRequestNotFound      = errors.New("metadatastore: access request not found")
	ErrNoRequests           = errors.New("metadatastore: no pending access requests")
	ErrNodeNotFound         = errors.New("metadatastore: node not registered")
	ErrCannotRemoveOwner    = errors.New("metadatastore: owner cannot be removed from or granted an ACL entry")
	ErrCannotRequestOwnFile = errors.New("metadatastore: owner cannot request access to their own file")
)
