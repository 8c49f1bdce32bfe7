package coordinator

import (
	"strconv"
	"strings"

	"github.com/corefs/docfs/pkg/metadatastore"
	"github.com/corefs/docfs/pkg/wire"
)

// handleList returns every file name the caller may read (spec.md §4.2
// LIST); VIEW carries the richer, flag-driven listing.
func (c *clientConnection) handleList(req *wire.Frame) *wire.Frame {
	var names []string
	for _, f := range c.coord.store.ListFiles() {
		if ok, _ := c.coord.store.CheckAccess(f.Name, req.Username, metadatastore.AccessRead); ok {
			names = append(names, f.Name)
		}
	}
	return req.ReplyText(wire.ResultSuccess, strings.Join(names, "\n"))
}

// handleView implements VIEW's two flags: 'a' includes files the requester
// cannot access, displayed as "[-]"; 'l' additionally refreshes live stats
// from the owning node (spec.md §4.2 VIEW).
func (c *clientConnection) handleView(req *wire.Frame) *wire.Frame {
	all := req.Flags&wire.ViewAll != 0
	detailed := req.Flags&wire.ViewDetailed != 0

	var lines []string
	for _, f := range c.coord.store.ListFiles() {
		canRead, _ := c.coord.store.CheckAccess(f.Name, req.Username, metadatastore.AccessRead)
		if !canRead && !all {
			continue
		}
		if !canRead {
			lines = append(lines, f.Name+" [-]")
			continue
		}
		if !detailed {
			lines = append(lines, f.Name)
			continue
		}
		size, words, chars, _ := c.refreshStats(f)
		lines = append(lines, f.Name+" "+strconv.FormatInt(size, 10)+"b "+strconv.FormatInt(words, 10)+"w "+strconv.FormatInt(chars, 10)+"c")
	}
	return req.ReplyText(wire.ResultSuccess, strings.Join(lines, "\n"))
}

// handleListNodes reports every registered node's liveness and file count
// (spec.md §4.2 LIST_NODES).
func (c *clientConnection) handleListNodes(req *wire.Frame) *wire.Frame {
	var lines []string
	for _, n := range c.coord.store.ListNodes() {
		status := "ACTIVE"
		if n.Status == metadatastore.NodeFailed {
			status = "FAILED"
		}
		lines = append(lines, n.ID+" "+n.IP+":"+strconv.Itoa(n.ClientPort)+" "+status+" files="+strconv.Itoa(len(n.Files)))
	}
	return req.ReplyText(wire.ResultSSInfo, strings.Join(lines, "\n"))
}

// handleSearch delegates to the store's LRU-cached search, already scoped
// to files the requester may read (spec.md §4.2 SEARCH).
func (c *clientConnection) handleSearch(req *wire.Frame) *wire.Frame {
	matches := c.coord.store.Search(req.Filename, req.Username)
	return req.ReplyText(wire.ResultSuccess, strings.Join(matches, "\n"))
}
