package models

import "time"

// ItemKind discriminates the three item flavors Shelfmark manages.
type ItemKind string

const (
	ItemKindNote     ItemKind = "note"
	ItemKindBookmark ItemKind = "bookmark"
	ItemKindFile     ItemKind = "file"
)

// Item is the resource a shared link points at. The CRUD surface for items
// lives outside this subsystem; the fields here are what ownership checks
// and the redacted public view need.
type Item struct {
	ID      string
	OwnerID string
	Kind    ItemKind
	Title   string
	// URL is set for bookmarks.
	URL string
	// StorageKey is the object-storage key for file items. It is never
	// exposed publicly; the resolver rewrites it into a presigned URL.
	StorageKey string
	CreatedAt  time.Time
}
