// Package mailcache keeps a bounded, per-user recency cache of normalized
// email messages so repeated agent steps do not refetch the same message from
// the Gmail API.
package mailcache

import (
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"

	"atlas/internal/google"
)

// DefaultMaxSize bounds entries per user and distinct users in the registry.
const DefaultMaxSize = 1000

// whitespaceRun collapses a run of whitespace to its first character, so
// "a \n\n b" keeps one space / one newline instead of the whole run.
var whitespaceRun = regexp.MustCompile(`(\s)\s+`)

// Entry is the normalized projection of an email message stored per user.
type Entry struct {
	MessageID      string              `json:"message_id"`
	ThreadID       string              `json:"thread_id"`
	From           string              `json:"from"`
	To             []string            `json:"to"`
	DateTime       string              `json:"date_time"`
	Subject        string              `json:"subject"`
	LabelIDs       []string            `json:"label_ids"`
	Snippet        string              `json:"snippet"`
	HasAttachments bool                `json:"has_attachments"`
	Body           string              `json:"body"`
	Attachments    []google.Attachment `json:"attachments"`
}

// Cache holds one user's entries with least-recently-used eviction past
// capacity. Safe for concurrent use.
type Cache struct {
	userID string
	store  *lru.Cache[string, Entry]
}

// NewCache creates an empty cache for one user. maxSize <= 0 falls back to
// DefaultMaxSize.
func NewCache(userID string, maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	// lru.New only fails on non-positive size, which is guarded above.
	store, _ := lru.New[string, Entry](maxSize)
	return &Cache{userID: userID, store: store}
}

// UserID returns the owner of this cache.
func (c *Cache) UserID() string {
	return c.userID
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.store.Len()
}

// Get returns the entry for messageID, bumping its recency on a hit. A miss
// has no side effects.
func (c *Cache) Get(messageID string) (Entry, bool) {
	return c.store.Get(messageID)
}

// Save stores a normalized projection of msg under its message id.
//
// If the key already exists this is a reaccess: the stored entry keeps its
// original content and only its recency is refreshed, even when msg differs.
// A new key is inserted most-recently-used; when the store exceeds capacity
// the least-recently-used entry is evicted (exactly one, since inserts grow
// the store by one).
func (c *Cache) Save(msg google.EmailMessage) Entry {
	if existing, ok := c.store.Get(msg.MessageID); ok {
		return existing
	}

	entry := Normalize(msg)
	c.store.Add(msg.MessageID, entry)
	return entry
}

// Normalize projects a raw message into the canonical cached field set,
// collapsing whitespace runs in snippet and body.
func Normalize(msg google.EmailMessage) Entry {
	return Entry{
		MessageID:      msg.MessageID,
		ThreadID:       msg.ThreadID,
		From:           msg.Sender,
		To:             msg.Recipients,
		DateTime:       msg.DateTime,
		Subject:        msg.Subject,
		LabelIDs:       msg.Labels,
		Snippet:        whitespaceRun.ReplaceAllString(msg.Snippet, "$1"),
		HasAttachments: msg.HasAttachments(),
		Body:           whitespaceRun.ReplaceAllString(msg.Body, "$1"),
		Attachments:    msg.Attachments,
	}
}
