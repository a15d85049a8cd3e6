// Package domain holds the entities and sentinel errors shared by every
// layer of the bot. It has no dependencies on storage or transport.
package domain

// Tag is a named text snippet stored per guild.
// Identity is (GuildID, Name); Name is case-sensitive and unrestricted.
// UserID is the creator and the only user allowed to edit or delete it.
type Tag struct {
	GuildID int64
	UserID  int64
	Name    string
	Content string
}
