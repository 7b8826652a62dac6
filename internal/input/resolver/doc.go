// Package resolver turns a stream of canonical keys into mapping matches.
//
// Each buffer has its own PendingInput: the keys typed so far that form a
// strict prefix of some mapping. HandleKey appends a key and walks the
// keymap.Store (buffer overlay first, then global):
//
//	res := r.HandleKey("tab-1", mode.Normal, "g") // PartialMatch
//	res = r.HandleKey("tab-1", mode.Normal, "g")  // FullMatch for gg
//
// A dead end releases the withheld keys as Replayed (or as Flushed when
// they completed a shorter mapping) and resolves the new key on its own.
//
// Timers never touch resolver state directly. A timer carries the
// generation it was armed for; every key, reset or drop bumps the
// generation first, and Expire ignores stale generations. The caller's
// OnTimeout hook decides how the expiry is serialized with key handling.
package resolver
