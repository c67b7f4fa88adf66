// Package session provides the session registry for Connect Four games.
//
// The session package implements:
//   - Thread-safe session storage keyed by a case-insensitive key
//   - One lock per session, so games on different keys never contend
//   - The waiting -> in progress -> finished lifecycle
//   - Cleanup of stale sessions for an external janitor
//
// Core Types:
//
// Manager implements service.SessionRegistry. Every session is paired with
// its own mutex; WithSession is the only way to change session state.
// CreateWaiting, BindOpponent and Lookup hand out snapshots copied under that
// mutex, never the live session.
//
// Session Keys:
//
// Callers normally supply the key (a channel or room identifier). When the key
// is empty a UUID is generated.
//
// Usage:
//
//	manager := session.NewManager(session.WithLogger(logger))
//
//	snap, err := manager.CreateWaiting("", "alice")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	_, err = manager.BindOpponent(snap.Key, "bob")
//
//	err = manager.WithSession(snap.Key, func(s *service.Session) error {
//		outcome := s.Game.AttemptMove("alice", 4)
//		_ = outcome
//		return nil
//	})
//
// Cleanup:
//
// The manager runs no timers. CleanupStaleWaiting and CleanupIdle are meant
// to be called periodically by the server.
package session
