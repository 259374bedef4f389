// Package filedb persists small collections of flat records as JSON files
// and coordinates access to them with a single host-wide advisory lock.
//
// Every collection lives in its own file. All collections of a DB share one
// lock file, so a read-modify-write that spans collections (for example a
// uniqueness check on one collection before appending to another) runs
// inside a single critical section:
//
//	err := db.Exclusive(ctx, func(tx *filedb.Tx) error {
//		users, err := filedb.Load[User](tx, "users")
//		if err != nil {
//			return err
//		}
//		*users = append(*users, u)
//		return nil
//	})
//
// Collections loaded in an exclusive Tx are written back when the callback
// returns nil. Writes go to a temporary file that is renamed over the
// original, so readers never observe a torn file. A missing file is an
// empty collection.
//
// The lock is an flock(2) advisory lock, so the kernel drops it when the
// owning process exits. Within a process an RWMutex orders goroutines
// before they reach the kernel.
package filedb
