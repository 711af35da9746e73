// Package files writes report files.
//
// Manager replaces the destination in one rename: content goes to a
// temporary file next to the target, is synced, and is then moved into
// place. A failed run leaves any previous report untouched.
//
// Example usage:
//
//	manager := files.NewManager(logger)
//	if err := manager.WriteFile("reports/survey.csv", content, 0644); err != nil {
//	    return err
//	}
package files
