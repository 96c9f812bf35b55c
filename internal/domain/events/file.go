package events

// FileChangeType represents the type of file change.
type FileChangeType string

const (
	FileChangeCreated  FileChangeType = "created"
	FileChangeModified FileChangeType = "modified"
	FileChangeDeleted  FileChangeType = "deleted"
	FileChangeRenamed  FileChangeType = "renamed"
)

// FileChangedPayload is the payload for file_changed events.
type FileChangedPayload struct {
	Path    string         `json:"path"`
	Change  FileChangeType `json:"change"`
	Size    int64          `json:"size,omitempty"`
	OldPath string         `json:"old_path,omitempty"`
}

// NewFileChangedEvent creates a new file_changed event.
func NewFileChangedEvent(path string, change FileChangeType, size int64) *BaseEvent {
	return NewEvent(FileChanged, FileChangedPayload{
		Path:   path,
		Change: change,
		Size:   size,
	})
}

// NewFileRenamedEvent creates a new file_changed event for renamed files.
func NewFileRenamedEvent(oldPath, newPath string) *BaseEvent {
	return NewEvent(FileChanged, FileChangedPayload{
		Path:    newPath,
		Change:  FileChangeRenamed,
		OldPath: oldPath,
	})
}

// MergeChangeTypes combines two change types for the same path, preferring
// the more significant one.
func MergeChangeTypes(existing, next FileChangeType) FileChangeType {
	// Delete takes precedence
	if next == FileChangeDeleted {
		return FileChangeDeleted
	}
	// Create takes precedence over modify
	if existing == FileChangeCreated {
		return FileChangeCreated
	}
	return next
}

// ChangeKey returns the change type of a file_changed event, or "" for any
// other value.
func ChangeKey(args any) string {
	e, ok := args.(*BaseEvent)
	if !ok {
		return ""
	}
	p, ok := e.Payload.(FileChangedPayload)
	if !ok {
		return ""
	}
	return string(p.Change)
}
