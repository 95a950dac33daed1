package mcp

// CreateWindowInput is the input for the create_window tool.
type CreateWindowInput struct {
	ID      string `json:"id" jsonschema:"required,Unique window id"`
	Title   string `json:"title,omitempty" jsonschema:"Window title shown on its tab"`
	Content string `json:"content,omitempty" jsonschema:"Initial window content"`
}

// CreateWindowOutput is the output for the create_window tool.
type CreateWindowOutput struct {
	ID          string `json:"id"`
	ContainerID string `json:"container_id"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// WindowIDInput addresses a single window.
type WindowIDInput struct {
	ID string `json:"id" jsonschema:"required,Window id"`
}

// WindowActionOutput reports whether a window-scoped tool found its target.
type WindowActionOutput struct {
	ID    string `json:"id"`
	Found bool   `json:"found"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// WindowInfo describes a single window.
type WindowInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ContainerID string `json:"container_id"`
	Minimized   bool   `json:"minimized"`
	Detached    bool   `json:"detached"`
	Active      bool   `json:"active"`
}

// ContainerInfo describes a single container.
type ContainerInfo struct {
	ID        string   `json:"id"`
	WindowIDs []string `json:"window_ids"`
	ActiveID  string   `json:"active_id,omitempty"`
	Minimized bool     `json:"minimized"`
	Hidden    bool     `json:"hidden"`
	ZOrder    int      `json:"z_order"`
	X         int      `json:"x"`
	Y         int      `json:"y"`
	Width     int      `json:"width"`
	Height    int      `json:"height"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows    []WindowInfo    `json:"windows"`
	Containers []ContainerInfo `json:"containers"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	ID     string `json:"id" jsonschema:"required,Window id to move"`
	Target string `json:"target,omitempty" jsonschema:"Target container id. Omit to move the window into a fresh container."`
}

// MoveWindowOutput is the output for the move_window tool.
type MoveWindowOutput struct {
	ID          string `json:"id"`
	ContainerID string `json:"container_id"`
}

// MergeContainersInput is the input for the merge_containers tool.
type MergeContainersInput struct {
	Source string `json:"source" jsonschema:"required,Container id whose tabs move"`
	Target string `json:"target" jsonschema:"required,Container id that receives the tabs"`
}

// MergeContainersOutput is the output for the merge_containers tool.
type MergeContainersOutput struct {
	Target   string   `json:"target"`
	TabOrder []string `json:"tab_order"`
}

// ContainerIDInput addresses a single container.
type ContainerIDInput struct {
	ID string `json:"id" jsonschema:"required,Container id"`
}

// ContainerActionOutput reports whether a container-scoped tool found its target.
type ContainerActionOutput struct {
	ID    string `json:"id"`
	Found bool   `json:"found"`
}

// DetachWindowOutput is the output for the detach_window tool.
type DetachWindowOutput struct {
	ID       string `json:"id"`
	Detached bool   `json:"detached"`
}
