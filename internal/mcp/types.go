package mcp

// ViewInput names a view for focus_view and close_view.
type ViewInput struct {
	ID string `json:"id" jsonschema:"View id as returned by list_views (e.g. view_01h...)"`
}

// MoveViewInput is the input for the move_view tool.
type MoveViewInput struct {
	ID       string      `json:"id" jsonschema:"View id as returned by list_views"`
	Position [3]float32  `json:"position" jsonschema:"New position in meters in the headset's local space (x, y, z; -z is forward)"`
	Rotation *[3]float32 `json:"rotation,omitempty" jsonschema:"Optional rotation in radians about X, Y and Z. Omit to keep the current rotation."`
}

// EmptyInput is the input of tools that take no arguments.
type EmptyInput struct{}

// ActionOutput reports a command the compositor accepted.
type ActionOutput struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}
