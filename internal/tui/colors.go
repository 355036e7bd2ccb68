package tui

// Color constants for the taskflow TUI theme
const (
	ColorBorder = "#3F3A4F" // Muted plum

	// Text Colors
	ColorPrimaryText   = "#F1ECE6" // Titles, clock digits at rest
	ColorSecondaryText = "#B9B0A8" // Labels, plan names
	ColorDisabledText  = "#6F6863" // Locked or finished rows
	ColorHelpText      = "240"     // Dark grey for help text

	// Accent Colors (tomato theme)
	ColorAccentMain   = "#E5533D" // Work phase, selected row border
	ColorAccentBright = "#FF8A65" // Headers, highlights
	ColorRelax        = "#4FB3A9" // Relax phase
	ColorPaused       = "#C9A227" // Paused clock

	// State Colors
	ColorError   = "#EF4444" // Failed writes
	ColorSuccess = "#22C55E" // Finished work, finished tasks
	ColorWarning = "#F59E0B" // Urgent tasks
)
