package ui

import "github.com/charmbracelet/lipgloss"

// Dashboard palette.
var (
	ColorRed     = lipgloss.Color("#E06C75")
	ColorGreen   = lipgloss.Color("#98C379")
	ColorYellow  = lipgloss.Color("#E5C07B")
	ColorCyan    = lipgloss.Color("#56B6C2")
	ColorBlue    = lipgloss.Color("#61AFEF")
	ColorGray    = lipgloss.Color("#7F848E")
	ColorDimGray = lipgloss.Color("#4B5263")
	ColorWhite   = lipgloss.Color("#DCDFE4")
	ColorMagenta = lipgloss.Color("#C678DD")
)

// Shared styles.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	PanelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	PanelTitleActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorCyan)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta)

	SearchStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	EditCursorStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	SectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorCyan)
)

// Speaker labels in the dialogue pane.
var (
	ClinicianLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorBlue)

	PatientLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorGreen)
)

// Workflow state badges.
var (
	StateIdleStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	StateBusyStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true)

	StateDoneStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	StateEditStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	StateFailedStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				Bold(true)
)

// Patient tier badges.
var (
	TierNewStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	TierManagedStyle = lipgloss.NewStyle().
				Foreground(ColorBlue)

	TierRegularStyle = lipgloss.NewStyle().
				Foreground(ColorGreen)
)
