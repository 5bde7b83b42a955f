package model

// View is one of the dashboard screens.
type View string

const (
	ViewUpload View = "upload"
	ViewMap    View = "map"
	ViewDetail View = "detail"
)

// ValidView reports enum membership.
func ValidView(v View) bool {
	switch v {
	case ViewUpload, ViewMap, ViewDetail:
		return true
	}
	return false
}

// Theme is the dashboard color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ValidTheme reports enum membership.
func ValidTheme(t Theme) bool {
	return t == ThemeLight || t == ThemeDark
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
