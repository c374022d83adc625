package tui

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MKhiriev/go-estimate-sync/internal/validators"
	"github.com/MKhiriev/go-estimate-sync/models"
)

const uiDivider = "──────────────────────────────────────────────────────"

func renderPage(title, data, hotKeys string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString("  ")
	b.WriteString(uiDivider)
	b.WriteString("\n\n")

	if strings.TrimSpace(data) != "" {
		lines := strings.Split(data, "\n")
		for _, line := range lines {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	} else {
		b.WriteString("  -\n")
	}

	b.WriteString("\n")
	b.WriteString("  ")
	b.WriteString(uiDivider)
	b.WriteString("\n")

	if strings.TrimSpace(hotKeys) != "" {
		b.WriteString("  ")
		b.WriteString(helpStyle.Render(hotKeys))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("  ctrl+c: выход"))

	return appStyle.Render(b.String())
}

// withOverlay places box under the page, the way modal prompts are shown.
func withOverlay(page, box string) string {
	return lipgloss.JoinVertical(lipgloss.Left, page, "", box)
}

func fitText(v string, max int) string {
	r := []rune(v)
	if max <= 0 || len(r) <= max {
		return v
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// padText fits v into exactly width runes.
func padText(v string, width int) string {
	v = fitText(v, width)
	if n := len([]rune(v)); n < width {
		v += strings.Repeat(" ", width-n)
	}
	return v
}

// formatValue renders a field value for a cell or an edit box. nil and
// missing values are shown as "".
func formatValue(field string, v any) string {
	v = models.Normalize(field, v)
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		switch models.LookupField(field).Kind {
		case models.KindCurrency:
			return strconv.FormatFloat(t, 'f', 2, 64)
		default:
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	case string:
		return t
	default:
		return ""
	}
}

// parseInput turns edit box text into a field value. Blank input clears the
// field. Numbers that do not parse are kept as typed; the edit is never
// refused here.
func parseInput(field, raw string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	switch models.LookupField(field).Kind {
	case models.KindCurrency, models.KindHours:
		f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return raw
		}
		if v, ok := models.Normalize(field, f).(float64); ok {
			return v
		}
		return raw
	default:
		return models.Normalize(field, raw)
	}
}

// severityStyle colors a cell by its worst advisory issue.
func severityStyle(s validators.Severity) (lipgloss.Style, bool) {
	switch s {
	case validators.SeverityWarning:
		return warningStyle, true
	case validators.SeverityInfo:
		return infoStyle, true
	default:
		return lipgloss.NewStyle(), false
	}
}
