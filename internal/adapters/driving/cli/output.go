package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/versesearch/internal/core/domain"
	"github.com/custodia-labs/versesearch/internal/core/services"
)

// palette is the terminal colour scheme.
var palette = struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}{
	Primary: lipgloss.Color("#7C3AED"),
	Accent:  lipgloss.Color("#F9E2AF"),
	Muted:   lipgloss.Color("#6C7086"),
	Success: lipgloss.Color("#A6E3A1"),
	Warning: lipgloss.Color("#F9E2AF"),
	Error:   lipgloss.Color("#F38BA8"),
}

// styles holds the pre-configured output styles.
var styles = struct {
	Title     lipgloss.Style
	Label     lipgloss.Style
	Muted     lipgloss.Style
	Highlight lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(palette.Primary),
	Label:     lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(palette.Muted),
	Highlight: lipgloss.NewStyle().Bold(true).Foreground(palette.Accent),
	Success:   lipgloss.NewStyle().Foreground(palette.Success),
	Warning:   lipgloss.NewStyle().Foreground(palette.Warning),
	Error:     lipgloss.NewStyle().Foreground(palette.Error),
}

// fieldLabels are the display names of the text fields.
var fieldLabels = map[domain.TextField]string{
	domain.FieldArabic:  "Arabic",
	domain.FieldEnglish: "English",
	domain.FieldBangla:  "Bangla",
}

// highlightTags returns the configured highlight markers.
func highlightTags() (pre, post string) {
	pre, post = services.DefaultPreTag, services.DefaultPostTag
	if appConfig == nil {
		return pre, post
	}
	if appConfig.Search.PreTag != "" {
		pre = appConfig.Search.PreTag
	}
	if appConfig.Search.PostTag != "" {
		post = appConfig.Search.PostTag
	}
	return pre, post
}

// renderHighlight replaces pre/post marked spans in fragment with style.
// Unterminated markers are left as text.
func renderHighlight(fragment, pre, post string, style lipgloss.Style) string {
	var b strings.Builder
	rest := fragment
	for {
		start := strings.Index(rest, pre)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+len(pre):], post)
		if end < 0 {
			break
		}
		b.WriteString(rest[:start])
		b.WriteString(style.Render(rest[start+len(pre) : start+len(pre)+end]))
		rest = rest[start+len(pre)+end+len(post):]
	}
	b.WriteString(rest)
	return b.String()
}

// printJSON writes v as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// printVerse writes a verse reference and its three texts.
func printVerse(cmd *cobra.Command, v domain.Verse, highlights map[domain.TextField]string) {
	pre, post := highlightTags()
	for _, f := range domain.TextFields() {
		text := v.Text(f)
		if frag, ok := highlights[f]; ok {
			text = renderHighlight(frag, pre, post, styles.Highlight)
		}
		if text == "" {
			continue
		}
		cmd.Printf("      %s %s\n", styles.Muted.Render(fieldLabels[f]+":"), text)
	}
}

// verseRef formats the sura:verse reference.
func verseRef(v domain.Verse) string {
	return fmt.Sprintf("%d:%d", v.SuraNo, v.VerseNo)
}
