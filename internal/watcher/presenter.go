package watcher

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Presenter shows the scene and user-facing errors.
type Presenter interface {
	Present(scene *Scene)
	Report(err error)
}

type terminalStyles struct {
	title, label, value, overlay, err, empty lipgloss.Style
	card                                     lipgloss.Style
}

func newTerminalStyles() terminalStyles {
	return terminalStyles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF79C6")),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F8F8F2")).Width(20),
		value:   lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B")),
		overlay: lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4")),
		err:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5555")),
		empty:   lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#6272A4")),
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD93F9")).
			Padding(0, 1),
	}
}

// TerminalPresenter writes each scene as a row of face cards followed by
// the overlay positions.
type TerminalPresenter struct {
	mu     sync.Mutex
	out    io.Writer
	styles terminalStyles
}

func NewTerminalPresenter(out io.Writer) *TerminalPresenter {
	return &TerminalPresenter{out: out, styles: newTerminalStyles()}
}

func (p *TerminalPresenter) Present(scene *Scene) {
	p.mu.Lock()
	defer p.mu.Unlock()

	faces := scene.Faces()
	if len(faces) == 0 {
		fmt.Fprintln(p.out, p.styles.empty.Render("No faces detected"))
		return
	}

	cards := make([]string, 0, len(faces))
	for _, face := range faces {
		lines := []string{p.styles.title.Render(face.Title)}
		for _, item := range face.Items {
			lines = append(lines, p.styles.label.Render(item.Label)+p.styles.value.Render(item.Value))
		}
		cards = append(cards, p.styles.card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	}
	fmt.Fprintln(p.out, lipgloss.JoinHorizontal(lipgloss.Top, cards...))

	var overlay strings.Builder
	for _, element := range scene.Overlay() {
		fmt.Fprintf(&overlay, "%-8s %-12s %s\n", element.Kind, element.Label, element.Style())
	}
	fmt.Fprint(p.out, p.styles.overlay.Render(strings.TrimRight(overlay.String(), "\n")), "\n")
}

func (p *TerminalPresenter) Report(err error) {
	if err == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var apiErr *APIError
	message := err.Error()
	if errors.As(err, &apiErr) {
		message = fmt.Sprintf("Failed to analyze image: %d", apiErr.StatusCode)
		if apiErr.Message != "" {
			message += " (" + apiErr.Message + ")"
		}
	}

	fmt.Fprintln(p.out, p.styles.err.Render("Error: "+message))
}
