package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/machineconfig/internal/session"
)

const minPaneWidth = 30

func (a *App) View() string {
	if a.notice != "" {
		return a.viewNotice()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Machine Configuration"))
	b.WriteString("\n\n")
	b.WriteString(a.viewMachines())
	b.WriteString("\n")
	b.WriteString(a.viewProject())
	b.WriteString("\n\n")
	b.WriteString(a.viewPanes())
	b.WriteString("\n")
	b.WriteString(a.viewCompleted())
	b.WriteString("\n")
	b.WriteString(a.viewStatus())
	b.WriteString("\n")
	b.WriteString(a.help.View(a.keys))
	return b.String()
}

func (a *App) viewNotice() string {
	box := noticeStyle.Render(a.notice + "\n\n" + dimStyle.Render("press enter to dismiss"))
	out := "\n" + box + "\n\n" + a.help.View(a.noticeKeys)
	if a.width > 0 {
		return lipgloss.PlaceHorizontal(a.width, lipgloss.Center, out)
	}
	return out
}

func (a *App) viewMachines() string {
	active := a.session.ActiveKeyword()
	cards := make([]string, 0, len(a.session.Catalog().Keywords))
	for i, k := range a.session.Catalog().Keywords {
		label := fmt.Sprintf("%d %s", i+1, k)
		if k == active {
			cards = append(cards, activeCardStyle.Render(label))
		} else {
			cards = append(cards, cardStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (a *App) viewProject() string {
	label := labelStyle.Render("Project number: ")
	if a.focus == focusProject {
		label = cursorStyle.Render("Project number: ")
	}
	return label + a.project.View()
}

func (a *App) paneWidth() int {
	if a.width <= 0 {
		return 40
	}
	w := a.width/2 - 4
	if w < minPaneWidth {
		w = minPaneWidth
	}
	return w
}

func (a *App) viewPanes() string {
	width := a.paneWidth()
	left := paneStyle
	if a.focus == focusItems {
		left = focusedPaneStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		left.Width(width).Render(a.viewItems()),
		paneStyle.Width(width).Render(a.viewSelected()),
	)
}

func (a *App) viewItems() string {
	items := a.session.ActiveItems()
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s items", a.session.ActiveKeyword())))
	b.WriteString("\n")
	if a.session.Pending() {
		b.WriteString(dimStyle.Render("loading..."))
		b.WriteString("\n")
	}
	if len(items) == 0 {
		b.WriteString(dimStyle.Render("no items"))
		return b.String()
	}
	share := session.ItemShare(len(items))
	for i, it := range items {
		cursor := "  "
		if i == a.itemCursor && a.focus == focusItems {
			cursor = cursorStyle.Render("> ")
		}
		box := "[ ] "
		text := it.Text
		if it.Selected {
			box = "[x] "
			text = selectedStyle.Render(text)
		}
		line := cursor + box + text + dimStyle.Render(fmt.Sprintf(" (Count: 1/%d - %s)", len(items), share))
		if it.HasSizeOption {
			size := string(it.SelectedSize)
			if size == "" {
				size = "size?"
			}
			line += " " + sizeStyle.Render("["+size+"]")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *App) viewSelected() string {
	selected := a.session.SelectedActiveItems()
	var b strings.Builder
	b.WriteString(headerStyle.Render("Selected"))
	b.WriteString("\n")
	if len(selected) == 0 {
		b.WriteString(dimStyle.Render("nothing selected"))
		b.WriteString("\n")
	}
	for _, it := range selected {
		b.WriteString("• " + session.ItemText(it))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(buttonStyle.Render("c Complete Item"))
	return b.String()
}

func (a *App) viewCompleted() string {
	configs := a.session.CompletedConfigurations()
	if len(configs) == 0 {
		return dimStyle.Render("No completed configurations.")
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Completed (%d)", len(configs))))
	b.WriteString("\n")
	for i, c := range configs {
		marker := "▸ "
		if c.Expanded {
			marker = "▾ "
		}
		label := c.Label()
		if a.focus == focusAccordion && i == a.configCursor {
			label = cursorStyle.Render(label)
		}
		b.WriteString(marker + label)
		b.WriteString("\n")
		if !c.Expanded {
			continue
		}
		for _, it := range c.Items {
			b.WriteString("    " + session.ItemText(it))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *App) viewStatus() string {
	if a.status == "" {
		return ""
	}
	if a.statusIsErr {
		return errorStyle.Render(a.status)
	}
	return statusStyle.Render(a.status)
}
