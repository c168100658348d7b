package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"progresshub/internal/domain"
)

type printer struct {
	format string
	w      io.Writer
}

func (p *printer) json() bool { return p.format == "json" }

func (p *printer) emit(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) table(header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func (p *printer) heading(title string) {
	if !p.json() {
		fmt.Fprintf(p.w, "== %s ==\n", title)
	}
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) invitations(items []domain.TeamInvitation) error {
	if p.json() {
		return p.emit(items)
	}
	if len(items) == 0 {
		p.line("(none)")
		return nil
	}
	rows := make([][]string, 0, len(items))
	for _, inv := range items {
		rows = append(rows, []string{inv.ID, inv.Email, inv.Role, inv.Status, date(inv.UpdatedAt)})
	}
	return p.table([]string{"ID", "EMAIL", "ROLE", "STATUS", "UPDATED"}, rows)
}

func (p *printer) memberships(items []domain.TeamMembership) error {
	if p.json() {
		return p.emit(items)
	}
	if len(items) == 0 {
		p.line("(none)")
		return nil
	}
	rows := make([][]string, 0, len(items))
	for _, m := range items {
		rows = append(rows, []string{m.TeamID, m.Email, m.Role, date(m.JoinedAt)})
	}
	return p.table([]string{"TEAM", "EMAIL", "ROLE", "JOINED"}, rows)
}

func (p *printer) projects(items []domain.Project) error {
	if p.json() {
		return p.emit(items)
	}
	if len(items) == 0 {
		p.line("(none)")
		return nil
	}
	rows := make([][]string, 0, len(items))
	for _, pr := range items {
		due := "-"
		if pr.DueDate != nil {
			due = date(*pr.DueDate)
		}
		rows = append(rows, []string{pr.ID, pr.Name, fmt.Sprintf("%d%%", pr.Progress), due})
	}
	return p.table([]string{"ID", "NAME", "PROGRESS", "DUE"}, rows)
}

func (p *printer) documents(items []domain.Document) error {
	if p.json() {
		return p.emit(items)
	}
	if len(items) == 0 {
		p.line("(none)")
		return nil
	}
	rows := make([][]string, 0, len(items))
	for _, d := range items {
		rows = append(rows, []string{d.ID, d.Title, d.Type, d.ProjectID, date(d.UpdatedAt)})
	}
	return p.table([]string{"ID", "TITLE", "TYPE", "PROJECT", "UPDATED"}, rows)
}

func (p *printer) messages(items []domain.Message) error {
	if p.json() {
		return p.emit(items)
	}
	if len(items) == 0 {
		p.line("(no messages)")
		return nil
	}
	for _, m := range items {
		p.line("[%s] %s: %s", m.CreatedAt.Format("2006-01-02 15:04"), m.UserID, m.Content)
	}
	return nil
}

func (p *printer) activities(items []domain.Activity) error {
	if p.json() {
		return p.emit(items)
	}
	if len(items) == 0 {
		p.line("(no recent activity)")
		return nil
	}
	for _, a := range items {
		p.line("%s  %s", a.Timestamp.Format("2006-01-02 15:04"), a.Action)
	}
	return nil
}

func (p *printer) board(b domain.TaskBoard) error {
	if p.json() {
		return p.emit(b)
	}
	columns := []struct {
		title string
		tasks []domain.Task
	}{
		{"To Do", b.Todo},
		{"In Progress", b.InProgress},
		{"Done", b.Done},
	}
	for _, col := range columns {
		p.heading(col.title)
		if len(col.tasks) == 0 {
			p.line("No tasks")
			continue
		}
		for _, t := range col.tasks {
			if t.Assignee != "" {
				p.line("%s  %s (%s)", t.ID, t.Title, t.Assignee)
			} else {
				p.line("%s  %s", t.ID, t.Title)
			}
		}
	}
	p.line("Tasks: %d/%d", b.Completed, b.Total)
	return nil
}

func (p *printer) summary(s domain.ReportSummary) error {
	if p.json() {
		return p.emit(s)
	}
	p.line("Projects:          %d", s.ProjectCount)
	p.line("Average progress:  %.1f%%", s.AverageProgress)
	p.line("Activity (7 days): %d", s.ActivitiesLast7d)
	types := make([]string, 0, len(s.DocumentsByType))
	for typ := range s.DocumentsByType {
		types = append(types, typ)
	}
	sort.Strings(types)
	for _, typ := range types {
		p.line("Documents (%s): %d", typ, s.DocumentsByType[typ])
	}
	return nil
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
