// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"taskdash/internal/service"
	"taskdash/internal/table"
)

const (
	// OverdueMark flags rows whose deadline has passed.
	OverdueMark = "!"

	// NoTasks is printed instead of an empty task table.
	NoTasks = "no tasks"

	// NoTeams is printed instead of an empty team table.
	NoTeams = "no teams"
)

// newTable returns a borderless, left-aligned table.
func newTable(w io.Writer, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetBorder(false)
	t.SetHeaderLine(false)
	t.SetColumnSeparator("")
	t.SetCenterSeparator("")
	t.SetRowSeparator("")
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	return t
}

// FormatTaskTable renders task rows. Overdue rows carry OverdueMark in the
// first column.
func FormatTaskTable(w io.Writer, rows []table.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, NoTasks)
		return
	}

	header := []string{"", "ID"}
	for _, c := range table.Columns {
		header = append(header, c.String())
	}
	t := newTable(w, header)
	for _, r := range rows {
		mark := ""
		if r.Overdue {
			mark = OverdueMark
		}
		line := []string{mark, strconv.FormatInt(r.Task.ID, 10)}
		for _, c := range table.Columns {
			cell := r.Cell(c)
			if c == table.ColTitle {
				cell = normalizeTitle(cell)
			} else {
				cell = singleLine(cell)
			}
			line = append(line, cell)
		}
		t.Append(line)
	}
	t.Render()
}

// FormatTask writes the detail view of one task.
func FormatTask(w io.Writer, task service.Task, now time.Time, loc *time.Location) {
	row := table.Render(task, now, loc)

	deadline := row.Cell(table.ColDeadline)
	if row.Overdue {
		deadline += " (overdue)"
	}
	subtasks := table.Placeholder
	if len(task.SubtaskIDs) > 0 {
		ids := make([]string, len(task.SubtaskIDs))
		for i, id := range task.SubtaskIDs {
			ids[i] = strconv.FormatInt(id, 10)
		}
		subtasks = strings.Join(ids, ", ")
	}

	fmt.Fprintf(w, "%-12s %d\n", "ID:", task.ID)
	fmt.Fprintf(w, "%-12s %s\n", "Title:", normalizeTitle(task.Title))
	fmt.Fprintf(w, "%-12s %s\n", "Description:", row.Cell(table.ColDescription))
	fmt.Fprintf(w, "%-12s %s\n", "Deadline:", deadline)
	fmt.Fprintf(w, "%-12s %s\n", "Priority:", row.Cell(table.ColPriority))
	fmt.Fprintf(w, "%-12s %s\n", "Subtasks:", subtasks)
}

// FormatTeams renders the team list.
func FormatTeams(w io.Writer, teams []service.Team) {
	if len(teams) == 0 {
		fmt.Fprintln(w, NoTeams)
		return
	}
	t := newTable(w, []string{"ID", "Name"})
	for _, team := range teams {
		t.Append([]string{team.ID, normalizeTitle(team.Name())})
	}
	t.Render()
}

// FormatTeam writes a team as indented JSON, keeping every field the API returned.
func FormatTeam(w io.Writer, team service.Team) error {
	data, err := json.MarshalIndent(team, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = singleLine(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
