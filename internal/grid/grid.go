// Package grid projects a month snapshot into a renderable table. The
// projection is pure: no I/O, no display surface, so every rule (colors,
// weekend styling, edit permission, highlight ranges) is testable on values.
package grid

import (
	"fmt"

	"github.com/girrex/roster-web/internal/models"
)

type Orientation string

const (
	// AgentRows is the default: one row per agent, one column per day.
	AgentRows Orientation = "agents"
	// DayRows transposes the grid: one row per day, one column per agent.
	DayRows Orientation = "days"
)

type Options struct {
	// Detailed includes the afternoon assignment in each cell.
	Detailed bool
	// HideWeekends drops Saturday and Sunday from the projection.
	HideWeekends bool
}

type HeaderCell struct {
	Label   string `json:"label"`
	Weekend bool   `json:"weekend,omitempty"`
}

type Cell struct {
	AgentID     int64  `json:"agent_id"`
	DateISO     string `json:"date_iso"`
	Morning     string `json:"morning"`
	Afternoon   string `json:"afternoon,omitempty"`
	Color       string `json:"color,omitempty"`
	Weekend     bool   `json:"weekend,omitempty"`
	Editable    bool   `json:"editable,omitempty"`
	Highlighted bool   `json:"highlighted,omitempty"`
	HasComment  bool   `json:"has_comment,omitempty"`
	Comment     string `json:"comment,omitempty"`
}

type Row struct {
	Label   string `json:"label"`
	Weekend bool   `json:"weekend,omitempty"`
	Cells   []Cell `json:"cells"`
}

type Grid struct {
	Orientation Orientation  `json:"orientation"`
	Header      []HeaderCell `json:"header"`
	Rows        []Row        `json:"rows"`
}

func Render(snap models.MonthSnapshot, orientation Orientation, opts Options, highlight models.Highlight) Grid {
	days := snap.Days
	if opts.HideWeekends {
		kept := make([]models.Day, 0, len(days))
		for _, d := range days {
			if !d.Weekend() {
				kept = append(kept, d)
			}
		}
		days = kept
	}

	g := Grid{Orientation: orientation}

	if orientation == DayRows {
		g.Header = append(g.Header, HeaderCell{Label: "Date"})
		for _, a := range snap.Agents {
			g.Header = append(g.Header, HeaderCell{Label: a.DisplayCode()})
		}
		for _, d := range days {
			row := Row{
				Label:   fmt.Sprintf("%s %d", d.ShortLabel, d.Num),
				Weekend: d.Weekend(),
			}
			for _, a := range snap.Agents {
				row.Cells = append(row.Cells, buildCell(snap, a, d, opts, highlight))
			}
			g.Rows = append(g.Rows, row)
		}
		return g
	}

	g.Header = append(g.Header, HeaderCell{Label: "Agent"})
	for _, d := range days {
		g.Header = append(g.Header, HeaderCell{
			Label:   fmt.Sprintf("%s %d", d.ShortLabel, d.Num),
			Weekend: d.Weekend(),
		})
	}
	for _, a := range snap.Agents {
		row := Row{Label: a.DisplayCode()}
		for _, d := range days {
			row.Cells = append(row.Cells, buildCell(snap, a, d, opts, highlight))
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

// Editable reports whether a cell may enter edit mode: the page-level
// permission must be granted, and a cell whose morning position is in a
// non-working category stays read-only even on an editable page.
func Editable(snap models.MonthSnapshot, agentID int64, dateISO string) bool {
	if !snap.CanEdit {
		return false
	}
	if tour, ok := snap.Tour(agentID, dateISO); ok && tour.MorningID != nil {
		if pos, ok := snap.Position(*tour.MorningID); ok && pos.Category == models.CategoryAbsent {
			return false
		}
	}
	return true
}

// buildCell resolves position references against the current position list,
// never against the names stored on the tour: a dangling reference after a
// position deletion must render blank, not stale.
func buildCell(snap models.MonthSnapshot, agent models.Agent, day models.Day, opts Options, highlight models.Highlight) Cell {
	cell := Cell{
		AgentID: agent.ID,
		DateISO: day.DateISO,
		Weekend: day.Weekend(),
	}

	tour, hasTour := snap.Tour(agent.ID, day.DateISO)
	if hasTour {
		if tour.MorningID != nil {
			if pos, ok := snap.Position(*tour.MorningID); ok {
				cell.Morning = pos.Name
				if pos.HasColor() {
					cell.Color = pos.Color
				}
			}
		}
		if opts.Detailed && tour.AfternoonID != nil {
			if pos, ok := snap.Position(*tour.AfternoonID); ok {
				cell.Afternoon = pos.Name
			}
		}
		cell.Comment = tour.Comment
		cell.HasComment = tour.Comment != ""
	}

	cell.Editable = Editable(snap, agent.ID, day.DateISO)
	cell.Highlighted = highlight.Contains(agent.ID, day.DateISO)
	return cell
}
