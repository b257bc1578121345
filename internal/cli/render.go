package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/iamarketings/Operator/internal/listing"
	"github.com/iamarketings/Operator/internal/models"
	"github.com/iamarketings/Operator/internal/store"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(true)
	table.SetRowLine(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// statusText colours a status: green when usable, red when down.
func statusText(s string) string {
	switch s {
	case "Registered", "Logged In":
		return color.GreenString(s)
	case "Unreachable", "Unavailable":
		return color.RedString(s)
	case "In Use", "Ringing":
		return color.YellowString(s)
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func renderExtensions(w io.Writer, page listing.Page[models.Extension]) {
	table := newTable(w, "ID", "Number", "Name", "Protocol", "Status", "IP", "User Agent", "VM")
	for _, e := range page.Items {
		table.Append([]string{e.ID, e.Number, e.Name, string(e.Protocol), statusText(string(e.Status)), e.IPAddress, e.UserAgent, yesNo(e.Voicemail.Enabled)})
	}
	table.Render()
	fmt.Fprintf(w, "\nPage %d/%d, %d extensions\n", page.Page, max(page.TotalPages, 1), page.Total)
}

func renderTrunks(w io.Writer, trunks []models.Trunk) {
	table := newTable(w, "ID", "Name", "Type", "Host", "Status")
	for _, t := range trunks {
		table.Append([]string{t.ID, t.Name, string(t.Type), t.Host, statusText(string(t.Status))})
	}
	table.Render()
	fmt.Fprintf(w, "\nTotal: %d trunks\n", len(trunks))
}

func renderQueues(w io.Writer, queues []models.Queue) {
	table := newTable(w, "ID", "Name", "Strategy", "Members", "Logged In")
	for _, q := range queues {
		table.Append([]string{q.ID, q.Name, string(q.Strategy), strconv.Itoa(len(q.Members)), strconv.Itoa(q.LoggedInCount())})
	}
	table.Render()
	fmt.Fprintf(w, "\nTotal: %d queues\n", len(queues))
}

func renderCDRs(w io.Writer, page listing.Page[models.CDR]) {
	table := newTable(w, "Date", "Caller ID", "Source", "Destination", "Duration", "Billed", "Disposition", "Recording")
	for _, c := range page.Items {
		disposition := string(c.Disposition)
		if c.Disposition == models.DispositionAnswered {
			disposition = color.GreenString(disposition)
		}
		table.Append([]string{
			c.CallDate.Local().Format("2006-01-02 15:04:05"),
			c.CallerID,
			c.Src,
			c.Dst,
			strconv.Itoa(c.Duration) + "s",
			strconv.Itoa(c.BillableSeconds) + "s",
			disposition,
			yesNo(c.RecordingFile != ""),
		})
	}
	table.Render()
	fmt.Fprintf(w, "\nPage %d/%d, %d records\n", page.Page, max(page.TotalPages, 1), page.Total)
}

func renderCalls(w io.Writer, calls []models.Call) {
	table := newTable(w, "ID", "Caller ID", "Destination", "Duration", "Channel", "State")
	for _, c := range calls {
		state := string(c.State)
		if c.State == models.CallUp {
			state = color.GreenString(state)
		}
		table.Append([]string{c.ID, c.CallerID, c.Destination, strconv.Itoa(c.Duration) + "s", c.Channel, state})
	}
	table.Render()
}

// reportResult prints what a mutation did and where it was applied.
func reportResult[T any](w io.Writer, action, id string, res store.Result[T]) {
	if res.Fallback() {
		color.New(color.FgYellow).Fprintf(w, "~ %s %s applied locally (backend: %v)\n", action, id, res.Err)
		return
	}
	color.New(color.FgGreen).Fprintf(w, "✓ %s %s applied on backend\n", action, id)
}
