package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"tickteer/internal/config"
	"tickteer/internal/source"
	"tickteer/internal/ticket"
)

func runList(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, asJSON bool) error {
	src := source.NewBeads(cfg.Source.Binary, cfg.Source.Args,
		source.WithLogger(ctx.consoleLogger(cmd.ErrOrStderr())))
	tickets, err := src.Ready(cmd.Context())
	if err != nil {
		return err
	}
	sorted := ticket.SortByPriority(tickets)

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), sorted)
	}
	if len(sorted) == 0 {
		fmt.Fprintln(out, "No ready tickets found!")
		return nil
	}

	fmt.Fprintf(out, "Found %d ready ticket(s) sorted by priority:\n\n", len(sorted))
	if isTerminal(out) {
		rows := make([][]string, 0, len(sorted))
		for i, tk := range sorted {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				tk.ID,
				fmt.Sprintf("%s (%d)", tk.PriorityLabel(), tk.Priority),
				tk.TypeLabel(),
				tk.Status,
				tk.Title,
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"#", "ID", "Priority", "Type", "Status", "Title"},
			rows,
			[]columnAlignment{alignRight},
		))
		return nil
	}
	for i, tk := range sorted {
		writeTicket(out, i+1, tk)
	}
	return nil
}

func writeTicket(w io.Writer, n int, tk ticket.Ticket) {
	fmt.Fprintf(w, "%d. %s\n", n, tk.ID)
	fmt.Fprintf(w, "   Title: %s\n", tk.Title)
	fmt.Fprintf(w, "   Priority: %s (%d)\n", tk.PriorityLabel(), tk.Priority)
	fmt.Fprintf(w, "   Type: %s\n", tk.TypeLabel())
	fmt.Fprintf(w, "   Status: %s\n", tk.Status)
	if tk.CreatedBy != "" {
		fmt.Fprintf(w, "   Created by: %s\n", tk.CreatedBy)
	}
	fmt.Fprintln(w)
}
