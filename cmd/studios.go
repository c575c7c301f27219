package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"studio-booking-cli/model"
	"studio-booking-cli/service"
	"studio-booking-cli/store"
)

func newStudiosCmd(env *environment) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "studios",
		Short: "List studios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			studios, err := env.listStudios(cmd.Context(), !refresh)
			if err != nil {
				return err
			}
			hidden, err := store.LoadHiddenStudios()
			if err != nil {
				env.log.WithError(err).Warn("hidden studios unreadable")
			}

			t := newTable(env.out)
			t.AppendHeader(table.Row{"ID", "Studio", "Seats", ""})
			for _, studio := range studios {
				note := ""
				if hidden[studio.ID] {
					note = "hidden"
				}
				t.AppendRow(table.Row{studio.ID, studio.Name, studio.TotalSeats, note})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore the cached studio list")
	return cmd
}

func newSeatsCmd(env *environment) *cobra.Command {
	var freeOnly bool

	cmd := &cobra.Command{
		Use:   "seats <studio-id>",
		Short: "Show the seats of a studio and whether they are free",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			studioID, err := parseStudioID(args[0])
			if err != nil {
				return err
			}
			seats, err := env.client.ListSeats(cmd.Context(), studioID)
			if err != nil {
				return err
			}

			rowConfigAutoMerge := table.RowConfig{AutoMerge: true}
			t := newTable(env.out)
			t.AppendHeader(table.Row{"Row", "Seat", "ID", "Status"})
			t.SetColumnConfigs([]table.ColumnConfig{
				{Number: 1, AutoMerge: true},
			})

			available := 0
			for _, row := range service.GroupSeatsByRow(seats) {
				var items []table.Row
				for _, seat := range row.Seats {
					status := "taken"
					if seat.Available {
						status = "free"
						available++
					} else if freeOnly {
						continue
					}
					items = append(items, table.Row{row.Row, seat.Label, seat.ID, status})
				}
				t.AppendRows(items, rowConfigAutoMerge)
			}
			t.AppendFooter(table.Row{"", "", "Available", fmt.Sprintf("%d / %d", available, len(seats))})
			t.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&freeOnly, "free", false, "only list free seats")
	return cmd
}

// listStudios reads the studio list, using the local cache when it is fresh.
func (env *environment) listStudios(ctx context.Context, useCache bool) ([]model.Studio, error) {
	baseURL := env.client.BaseURL()
	if useCache {
		if cached, fresh, err := store.LoadStudioCache(baseURL); err == nil && fresh && len(cached) > 0 {
			return cached, nil
		}
	}
	studios, err := env.client.ListStudios(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.SaveStudioCache(baseURL, studios); err != nil {
		env.log.WithError(err).Debug("studio cache not saved")
	}
	return studios, nil
}

func parseStudioID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &service.ValidationError{Field: "studio", Message: fmt.Sprintf("studio id must be a positive number, got %q", raw)}
	}
	return id, nil
}
