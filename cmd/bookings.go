package cmd

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"studio-booking-cli/store"
)

func newBookingsCmd(env *environment) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List your bookings",
		Long: `List the bookings of the signed-in account. Without a session, or with
--local, list the tickets booked from this device.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := env.session()
			token, err := session.IdentityToken(env.now())
			if local || err != nil {
				return printRecentBookings(env)
			}

			bookings, err := env.client.MyBookings(cmd.Context(), token)
			if err != nil {
				return err
			}
			names := map[int64]string{}
			if studios, err := env.listStudios(cmd.Context(), true); err == nil {
				for _, s := range studios {
					names[s.ID] = s.Name
				}
			}

			t := newTable(env.out)
			t.SetTitle("Bookings of " + session.DisplayName())
			t.AppendHeader(table.Row{"Code", "Studio", "Seats", "Type", "Status", "Booked"})
			for _, b := range bookings {
				studio := names[b.StudioID]
				if studio == "" {
					studio = fmt.Sprintf("Studio #%d", b.StudioID)
				}
				t.AppendRow(table.Row{b.Code, studio, formatIDs(b.SeatIDs), b.Type, b.Status, b.CreatedAt.Local().Format("2006-01-02 15:04")})
			}
			if len(bookings) == 0 {
				t.AppendFooter(table.Row{"No bookings yet"})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "show the tickets booked from this device")
	return cmd
}

func printRecentBookings(env *environment) error {
	recent, err := store.LoadRecentBookings()
	if err != nil {
		return err
	}
	t := newTable(env.out)
	t.SetTitle("Booked from this device")
	t.AppendHeader(table.Row{"Code", "Studio", "Seats", "Type", "Status", "Booked"})
	for _, r := range recent {
		booked := ""
		if !r.CreatedAt.IsZero() {
			booked = r.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		t.AppendRow(table.Row{r.Code, r.StudioName, strings.Join(r.Seats, ", "), r.Type, r.Status, booked})
	}
	if len(recent) == 0 {
		t.AppendFooter(table.Row{"No bookings yet"})
	}
	t.Render()
	return nil
}
