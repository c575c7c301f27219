package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"studio-booking-cli/booking"
	"studio-booking-cli/model"
	"studio-booking-cli/qr"
	"studio-booking-cli/selection"
	"studio-booking-cli/service"
	"studio-booking-cli/store"
)

var errCashierOnly = errors.New("walk-in sales need a cashier or admin account, run login first")

type bookOptions struct {
	studioID int64
	seats    []string
	offline  bool
	name     string
	email    string
	noQR     bool
	pngPath  string
}

func newBookCmd(env *environment) *cobra.Command {
	var opts bookOptions

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book seats in a studio",
		Long: `Book seats by label (A1) or id (#12). Online bookings belong to the
signed-in account. Cashiers can sell to walk-in customers with --offline.`,
		Example: `  studio-booking book --studio 1 --seats A1,A2
  studio-booking book --studio 2 --seats C5 --offline --name "Rina" --email rina@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBook(cmd, env, opts)
		},
	}
	cmd.Flags().Int64Var(&opts.studioID, "studio", 0, "studio id")
	cmd.Flags().StringSliceVar(&opts.seats, "seats", nil, "seat labels or ids, comma separated")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "walk-in sale (cashier or admin only)")
	cmd.Flags().StringVar(&opts.name, "name", "", "walk-in customer name")
	cmd.Flags().StringVar(&opts.email, "email", "", "walk-in customer email")
	cmd.Flags().BoolVar(&opts.noQR, "no-qr", false, "do not draw the ticket QR code")
	cmd.Flags().StringVar(&opts.pngPath, "qr-png", "", "also write the ticket QR code to this PNG file")
	_ = cmd.MarkFlagRequired("studio")
	_ = cmd.MarkFlagRequired("seats")
	return cmd
}

func runBook(cmd *cobra.Command, env *environment, opts bookOptions) error {
	ctx := cmd.Context()
	if opts.studioID <= 0 {
		return &service.ValidationError{Field: "studio", Message: "--studio must be a positive id"}
	}

	session := env.session()
	var token string
	if opts.offline {
		if !session.CanSellOffline() {
			return errCashierOnly
		}
	} else {
		var err error
		if token, err = session.IdentityToken(env.now()); err != nil {
			return err
		}
	}

	inventory, err := env.client.ListSeats(ctx, opts.studioID)
	if err != nil {
		return fmt.Errorf("read seats: %w", err)
	}
	seatIDs, err := resolveSeats(inventory, opts.seats)
	if err != nil {
		return err
	}

	checkout := selection.NewCheckout(selection.New())
	checkout.State().SetStudio(opts.studioID)
	for _, id := range seatIDs {
		checkout.State().ToggleSeat(id)
	}
	snap, err := checkout.Begin()
	if err != nil {
		return err
	}

	submitter := booking.NewSubmitter(env.client, env.log)
	var result booking.Result
	if opts.offline {
		var name, email string
		if name, email, err = env.customerDetails(opts.name, opts.email); err == nil {
			result, err = submitter.SubmitOffline(ctx, snap, name, email)
		}
	} else {
		result, err = submitter.SubmitOnline(ctx, snap, token)
	}
	outcome := checkout.Finish(snap, err)
	if err != nil {
		if len(outcome.Dropped) > 0 {
			fmt.Fprintf(env.errOut, "Already taken: %s\n", strings.Join(seatLabels(inventory, outcome.Dropped), ", "))
		}
		return err
	}

	studioName := studioNameFromSeats(inventory, opts.studioID)
	labels := seatLabels(inventory, result.Booking.SeatIDs)
	if err := store.RememberBooking(store.RecentBooking{
		Code:       result.Booking.Code,
		StudioID:   result.Booking.StudioID,
		StudioName: studioName,
		Seats:      labels,
		Type:       result.Booking.Type,
		Status:     result.Booking.Status,
		CreatedAt:  createdAt(result.Booking, env),
	}); err != nil {
		env.log.WithError(err).Warn("ticket history not saved")
	}

	return printTicket(env, result, studioName, labels, opts)
}

// customerDetails prompts for walk-in fields missing from the flags.
func (env *environment) customerDetails(name string, email string) (string, string, error) {
	var err error
	if strings.TrimSpace(name) == "" {
		if name, err = env.prompt("Customer name", 0, requireText("name")); err != nil {
			return "", "", err
		}
	}
	if strings.TrimSpace(email) == "" {
		if email, err = env.prompt("Customer email", 0, requireText("email")); err != nil {
			return "", "", err
		}
	}
	return name, email, nil
}

// resolveSeats maps seat labels ("A1", case-insensitive) or ids ("12",
// "#12") to seat ids of the studio. Duplicates collapse to one seat.
func resolveSeats(inventory []model.Seat, refs []string) ([]int64, error) {
	byLabel := make(map[string]int64, len(inventory))
	byID := service.SeatIndex(inventory)
	for _, seat := range inventory {
		byLabel[strings.ToUpper(seat.Label)] = seat.ID
	}

	seen := map[int64]bool{}
	var ids []int64
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		id, ok := byLabel[strings.ToUpper(ref)]
		if !ok {
			if n, err := strconv.ParseInt(strings.TrimPrefix(ref, "#"), 10, 64); err == nil {
				if _, exists := byID[n]; exists {
					id, ok = n, true
				}
			}
		}
		if !ok {
			return nil, &service.ValidationError{Field: "seats", Message: fmt.Sprintf("seat %q is not in this studio", ref)}
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, &service.ValidationError{Field: "seats", Message: "select at least one seat"}
	}
	return ids, nil
}

func seatLabels(inventory []model.Seat, ids []int64) []string {
	index := service.SeatIndex(inventory)
	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		if seat, ok := index[id]; ok && seat.Label != "" {
			labels = append(labels, seat.Label)
			continue
		}
		labels = append(labels, fmt.Sprintf("#%d", id))
	}
	return labels
}

func studioNameFromSeats(inventory []model.Seat, studioID int64) string {
	for _, seat := range inventory {
		if seat.StudioName != "" {
			return seat.StudioName
		}
	}
	return fmt.Sprintf("Studio #%d", studioID)
}

func createdAt(b model.Booking, env *environment) time.Time {
	if b.CreatedAt.IsZero() {
		return env.now()
	}
	return b.CreatedAt
}

func printTicket(env *environment, result booking.Result, studioName string, labels []string, opts bookOptions) error {
	b := result.Booking
	t := newTable(env.out)
	t.SetTitle("Booking confirmed")
	t.AppendRows([]table.Row{
		{"Code", b.Code},
		{"Studio", studioName},
		{"Seats", strings.Join(labels, ", ")},
		{"Type", b.Type},
		{"Status", b.Status},
	})
	if b.UserName != "" {
		t.AppendRow(table.Row{"Customer", b.UserName})
	}
	t.Render()

	if !opts.noQR {
		rendered, err := qr.NewTerminal().Render(result.QRPayload)
		if err != nil {
			env.log.WithError(err).WithField("booking_code", b.Code).Warn("qr render failed")
		} else {
			fmt.Fprintln(env.out)
			fmt.Fprintln(env.out, rendered)
		}
	}
	if opts.pngPath != "" {
		if err := writePNG(opts.pngPath, result.QRPayload); err != nil {
			return err
		}
		env.log.WithFields(logrus.Fields{"booking_code": b.Code, "path": opts.pngPath}).Info("ticket qr written")
		fmt.Fprintf(env.out, "QR code saved to %s\n", opts.pngPath)
	}
	return nil
}

func writePNG(path string, payload string) error {
	png, err := qr.PNG(payload, 256)
	if err != nil {
		return fmt.Errorf("encode qr: %w", err)
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("write qr: %w", err)
	}
	return nil
}
