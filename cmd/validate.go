package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"studio-booking-cli/booking"
	"studio-booking-cli/model"
)

// ErrBookingInvalid makes a failed gate check exit non-zero.
var ErrBookingInvalid = errors.New("booking is not valid")

func newValidateCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <code-or-payload>",
		Short: "Check a booking code at the gate",
		Long: `Check a booking code or the text decoded from a ticket QR code.
Pass "-" to read it from standard input.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.Join(args, " ")
			if input == "-" {
				line, err := readLine(env.in)
				if err != nil {
					return err
				}
				input = line
			}

			result, err := booking.NewValidator(env.client, env.log).Validate(cmd.Context(), input)
			if err != nil {
				return err
			}
			printValidation(env, result)
			if !result.Valid {
				return ErrBookingInvalid
			}
			return nil
		},
	}
}

func printValidation(env *environment, result model.ValidationResult) {
	v := result.Booking
	verdict := "INVALID"
	if result.Valid {
		verdict = "VALID"
	}

	t := newTable(env.out)
	t.SetTitle(verdict)
	t.AppendRow(table.Row{"Code", v.BookingCode})
	if v.StudioID > 0 {
		t.AppendRow(table.Row{"Studio", fmt.Sprintf("#%d", v.StudioID)})
	}
	if len(v.SeatIDs) > 0 {
		t.AppendRow(table.Row{"Seats", formatIDs(v.SeatIDs)})
	}
	if v.CustomerName != "" {
		t.AppendRow(table.Row{"Customer", v.CustomerName})
	}
	if v.BookingType != "" {
		t.AppendRow(table.Row{"Type", v.BookingType})
	}
	if v.Status != "" {
		t.AppendRow(table.Row{"Status", v.Status})
	}
	t.Render()
}

func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("#%d", id)
	}
	return strings.Join(parts, ", ")
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
