package tui

import (
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"studio-booking-cli/auth"
	"studio-booking-cli/backendtest"
	"studio-booking-cli/model"
	"studio-booking-cli/service"
	"studio-booking-cli/store"
)

type testItem struct {
	value string
}

func (t testItem) Title() string       { return t.value }
func (t testItem) Description() string { return "" }
func (t testItem) FilterValue() string { return strings.ToLower(t.value) }

func newFilterModel(items []list.Item) *appModel {
	m := New(Options{}).(appModel)
	m.state = stateSelectStudio
	m.studioList = newList("Select Studio")
	m.studioList.SetItems(items)
	return &m
}

func TestHandleFilterInput_AppendsRunes(t *testing.T) {
	m := newFilterModel([]list.Item{
		testItem{value: "Studio 1"},
		testItem{value: "Premiere"},
	})

	if !m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")}) {
		t.Fatal("expected filter input to be handled")
	}
	if got := m.studioList.FilterValue(); got != "p" {
		t.Fatalf("expected filter value to be %q, got %q", "p", got)
	}

	if !m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}) {
		t.Fatal("expected filter input to be handled")
	}
	if got := m.studioList.FilterValue(); got != "pr" {
		t.Fatalf("expected filter value to be %q, got %q", "pr", got)
	}
}

func TestHandleFilterInput_Backspace(t *testing.T) {
	m := newFilterModel([]list.Item{
		testItem{value: "Studio 1"},
		testItem{value: "Premiere"},
	})

	_ = m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	_ = m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})

	if !m.handleFilterInput(tea.KeyMsg{Type: tea.KeyBackspace}) {
		t.Fatal("expected backspace to be handled")
	}
	if got := m.studioList.FilterValue(); got != "p" {
		t.Fatalf("expected filter value to be %q, got %q", "p", got)
	}
}

func TestHandleFilterInput_IgnoredOutsideLists(t *testing.T) {
	m := newFilterModel(nil)
	m.state = stateSeatMap

	if m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}) {
		t.Fatal("expected seat map keys to bypass the filter")
	}
}

type harness struct {
	t       *testing.T
	backend *backendtest.Server
	client  *service.Client
	model   appModel
}

func setTestConfigDir(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", root)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))
}

func newHarness(t *testing.T, role model.Role) *harness {
	t.Helper()
	setTestConfigDir(t)

	backend := backendtest.New()
	server := httptest.NewServer(backend.Handler())
	t.Cleanup(server.Close)
	backend.AddStudio("Studio 1", "A1", "A2", "A3", "B1", "B2")
	backend.AddStudio("Studio 2", "A1")

	client := service.NewClient(server.URL+backendtest.APIPrefix, server.Client())
	session := &auth.Session{}
	if role != "" {
		user, token, err := backend.AddUser(string(role)+"@example.com", "secret123", "Test "+string(role), role)
		if err != nil {
			t.Fatalf("add user: %v", err)
		}
		session = &auth.Session{User: &user, Token: token}
	}

	h := &harness{t: t, backend: backend, client: client}
	h.model = New(Options{Client: client, Session: session}).(appModel)
	h.update(tea.WindowSizeMsg{Width: 120, Height: 40})
	h.run(h.model.Init())
	if h.model.state != stateSelectStudio {
		t.Fatalf("expected studio list, got state %d (err %v)", h.model.state, h.model.err)
	}
	return h
}

func (h *harness) update(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.model.Update(msg)
	h.model = next.(appModel)
	return cmd
}

// run executes cmd and feeds every resulting message back into the model,
// skipping spinner ticks and cursor blinks.
func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	for _, msg := range collect(cmd) {
		h.run(h.update(msg))
	}
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case nil, spinner.TickMsg, cursor.BlinkMsg, tea.QuitMsg:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func (h *harness) key(k tea.KeyMsg) tea.Cmd {
	h.t.Helper()
	return h.update(k)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (h *harness) openStudio() {
	h.t.Helper()
	h.run(h.key(tea.KeyMsg{Type: tea.KeyEnter}))
	if h.model.state != stateSeatMap {
		h.t.Fatalf("expected seat map, got state %d (err %v)", h.model.state, h.model.err)
	}
}

func TestStudioFlow_TogglesSeatsWithCursor(t *testing.T) {
	h := newHarness(t, model.RoleCustomer)
	h.openStudio()

	if h.model.studio.Name != "Studio 1" || len(h.model.rows) != 2 {
		t.Fatalf("unexpected studio %+v rows %+v", h.model.studio, h.model.rows)
	}

	h.key(tea.KeyMsg{Type: tea.KeySpace})
	h.key(runes("l"))
	h.key(runes("x"))
	h.key(runes("j"))
	h.key(tea.KeyMsg{Type: tea.KeySpace})

	got := h.model.selectedLabels()
	if strings.Join(got, ",") != "A1,A2,B2" {
		t.Fatalf("expected A1,A2,B2 selected, got %v", got)
	}

	h.key(tea.KeyMsg{Type: tea.KeySpace})
	if strings.Join(h.model.selectedLabels(), ",") != "A1,A2" {
		t.Fatalf("expected second toggle to deselect, got %v", h.model.selectedLabels())
	}

	view := h.model.View()
	if !strings.Contains(view, "SCREEN") || !strings.Contains(view, "Selected: A1, A2") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestSubmitOnline_ShowsTicketAndClearsSelection(t *testing.T) {
	h := newHarness(t, model.RoleCustomer)
	h.openStudio()
	h.key(tea.KeyMsg{Type: tea.KeySpace})

	h.run(h.key(tea.KeyMsg{Type: tea.KeyEnter}))

	if h.model.state != stateTicket {
		t.Fatalf("expected ticket, got state %d notice %q err %v", h.model.state, h.model.notice, h.model.err)
	}
	if h.model.ticket.Booking.Code == "" || h.model.ticketQR == "" {
		t.Fatalf("expected booking code and qr, got %+v", h.model.ticket)
	}
	if strings.Join(h.model.ticketSeats, ",") != "A1" {
		t.Fatalf("expected ticket for A1, got %v", h.model.ticketSeats)
	}
	if !h.model.checkout.State().Empty() {
		t.Fatal("expected selection cleared after success")
	}
	if len(h.backend.Bookings()) != 1 {
		t.Fatalf("expected one booking on the server, got %d", len(h.backend.Bookings()))
	}

	history, err := store.LoadRecentBookings()
	if err != nil || len(history) != 1 || history[0].Code != h.model.ticket.Booking.Code {
		t.Fatalf("expected booking in local history, got %+v err %v", history, err)
	}

	h.run(h.key(tea.KeyMsg{Type: tea.KeyEnter}))
	if h.model.state != stateSeatMap {
		t.Fatalf("expected seat map after ticket, got %d", h.model.state)
	}
	if seat, _ := h.model.cursorSeat(); seat.Available {
		t.Fatal("expected booked seat to show as taken after refresh")
	}
}

func TestSubmitOnline_BlockedWhileInFlight(t *testing.T) {
	h := newHarness(t, model.RoleCustomer)
	h.openStudio()
	h.key(tea.KeyMsg{Type: tea.KeySpace})

	pending := h.key(tea.KeyMsg{Type: tea.KeyEnter})
	if h.model.state != stateSubmitting || !h.model.checkout.InFlight() {
		t.Fatalf("expected submission in flight, got state %d", h.model.state)
	}

	next, cmd, _ := h.model.submitOnline()
	if cmd != nil {
		t.Fatal("expected no second request while one is in flight")
	}
	if notice := next.(appModel).notice; !strings.Contains(notice, "already in progress") {
		t.Fatalf("expected in-flight notice, got %q", notice)
	}

	h.run(pending)
	if len(h.backend.Bookings()) != 1 {
		t.Fatalf("expected exactly one booking, got %d", len(h.backend.Bookings()))
	}
}

func TestSubmitOnline_StaleResultIsDiscarded(t *testing.T) {
	h := newHarness(t, model.RoleCustomer)
	h.openStudio()
	h.key(tea.KeyMsg{Type: tea.KeySpace})

	pending := h.key(tea.KeyMsg{Type: tea.KeyEnter})
	h.key(tea.KeyMsg{Type: tea.KeyEsc})
	if h.model.state != stateSelectStudio {
		t.Fatalf("expected studio list after leaving, got %d", h.model.state)
	}

	h.run(pending)

	if h.model.state != stateSelectStudio {
		t.Fatalf("expected stale result to leave the UI alone, got state %d", h.model.state)
	}
	if h.model.ticket.Booking.Code != "" {
		t.Fatalf("expected no ticket, got %+v", h.model.ticket)
	}
	if h.model.checkout.InFlight() {
		t.Fatal("expected in-flight flag released")
	}
}

func TestSubmitOnline_ConflictDropsSeatAndRefreshes(t *testing.T) {
	h := newHarness(t, model.RoleCustomer)
	h.openStudio()
	h.key(tea.KeyMsg{Type: tea.KeySpace})
	h.key(runes("l"))
	h.key(tea.KeyMsg{Type: tea.KeySpace})

	taken, _ := h.model.cursorSeat()
	if err := h.backend.SetSeatAvailable(taken.ID, false); err != nil {
		t.Fatal(err)
	}

	h.run(h.key(tea.KeyMsg{Type: tea.KeyEnter}))

	if h.model.state != stateSeatMap {
		t.Fatalf("expected seat map after conflict, got %d", h.model.state)
	}
	if h.model.checkout.State().Has(taken.ID) {
		t.Fatal("expected conflicting seat dropped from selection")
	}
	if h.model.checkout.State().Len() != 1 {
		t.Fatalf("expected the other seat kept, got %d", h.model.checkout.State().Len())
	}
	if !strings.Contains(h.model.notice, "no longer available") {
		t.Fatalf("expected conflict notice, got %q", h.model.notice)
	}
	if seat, _ := h.model.cursorSeat(); seat.Available {
		t.Fatal("expected refreshed seats to show the conflict seat as taken")
	}
	if len(h.backend.Bookings()) != 0 {
		t.Fatal("expected no booking to be created")
	}
}

func TestSubmitOnline_RetryWaitsForSeatRefresh(t *testing.T) {
	h := newHarness(t, model.RoleCustomer)
	h.openStudio()
	h.key(tea.KeyMsg{Type: tea.KeySpace})
	h.key(runes("l"))
	h.key(tea.KeyMsg{Type: tea.KeySpace})

	taken, _ := h.model.cursorSeat()
	if err := h.backend.SetSeatAvailable(taken.ID, false); err != nil {
		t.Fatal(err)
	}

	var refresh tea.Cmd
	for _, msg := range collect(h.key(tea.KeyMsg{Type: tea.KeyEnter})) {
		if _, ok := msg.(bookingMsg); !ok {
			t.Fatalf("expected only the booking result, got %T", msg)
		}
		refresh = h.update(msg)
	}
	if refresh == nil {
		t.Fatal("expected a seat refresh after the conflict")
	}
	if h.model.state != stateSeatMap || !h.model.refreshPending {
		t.Fatalf("expected seat map waiting for a refresh, got state %d", h.model.state)
	}

	if cmd := h.key(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatal("expected no request before the seats are refreshed")
	}
	if h.model.checkout.InFlight() {
		t.Fatal("expected no submission in flight")
	}
	if h.model.notice != refreshPendingNotice {
		t.Fatalf("expected refresh notice, got %q", h.model.notice)
	}
	if !strings.Contains(h.model.View(), "Refreshing seats") {
		t.Fatalf("expected header to show the pending refresh, got:\n%s", h.model.View())
	}

	h.run(refresh)
	if h.model.refreshPending {
		t.Fatal("expected refresh to clear the pending flag")
	}
	if seat, _ := h.model.cursorSeat(); seat.Available {
		t.Fatal("expected refreshed map to show the seat as taken")
	}

	h.run(h.key(tea.KeyMsg{Type: tea.KeyEnter}))
	if h.model.state != stateTicket {
		t.Fatalf("expected retry to book the remaining seat, got state %d (notice %q)", h.model.state, h.model.notice)
	}
	if got := len(h.backend.Bookings()); got != 1 {
		t.Fatalf("expected one booking, got %d", got)
	}
}

func TestSubmitOnline_SignedOutAsksToSignIn(t *testing.T) {
	h := newHarness(t, "")
	h.openStudio()
	h.key(tea.KeyMsg{Type: tea.KeySpace})

	h.run(h.key(tea.KeyMsg{Type: tea.KeyEnter}))

	if h.model.state != stateError || !service.IsAuth(h.model.err) {
		t.Fatalf("expected auth error, got state %d err %v", h.model.state, h.model.err)
	}
	if !strings.Contains(h.model.View(), "sign in") {
		t.Fatalf("expected sign-in hint, got:\n%s", h.model.View())
	}

	h.key(tea.KeyMsg{Type: tea.KeyEsc})
	if h.model.state != stateSeatMap || h.model.checkout.State().Len() != 1 {
		t.Fatalf("expected selection kept on the seat map, got state %d", h.model.state)
	}
}

func TestOfflineSale_RequiresCashier(t *testing.T) {
	h := newHarness(t, model.RoleCustomer)
	h.openStudio()
	h.key(tea.KeyMsg{Type: tea.KeySpace})

	h.key(runes("o"))

	if h.model.state != stateSeatMap || !strings.Contains(h.model.notice, "cashier") {
		t.Fatalf("expected cashier notice, got state %d notice %q", h.model.state, h.model.notice)
	}
}

func TestOfflineSale_CreatesWalkInBooking(t *testing.T) {
	h := newHarness(t, model.RoleCashier)
	h.openStudio()
	h.key(tea.KeyMsg{Type: tea.KeySpace})

	h.key(runes("o"))
	if h.model.state != stateOfflineForm {
		t.Fatalf("expected offline form, got %d", h.model.state)
	}
	h.model.nameInput.SetValue("Rina")
	h.key(tea.KeyMsg{Type: tea.KeyEnter})
	if h.model.formFocus != 1 {
		t.Fatal("expected enter on name to move to email")
	}

	h.model.emailInput.SetValue("not-an-email")
	h.run(h.key(tea.KeyMsg{Type: tea.KeyEnter}))
	if h.model.state != stateOfflineForm || !strings.Contains(h.model.notice, "email") {
		t.Fatalf("expected email validation notice, got state %d notice %q", h.model.state, h.model.notice)
	}

	h.model.emailInput.SetValue("rina@example.com")
	h.run(h.key(tea.KeyMsg{Type: tea.KeyEnter}))
	if h.model.state != stateTicket {
		t.Fatalf("expected ticket, got state %d notice %q", h.model.state, h.model.notice)
	}
	if h.model.ticket.Booking.Type != model.BookingOffline || h.model.ticket.Booking.UserName != "Rina" {
		t.Fatalf("unexpected booking %+v", h.model.ticket.Booking)
	}
}

func TestValidateFlow(t *testing.T) {
	h := newHarness(t, model.RoleCustomer)
	h.openStudio()
	h.key(tea.KeyMsg{Type: tea.KeySpace})
	h.run(h.key(tea.KeyMsg{Type: tea.KeyEnter}))
	code := h.model.ticket.Booking.Code
	payload := h.model.ticket.QRPayload

	h.run(h.key(tea.KeyMsg{Type: tea.KeyEnter}))
	h.key(tea.KeyMsg{Type: tea.KeyEsc})

	h.key(tea.KeyMsg{Type: tea.KeyCtrlV})
	if h.model.state != stateValidateInput {
		t.Fatalf("expected validate input, got %d", h.model.state)
	}

	h.run(h.key(tea.KeyMsg{Type: tea.KeyEnter}))
	if h.model.state != stateValidateInput || h.model.notice == "" {
		t.Fatalf("expected empty code to be rejected locally, got state %d", h.model.state)
	}

	h.model.codeInput.SetValue(payload)
	h.run(h.key(tea.KeyMsg{Type: tea.KeyEnter}))
	if h.model.state != stateValidationResult || !h.model.validation.Valid {
		t.Fatalf("expected valid result, got state %d result %+v err %v", h.model.state, h.model.validation, h.model.err)
	}
	if h.model.validation.Booking.BookingCode != code {
		t.Fatalf("expected code %s, got %s", code, h.model.validation.Booking.BookingCode)
	}
	if !strings.Contains(h.model.View(), "VALID") {
		t.Fatal("expected VALID chip in view")
	}

	if err := h.backend.SetStatus(code, model.BookingUsed); err != nil {
		t.Fatal(err)
	}
	h.key(tea.KeyMsg{Type: tea.KeyEnter})
	h.model.codeInput.SetValue(code)
	h.run(h.key(tea.KeyMsg{Type: tea.KeyEnter}))
	if h.model.validation.Valid {
		t.Fatal("expected used booking to validate as invalid")
	}
	if !strings.Contains(h.model.View(), "INVALID") {
		t.Fatal("expected INVALID chip in view")
	}
}

func TestMyBookings_LocalHistoryWhenSignedOut(t *testing.T) {
	h := newHarness(t, "")
	if err := store.RememberBooking(store.RecentBooking{Code: "BK-LOCAL", StudioName: "Studio 1", Seats: []string{"A1"}}); err != nil {
		t.Fatal(err)
	}

	h.run(h.key(tea.KeyMsg{Type: tea.KeyCtrlB}))

	if h.model.state != stateMyBookings {
		t.Fatalf("expected bookings list, got %d", h.model.state)
	}
	items := h.model.bookingList.Items()
	if len(items) != 1 || items[0].(bookingItem).code != "BK-LOCAL" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestMyBookings_FromServer(t *testing.T) {
	h := newHarness(t, model.RoleCustomer)
	h.openStudio()
	h.key(tea.KeyMsg{Type: tea.KeySpace})
	h.run(h.key(tea.KeyMsg{Type: tea.KeyEnter}))
	h.run(h.key(tea.KeyMsg{Type: tea.KeyEnter}))
	h.key(tea.KeyMsg{Type: tea.KeyEsc})

	h.run(h.key(tea.KeyMsg{Type: tea.KeyCtrlB}))

	items := h.model.bookingList.Items()
	if len(items) != 1 {
		t.Fatalf("expected one booking, got %d", len(items))
	}
	item := items[0].(bookingItem)
	if item.studio != "Studio 1" || item.status != model.BookingActive {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestHideStudio(t *testing.T) {
	h := newHarness(t, "")

	h.key(tea.KeyMsg{Type: tea.KeyCtrlX})
	if n := len(h.model.studioList.Items()); n != 1 {
		t.Fatalf("expected one visible studio, got %d", n)
	}
	hidden, err := store.LoadHiddenStudios()
	if err != nil || !hidden[1] {
		t.Fatalf("expected studio 1 persisted as hidden, got %+v err %v", hidden, err)
	}

	h.key(tea.KeyMsg{Type: tea.KeyCtrlA})
	if n := len(h.model.studioList.Items()); n != 2 {
		t.Fatalf("expected hidden studios shown, got %d", n)
	}
}

func TestRenderSeatMap_Tokens(t *testing.T) {
	m := New(Options{}).(appModel)
	m.studio = model.Studio{ID: 3, Name: "Studio 3"}
	m.checkout.State().SetStudio(3)
	m.seats = []model.Seat{
		{ID: 1, Label: "A1", Available: true},
		{ID: 2, Label: "A2", Available: false},
		{ID: 3, Label: "A4", Available: true},
	}
	m.rows = service.GroupSeatsByRow(m.seats)
	m.showSeatNumbers = false
	m.checkout.State().ToggleSeat(2)

	out := m.renderSeatMap()

	for _, want := range []string{tokenAvailable, tokenConflict, "SCREEN", "Selected: A2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in seat map:\n%s", want, out)
		}
	}
}

func TestCountSeats(t *testing.T) {
	seats := []model.Seat{
		{ID: 1, Label: "A1", Available: true},
		{ID: 2, Label: "A2", Available: true},
		{ID: 3, Label: "A3", Available: true},
		{ID: 4, Label: "A4", Available: true},
		{ID: 5, Label: "B1", Available: false},
		{ID: 6, Label: "B2", Available: true},
	}
	count := countSeats(seats, func(id int64) bool { return id == 5 })

	if count.available != 5 || count.taken != 1 || count.selected != 1 || count.total != 6 || count.pairs != 2 {
		t.Fatalf("unexpected counts %+v", count)
	}
}

func TestPadCell(t *testing.T) {
	cases := []struct {
		text  string
		width int
		want  string
	}{
		{"", 2, "  "},
		{"7", 3, " 7 "},
		{"12", 2, "12"},
		{"123", 2, "12"},
	}
	for _, tc := range cases {
		if got := padCell(tc.text, tc.width); got != tc.want {
			t.Fatalf("padCell(%q, %d): expected %q, got %q", tc.text, tc.width, tc.want, got)
		}
	}
}
