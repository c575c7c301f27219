package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"studio-booking-cli/auth"
	"studio-booking-cli/booking"
	"studio-booking-cli/logging"
	"studio-booking-cli/model"
	"studio-booking-cli/qr"
	"studio-booking-cli/selection"
	"studio-booking-cli/service"
	"studio-booking-cli/store"
)

// ErrNoStudios is shown when the backend has nothing to book.
var ErrNoStudios = errors.New("no studios available")

const refreshPendingNotice = "Seats are being refreshed after a conflict. Check the map, then try again."

type appState int

const (
	stateLoadingStudios appState = iota
	stateSelectStudio
	stateLoadingSeats
	stateSeatMap
	stateOfflineForm
	stateSubmitting
	stateTicket
	stateValidateInput
	stateValidating
	stateValidationResult
	stateLoadingBookings
	stateMyBookings
	stateError
)

// Options wires the shell to its collaborators. Zero fields get defaults.
type Options struct {
	Client  *service.Client
	Session *auth.Session
	Log     logrus.FieldLogger
	QR      qr.Renderer
	Now     func() time.Time
}

type appModel struct {
	client    *service.Client
	session   *auth.Session
	log       logrus.FieldLogger
	qr        qr.Renderer
	now       func() time.Time
	submitter *booking.Submitter
	validator *booking.Validator
	checkout  *selection.Checkout

	state     appState
	lastState appState
	err       error
	notice    string

	width  int
	height int

	studios    []model.Studio
	hidden     map[int64]bool
	showHidden bool
	studio     model.Studio

	studioList  list.Model
	bookingList list.Model

	seats           []model.Seat
	rows            []model.SeatRow
	cursorRow       int
	cursorCol       int
	showSeatNumbers bool
	// refreshPending blocks new submissions until seats are re-read after a
	// conflict.
	refreshPending bool

	nameInput  textinput.Model
	emailInput textinput.Model
	formFocus  int
	codeInput  textinput.Model

	submittingOffline bool
	ticket            booking.Result
	ticketSeats       []string
	ticketQR          string
	validation        model.ValidationResult

	spinner spinner.Model
}

func New(opts Options) tea.Model {
	if opts.Client == nil {
		opts.Client = service.NewClient("", nil)
	}
	if opts.Session == nil {
		opts.Session = &auth.Session{}
	}
	if opts.Log == nil {
		opts.Log = logging.Discard()
	}
	if opts.QR == nil {
		opts.QR = qr.NewTerminal()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	m := appModel{
		client:    opts.Client,
		session:   opts.Session,
		log:       opts.Log,
		qr:        opts.QR,
		now:       opts.Now,
		submitter: booking.NewSubmitter(opts.Client, opts.Log),
		validator: booking.NewValidator(opts.Client, opts.Log),
		checkout:  selection.NewCheckout(selection.New()),
		state:     stateLoadingStudios,
		hidden:    map[int64]bool{},
	}

	m.studioList = newList("Select Studio")
	m.bookingList = newList("My Bookings")
	m.showSeatNumbers = true

	m.nameInput = newInput("Customer name", 80)
	m.emailInput = newInput("customer@example.com", 120)
	m.codeInput = newInput("Booking code or scanned payload", 256)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.fetchStudiosCmd(true), m.spinner.Tick)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		if m.handleFilterInput(msg) {
			return m, nil
		}
		m, cmd, handled := m.handleKey(msg)
		if handled {
			return m, cmd
		}
		// fallthrough to component update
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.isLoadingState() {
			return m, cmd
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		if msg.returnStateSet {
			m.lastState = msg.returnState
		} else {
			m.lastState = recoverStateFrom(m.state)
		}
		m.state = stateError
		return m, nil

	case studiosMsg:
		if msg.err != nil {
			return m, errWithReturnCmd(msg.err, stateSelectStudio)
		}
		if len(msg.studios) == 0 {
			return m, errWithReturnCmd(ErrNoStudios, stateSelectStudio)
		}
		m.studios = msg.studios
		if msg.hidden != nil {
			m.hidden = msg.hidden
		}
		m.refreshStudioList()
		m.state = stateSelectStudio
		return m, nil

	case seatsMsg:
		return m.applySeats(msg)

	case bookingMsg:
		return m.applyBooking(msg)

	case validationMsg:
		if m.state != stateValidating {
			return m, nil
		}
		if msg.err != nil {
			if service.IsValidation(msg.err) {
				m.notice = service.UserMessage(msg.err)
				m.state = stateValidateInput
				cmd := m.codeInput.Focus()
				return m, cmd
			}
			return m, errWithReturnCmd(msg.err, stateValidateInput)
		}
		m.validation = msg.result
		m.state = stateValidationResult
		return m, nil

	case bookingsMsg:
		if m.state != stateLoadingBookings {
			return m, nil
		}
		if msg.err != nil {
			return m, errWithReturnCmd(msg.err, stateSelectStudio)
		}
		if msg.local {
			m.bookingList.Title = "Recent Bookings • this device"
			m.bookingList.SetItems(buildRecentBookingItems(msg.recent))
		} else {
			m.bookingList.Title = "My Bookings • " + m.session.DisplayName()
			m.bookingList.SetItems(buildBookingItems(msg.bookings, m.studioNames()))
		}
		m.bookingList.Select(0)
		m.state = stateMyBookings
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case stateSelectStudio:
		m.studioList, cmd = m.studioList.Update(msg)
	case stateMyBookings:
		m.bookingList, cmd = m.bookingList.Update(msg)
	case stateOfflineForm:
		if m.formFocus == 0 {
			m.nameInput, cmd = m.nameInput.Update(msg)
		} else {
			m.emailInput, cmd = m.emailInput.Update(msg)
		}
	case stateValidateInput:
		m.codeInput, cmd = m.codeInput.Update(msg)
	}
	return m, cmd
}

func (m appModel) applySeats(msg seatsMsg) (tea.Model, tea.Cmd) {
	if msg.studioID != m.studio.ID || (m.state != stateLoadingSeats && m.state != stateSeatMap) {
		m.log.WithField("studio_id", msg.studioID).Debug("discarding seats for a studio no longer shown")
		return m, nil
	}
	if msg.err != nil {
		if m.state == stateSeatMap {
			m.notice = service.UserMessage(msg.err)
			return m, nil
		}
		return m, errWithReturnCmd(msg.err, stateSelectStudio)
	}

	m.seats = msg.seats
	m.rows = service.GroupSeatsByRow(msg.seats)
	m.refreshPending = false
	if m.state == stateLoadingSeats {
		m.cursorRow, m.cursorCol = 0, 0
	}
	m.moveCursor(0, 0)
	m.state = stateSeatMap
	return m, nil
}

func (m appModel) applyBooking(msg bookingMsg) (tea.Model, tea.Cmd) {
	outcome := m.checkout.Finish(msg.snap, msg.err)
	log := m.log.WithFields(logrus.Fields{"studio_id": msg.snap.StudioID, "seat_ids": msg.snap.SeatIDs})
	if outcome.Stale {
		log.Info("discarding booking result for an abandoned selection")
		return m, nil
	}

	if msg.err == nil {
		m.ticket = msg.result
		m.ticketSeats = m.seatLabels(msg.result.Booking.SeatIDs)
		m.ticketQR = ""
		if rendered, err := m.qr.Render(msg.result.QRPayload); err == nil {
			m.ticketQR = rendered
		} else {
			log.WithError(err).Warn("qr render failed")
		}
		if err := store.RememberBooking(m.recentBooking(msg.result.Booking)); err != nil {
			log.WithError(err).Warn("ticket history not saved")
		}
		m.notice = ""
		m.state = stateTicket
		return m, nil
	}

	m.notice = service.UserMessage(msg.err)
	if service.IsAuth(msg.err) {
		return m, errWithReturnCmd(msg.err, stateSeatMap)
	}
	if m.submittingOffline && service.IsValidation(msg.err) {
		m.state = stateOfflineForm
		cmd := m.focusForm(m.formFocus)
		return m, cmd
	}
	m.state = stateSeatMap
	if outcome.RefreshSeats {
		m.refreshPending = true
		return m, m.fetchSeatsCmd(m.studio.ID)
	}
	return m, nil
}

func (m appModel) View() string {
	header := m.headerView()
	switch m.state {
	case stateLoadingStudios, stateLoadingSeats, stateSubmitting, stateValidating, stateLoadingBookings:
		return header + "\n\n" + m.loadingView()
	case stateSelectStudio:
		return header + "\n\n" + m.studioList.View()
	case stateSeatMap:
		return header + "\n\n" + m.renderSeatMap() + m.noticeView()
	case stateOfflineForm:
		return header + "\n\n" + m.offlineFormView() + m.noticeView()
	case stateTicket:
		return header + "\n\n" + m.ticketView()
	case stateValidateInput:
		return header + "\n\n" + m.validateInputView() + m.noticeView()
	case stateValidationResult:
		return header + "\n\n" + m.validationResultView()
	case stateMyBookings:
		return header + "\n\n" + m.bookingList.View()
	case stateError:
		return header + "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(service.UserMessage(m.err)) + "\n\n" + hint("Press esc to go back or ctrl+c to quit.")
	default:
		return header
	}
}

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render("Studio Booking")
	sub := []string{}
	if m.session.SignedIn() && m.session.User != nil {
		sub = append(sub, fmt.Sprintf("User: %s (%s)", m.session.DisplayName(), m.session.User.Role))
	} else {
		sub = append(sub, "User: guest")
	}
	if m.studio.Name != "" && m.inBookingFlow() {
		sub = append(sub, "Studio: "+m.studio.Name)
		if n := m.checkout.State().Len(); n > 0 {
			sub = append(sub, fmt.Sprintf("Selected: %d", n))
		}
	}
	if m.checkout.InFlight() {
		sub = append(sub, "Submitting booking")
	}
	if m.refreshPending {
		sub = append(sub, "Refreshing seats")
	}
	meta := "\n" + lipgloss.NewStyle().Faint(true).Render(strings.Join(sub, " • "))

	hints := "ctrl+c quit • esc back"
	switch m.state {
	case stateSelectStudio:
		hints = "ctrl+c quit • type to filter • enter select • ctrl+v validate • ctrl+b bookings • ctrl+x hide studio • ctrl+a show hidden • ctrl+r reload"
	case stateSeatMap:
		hints = "ctrl+c quit • esc back • arrows/hjkl move • space toggle • enter book • o walk-in sale • c clear • r refresh • n numbers"
	case stateOfflineForm:
		hints = "ctrl+c quit • esc back • tab next field • enter confirm"
	case stateTicket:
		hints = "ctrl+c quit • enter/esc back to seats"
	case stateValidateInput:
		hints = "ctrl+c quit • esc back • enter validate"
	case stateValidationResult:
		hints = "ctrl+c quit • esc back • enter validate another"
	case stateMyBookings:
		hints = "ctrl+c quit • esc back • type to filter"
	}
	filterLine := ""
	if listPtr := m.activeList(); listPtr != nil {
		if filter := listPtr.FilterValue(); filter != "" {
			filterLine = "\n" + hint(fmt.Sprintf("Filter: %s", filter))
		}
	}
	return title + meta + filterLine + "\n" + hint(hints)
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit, true
	}

	switch m.state {
	case stateOfflineForm:
		return m.handleFormKey(msg)
	case stateValidateInput:
		switch key {
		case "esc":
			model, cmd := m.goBack()
			return model, cmd, true
		case "enter":
			input := m.codeInput.Value()
			m.notice = ""
			m.codeInput.Blur()
			m.state = stateValidating
			return m, tea.Batch(m.validateCmd(input), m.spinner.Tick), true
		}
		return m, nil, false
	}

	switch key {
	case "q":
		return m, tea.Quit, true
	case "esc":
		if listPtr := m.activeList(); listPtr != nil {
			if listPtr.SettingFilter() || listPtr.IsFiltered() {
				listPtr.ResetFilter()
				return m, nil, true
			}
		}
		model, cmd := m.goBack()
		return model, cmd, true
	}

	switch m.state {
	case stateSelectStudio:
		return m.handleStudioKey(key)
	case stateSeatMap:
		return m.handleSeatMapKey(key)
	case stateTicket:
		if key == "enter" {
			model, cmd := m.goBack()
			return model, cmd, true
		}
	case stateValidationResult:
		if key == "enter" {
			return m.openValidate()
		}
	case stateError:
		if key == "enter" {
			model, cmd := m.goBack()
			return model, cmd, true
		}
	}
	return m, nil, false
}

func (m appModel) handleStudioKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "enter":
		item, ok := m.studioList.SelectedItem().(studioItem)
		if !ok {
			return m, nil, true
		}
		m.studio = item.studio
		m.checkout.State().SetStudio(item.studio.ID)
		m.seats = nil
		m.rows = nil
		m.refreshPending = false
		m.notice = ""
		m.state = stateLoadingSeats
		return m, tea.Batch(m.fetchSeatsCmd(item.studio.ID), m.spinner.Tick), true
	case "ctrl+x":
		return m.toggleStudioHidden()
	case "ctrl+a":
		m.showHidden = !m.showHidden
		m.refreshStudioList()
		return m, nil, true
	case "ctrl+r":
		m.state = stateLoadingStudios
		return m, tea.Batch(m.fetchStudiosCmd(false), m.spinner.Tick), true
	case "ctrl+v":
		return m.openValidate()
	case "ctrl+b":
		m.state = stateLoadingBookings
		return m, tea.Batch(m.fetchBookingsCmd(), m.spinner.Tick), true
	}
	return m, nil, false
}

func (m appModel) handleSeatMapKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "up", "k":
		m.moveCursor(-1, 0)
	case "down", "j":
		m.moveCursor(1, 0)
	case "left", "h":
		m.moveCursor(0, -1)
	case "right", "l":
		m.moveCursor(0, 1)
	case " ", "x":
		if seat, ok := m.cursorSeat(); ok {
			m.checkout.State().ToggleSeat(seat.ID)
			m.notice = ""
		}
	case "c":
		m.checkout.State().SetStudio(m.studio.ID)
		m.notice = ""
	case "n":
		m.showSeatNumbers = !m.showSeatNumbers
	case "r":
		m.notice = ""
		return m, m.fetchSeatsCmd(m.studio.ID), true
	case "enter":
		return m.submitOnline()
	case "o":
		return m.openOfflineForm()
	default:
		return m, nil, false
	}
	return m, nil, true
}

func (m appModel) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "esc":
		model, cmd := m.goBack()
		return model, cmd, true
	case "tab", "down":
		cmd := m.focusForm((m.formFocus + 1) % 2)
		return m, cmd, true
	case "shift+tab", "up":
		cmd := m.focusForm((m.formFocus + 1) % 2)
		return m, cmd, true
	case "enter":
		if m.formFocus == 0 {
			cmd := m.focusForm(1)
			return m, cmd, true
		}
		return m.submitOffline()
	}
	return m, nil, false
}

func (m appModel) submitOnline() (tea.Model, tea.Cmd, bool) {
	if m.checkout.InFlight() {
		m.notice = selection.ErrSubmissionInFlight.Error()
		return m, nil, true
	}
	if m.refreshPending {
		m.notice = refreshPendingNotice
		return m, nil, true
	}
	if m.checkout.State().Empty() {
		m.notice = "Select at least one seat first."
		return m, nil, true
	}
	token, err := m.session.IdentityToken(m.now())
	if err != nil {
		return m, errWithReturnCmd(err, stateSeatMap), true
	}
	snap, err := m.checkout.Begin()
	if err != nil {
		m.notice = err.Error()
		return m, nil, true
	}
	m.notice = ""
	m.submittingOffline = false
	m.state = stateSubmitting
	return m, tea.Batch(m.submitOnlineCmd(snap, token), m.spinner.Tick), true
}

func (m appModel) openOfflineForm() (tea.Model, tea.Cmd, bool) {
	if !m.session.CanSellOffline() {
		m.notice = "Walk-in sales need a cashier or admin account."
		return m, nil, true
	}
	if m.refreshPending {
		m.notice = refreshPendingNotice
		return m, nil, true
	}
	if m.checkout.State().Empty() {
		m.notice = "Select at least one seat first."
		return m, nil, true
	}
	m.notice = ""
	m.state = stateOfflineForm
	cmd := m.focusForm(0)
	return m, cmd, true
}

func (m appModel) submitOffline() (tea.Model, tea.Cmd, bool) {
	if m.refreshPending {
		m.notice = refreshPendingNotice
		return m, nil, true
	}
	snap, err := m.checkout.Begin()
	if err != nil {
		m.notice = err.Error()
		return m, nil, true
	}
	m.notice = ""
	m.submittingOffline = true
	m.state = stateSubmitting
	return m, tea.Batch(m.submitOfflineCmd(snap, m.nameInput.Value(), m.emailInput.Value()), m.spinner.Tick), true
}

func (m appModel) openValidate() (tea.Model, tea.Cmd, bool) {
	m.codeInput.SetValue("")
	m.notice = ""
	m.state = stateValidateInput
	cmd := m.codeInput.Focus()
	return m, cmd, true
}

func (m appModel) toggleStudioHidden() (tea.Model, tea.Cmd, bool) {
	item, ok := m.studioList.SelectedItem().(studioItem)
	if !ok {
		return m, nil, true
	}
	hidden := !m.hidden[item.studio.ID]
	if err := store.SetStudioHidden(item.studio.ID, hidden); err != nil {
		return m, errWithReturnCmd(err, stateSelectStudio), true
	}
	if hidden {
		m.hidden[item.studio.ID] = true
	} else {
		delete(m.hidden, item.studio.ID)
	}
	m.refreshStudioList()
	return m, nil, true
}

func (m *appModel) focusForm(field int) tea.Cmd {
	m.formFocus = field
	if field == 0 {
		m.emailInput.Blur()
		return m.nameInput.Focus()
	}
	m.nameInput.Blur()
	return m.emailInput.Focus()
}

func (m appModel) goBack() (tea.Model, tea.Cmd) {
	switch m.state {
	case stateLoadingSeats, stateSeatMap, stateSubmitting:
		// Leaving the flow invalidates any submission still in flight.
		m.checkout.State().Clear()
		m.refreshPending = false
		m.notice = ""
		m.state = stateSelectStudio
	case stateOfflineForm:
		m.nameInput.Blur()
		m.emailInput.Blur()
		m.state = stateSeatMap
	case stateTicket:
		m.checkout.State().SetStudio(m.studio.ID)
		m.state = stateLoadingSeats
		return m, tea.Batch(m.fetchSeatsCmd(m.studio.ID), m.spinner.Tick)
	case stateValidateInput, stateValidating, stateValidationResult, stateMyBookings:
		m.codeInput.Blur()
		m.notice = ""
		m.state = stateSelectStudio
	case stateError:
		m.state = m.lastState
		if m.state == stateValidateInput {
			cmd := m.codeInput.Focus()
			return m, cmd
		}
	default:
		return m, nil
	}
	return m, nil
}

func (m *appModel) handleFilterInput(msg tea.KeyMsg) bool {
	listPtr := m.activeList()
	if listPtr == nil {
		return false
	}
	if !listPtr.FilteringEnabled() {
		return false
	}
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return false
		}
		m.appendFilter(listPtr, string(msg.Runes))
		return true
	case tea.KeySpace:
		m.appendFilter(listPtr, " ")
		return true
	case tea.KeyBackspace, tea.KeyDelete:
		if listPtr.FilterValue() == "" {
			return false
		}
		m.popFilter(listPtr)
		return true
	default:
		return false
	}
}

func (m *appModel) appendFilter(listPtr *list.Model, value string) {
	if value == "" {
		return
	}
	current := listPtr.FilterValue()
	listPtr.SetFilterText(current + value)
}

func (m *appModel) popFilter(listPtr *list.Model) {
	value := listPtr.FilterValue()
	if value == "" {
		return
	}
	value = trimLastRune(value)
	if value == "" {
		listPtr.ResetFilter()
		return
	}
	listPtr.SetFilterText(value)
}

func trimLastRune(value string) string {
	runes := []rune(value)
	if len(runes) <= 1 {
		return ""
	}
	return string(runes[:len(runes)-1])
}

func (m *appModel) activeList() *list.Model {
	switch m.state {
	case stateSelectStudio:
		return &m.studioList
	case stateMyBookings:
		return &m.bookingList
	default:
		return nil
	}
}

func (m *appModel) refreshStudioList() {
	m.studioList.SetItems(buildStudioItems(m.studios, m.hidden, m.showHidden))
	if m.showHidden {
		m.studioList.Title = "Select Studio • showing hidden"
	} else {
		m.studioList.Title = "Select Studio"
	}
}

func (m appModel) inBookingFlow() bool {
	switch m.state {
	case stateLoadingSeats, stateSeatMap, stateOfflineForm, stateSubmitting, stateTicket:
		return true
	}
	return false
}

func (m appModel) isLoadingState() bool {
	return m.state == stateLoadingStudios ||
		m.state == stateLoadingSeats ||
		m.state == stateSubmitting ||
		m.state == stateValidating ||
		m.state == stateLoadingBookings
}

func (m appModel) loadingView() string {
	title := "Loading"
	switch m.state {
	case stateLoadingStudios:
		title = "Loading studios"
	case stateLoadingSeats:
		title = "Loading seats"
	case stateSubmitting:
		title = "Submitting booking"
	case stateValidating:
		title = "Validating booking"
	case stateLoadingBookings:
		title = "Loading bookings"
	}
	sub := "Fetching data..."
	if m.state == stateSubmitting {
		sub = "Waiting for the server. Press esc to leave; the result will be ignored."
	}
	return fmt.Sprintf("%s %s\n\n%s", m.spinner.View(), title, hint(sub))
}

func (m appModel) noticeView() string {
	if m.notice == "" {
		return ""
	}
	return "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true).Render(m.notice)
}

func (m appModel) offlineFormView() string {
	label := lipgloss.NewStyle().Bold(true)
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render("Walk-in sale"),
		hint(fmt.Sprintf("%s • Seats: %s", m.studio.Name, strings.Join(m.selectedLabels(), ", "))),
		"",
		label.Render("Name"),
		m.nameInput.View(),
		"",
		label.Render("Email"),
		m.emailInput.View(),
	}
	return strings.Join(lines, "\n")
}

func (m appModel) validateInputView() string {
	return lipgloss.NewStyle().Bold(true).Render("Validate booking") + "\n" +
		hint("Type a booking code or paste the text decoded from a ticket QR.") + "\n\n" +
		m.codeInput.View()
}

func (m appModel) ticketView() string {
	b := m.ticket.Booking
	lines := []string{
		chip("Booking Confirmed", "2"),
		"",
		lipgloss.NewStyle().Bold(true).Render("Code: " + b.Code),
		fmt.Sprintf("Studio: %s", m.studio.Name),
		fmt.Sprintf("Seats: %s", strings.Join(m.ticketSeats, ", ")),
		fmt.Sprintf("Type: %s • Status: %s", b.Type, b.Status),
	}
	if m.ticketQR != "" {
		lines = append(lines, "", m.ticketQR)
	}
	lines = append(lines, "", hint("Show this code at the entrance."))
	return panel(m.width, strings.Join(lines, "\n"))
}

func (m appModel) validationResultView() string {
	v := m.validation
	head := chip("INVALID", "1")
	if v.Valid {
		head = chip("VALID", "2")
	}
	lines := []string{head, "", lipgloss.NewStyle().Bold(true).Render("Code: " + v.Booking.BookingCode)}
	if v.Booking.StudioID > 0 {
		lines = append(lines, fmt.Sprintf("Studio: %s", m.studioName(v.Booking.StudioID)))
	}
	if len(v.Booking.SeatIDs) > 0 {
		lines = append(lines, "Seats: "+formatSeatIDs(v.Booking.SeatIDs))
	}
	if v.Booking.CustomerName != "" {
		lines = append(lines, "Customer: "+v.Booking.CustomerName)
	}
	if v.Booking.BookingType != "" {
		lines = append(lines, "Type: "+string(v.Booking.BookingType))
	}
	if !v.Valid && v.Booking.Status != "" {
		lines = append(lines, "Status: "+string(v.Booking.Status))
	}
	return panel(m.width, strings.Join(lines, "\n"))
}

func (m appModel) seatLabels(ids []int64) []string {
	index := service.SeatIndex(m.seats)
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

func (m appModel) recentBooking(b model.Booking) store.RecentBooking {
	created := b.CreatedAt
	if created.IsZero() {
		created = m.now()
	}
	return store.RecentBooking{
		Code:       b.Code,
		StudioID:   b.StudioID,
		StudioName: m.studio.Name,
		Seats:      m.seatLabels(b.SeatIDs),
		Type:       b.Type,
		Status:     b.Status,
		CreatedAt:  created,
	}
}

func (m appModel) studioNames() map[int64]string {
	names := make(map[int64]string, len(m.studios))
	for _, s := range m.studios {
		names[s.ID] = s.Name
	}
	return names
}

func (m appModel) studioName(id int64) string {
	if name := m.studioNames()[id]; name != "" {
		return name
	}
	return fmt.Sprintf("Studio #%d", id)
}

func (m *appModel) resizeLists() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 6
	if h < 6 {
		h = 6
	}
	m.studioList.SetSize(m.width, h)
	m.bookingList.SetSize(m.width, h)
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.Filter = caseInsensitiveFilter
	l.SetFilteringEnabled(true)
	l.SetShowFilter(true)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 48
	return in
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func chip(text string, color string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color(color)).
		Padding(0, 2).
		Render(text)
}

func panel(width int, content string) string {
	style := lipgloss.NewStyle().
		Padding(1, 3).
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("63"))
	rendered := style.Render(content)
	if width > 0 {
		rendered = lipgloss.PlaceHorizontal(width, lipgloss.Center, rendered)
	}
	return rendered
}

func recoverStateFrom(state appState) appState {
	switch state {
	case stateLoadingStudios:
		return stateSelectStudio
	case stateLoadingSeats:
		return stateSelectStudio
	case stateSubmitting:
		return stateSeatMap
	case stateValidating:
		return stateValidateInput
	case stateLoadingBookings:
		return stateSelectStudio
	case stateError:
		return stateSelectStudio
	default:
		return state
	}
}

func caseInsensitiveFilter(term string, targets []string) []list.Rank {
	term = strings.ToLower(term)
	lower := make([]string, len(targets))
	for i, t := range targets {
		lower[i] = strings.ToLower(t)
	}
	return list.DefaultFilter(term, lower)
}
