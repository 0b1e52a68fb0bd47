package receiver

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/turfhub/tg_turf_bot/pkg/client/turfapi"
	"github.com/turfhub/tg_turf_bot/pkg/domain/engine"
	"github.com/turfhub/tg_turf_bot/pkg/metrics"
	"github.com/turfhub/tg_turf_bot/pkg/repository/cache"
	"github.com/turfhub/tg_turf_bot/pkg/repository/model"
)

var errNotAuthed = errors.New("no api session for user")

// Processor drives the conversation: it owns the session store and
// turns telegram updates into engine and API calls.
type Processor struct {
	bot      *tgbotapi.BotAPI
	store    *Store
	repo     model.Repo
	cache    *cache.Cache // optional
	api      *turfapi.Client
	metrics  *metrics.Metrics // optional
	logger   zerolog.Logger
	validate *validator.Validate
	now      func() time.Time
}

func New(bot *tgbotapi.BotAPI, repo model.Repo, c *cache.Cache, api *turfapi.Client, m *metrics.Metrics, logger zerolog.Logger) *Processor {
	return &Processor{
		bot:      bot,
		store:    NewStore(),
		repo:     repo,
		cache:    c,
		api:      api,
		metrics:  m,
		logger:   logger.With().Str("component", "receiver").Logger(),
		validate: validator.New(),
		now:      time.Now,
	}
}

// HandleUpdate processes one telegram update.
func (p *Processor) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if p.metrics != nil {
		p.metrics.UpdatesProcessed.Inc()
	}
	switch {
	case update.Message != nil:
		p.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		p.handleCallback(ctx, update.CallbackQuery)
	}
}

// session returns the in-memory session, restoring the persisted
// snapshot after a restart. Booking-flow states cannot be restored (the
// selection only lives in memory) and fall back to the main menu.
func (p *Processor) session(ctx context.Context, userID int64) *Session {
	if p.store.Has(userID) {
		return p.store.Get(userID)
	}
	sess := &Session{State: StateStart}
	if snap, err := p.repo.LoadSession(ctx, userID); err == nil && snap != nil {
		st := stateFromString(snap.State)
		if st.inBookingFlow() || st == StateAuthOTP {
			st = StateMain
		}
		sess.State = st
	}
	return p.store.Put(userID, sess)
}

func (p *Processor) persistSession(ctx context.Context, userID int64, sess *Session) {
	snap := model.SessionData{
		State: sess.State.String(),
		Payload: map[string]any{
			"turf_id":   sess.Draft.TurfID,
			"turf_name": sess.Draft.TurfName,
			"date":      sess.Draft.Date,
		},
	}
	if err := p.repo.SaveSession(ctx, userID, snap); err != nil {
		p.logger.Warn().Err(err).Int64("user_id", userID).Msg("save session failed")
	}
}

// authedClient returns an API client bound to the user's token, or
// errNotAuthed when the user has no active session.
func (p *Processor) authedClient(ctx context.Context, userID int64) (*turfapi.Client, *model.User, error) {
	u, err := p.repo.GetUserByTG(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if u == nil || u.APIToken == "" {
		return nil, nil, errNotAuthed
	}
	return p.api.WithToken(u.APIToken), u, nil
}

// guardAuth reroutes the session to the login screen when err is a
// 401/403 from the API. The engine only signals expiry; dropping the
// token and prompting re-login happens here.
func (p *Processor) guardAuth(ctx context.Context, userID int64, sess *Session, err error) bool {
	var apiErr *turfapi.APIError
	if errors.As(err, &apiErr) && (apiErr.Status == 401 || apiErr.Status == 403) {
		if clearErr := p.repo.ClearCredentials(ctx, userID); clearErr != nil {
			p.logger.Warn().Err(clearErr).Int64("user_id", userID).Msg("clear credentials failed")
		}
		sess.ResetFlow()
		sess.State = StateStart
		return true
	}
	return errors.Is(err, errNotAuthed)
}

// ---------- Messages ----------

func (p *Processor) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	userID := m.From.ID
	sess := p.session(ctx, userID)

	if m.IsCommand() {
		if m.Command() == "start" {
			p.handleStart(ctx, m, sess)
		}
		return
	}

	switch sess.State {
	case StateAuthPhone:
		p.handlePhoneInput(ctx, m, sess)
	case StateAuthOTP:
		p.handleOTPInput(ctx, m, sess)
	case StateProfileEditName:
		p.handleProfileInput(ctx, m, sess, "name")
	case StateProfileEditEmail:
		p.handleProfileInput(ctx, m, sess, "email")
	default:
		// Free text outside an input state: drop it and point at the buttons.
		_, _ = p.bot.Request(tgbotapi.NewDeleteMessage(m.Chat.ID, m.MessageID))
		remind := tgbotapi.NewMessage(m.Chat.ID, "Please use the buttons 👆")
		if sent, err := p.send(remind); err == nil {
			go func(chatID int64, mid int) {
				time.Sleep(5 * time.Second)
				_, _ = p.bot.Request(tgbotapi.NewDeleteMessage(chatID, mid))
			}(sent.Chat.ID, sent.MessageID)
		}
	}
	p.persistSession(ctx, userID, sess)
}

func (p *Processor) handleStart(ctx context.Context, m *tgbotapi.Message, sess *Session) {
	userID := m.From.ID
	if _, err := p.repo.UpsertUser(ctx, model.User{
		TgUserID: userID,
		TgChatID: m.Chat.ID,
		Name:     m.From.FirstName,
	}); err != nil {
		p.logger.Error().Err(err).Int64("user_id", userID).Msg("upsert user failed")
	}

	sess.ResetFlow()
	sess.State = StateStart
	if _, _, err := p.authedClient(ctx, userID); err == nil {
		sess.State = StateMain
	}

	_, _ = p.bot.Request(tgbotapi.NewDeleteMessage(m.Chat.ID, m.MessageID))
	p.sendView(ctx, userID, m.Chat.ID, sess)
	p.persistSession(ctx, userID, sess)
}

func (p *Processor) handlePhoneInput(ctx context.Context, m *tgbotapi.Message, sess *Session) {
	phone := m.Text
	if err := p.validate.Var(phone, "required,len=10,numeric"); err != nil {
		p.sendText(m.Chat.ID, "Please send a valid 10-digit phone number.")
		return
	}
	if err := p.api.SendOTP(ctx, phone); err != nil {
		p.logger.Warn().Err(err).Msg("send otp failed")
		p.sendText(m.Chat.ID, "Could not send the OTP. Please try again.")
		return
	}
	sess.Phone = phone
	sess.Go(StateAuthOTP)
	p.sendView(ctx, m.From.ID, m.Chat.ID, sess)
}

func (p *Processor) handleOTPInput(ctx context.Context, m *tgbotapi.Message, sess *Session) {
	userID := m.From.ID
	res, err := p.api.VerifyOTP(ctx, sess.Phone, m.Text)
	if err != nil {
		var apiErr *turfapi.APIError
		if errors.As(err, &apiErr) && apiErr.Status < 500 {
			p.sendText(m.Chat.ID, "That code didn't work. Please try again.")
			return
		}
		p.logger.Warn().Err(err).Msg("verify otp failed")
		p.sendText(m.Chat.ID, "Login failed. Please try again later.")
		return
	}

	if err := p.repo.SaveCredentials(ctx, userID, sess.Phone, res.Token); err != nil {
		p.logger.Error().Err(err).Int64("user_id", userID).Msg("save credentials failed")
	}
	if res.Player.Name != "" || res.Player.Email != "" {
		_ = p.repo.UpdateProfile(ctx, userID, res.Player.Name, res.Player.Email)
	}

	sess.ResetFlow()
	p.sendText(m.Chat.ID, "✅ Logged in!")
	p.sendView(ctx, userID, m.Chat.ID, sess)
}

func (p *Processor) handleProfileInput(ctx context.Context, m *tgbotapi.Message, sess *Session, field string) {
	userID := m.From.ID
	client, user, err := p.authedClient(ctx, userID)
	if err != nil {
		if p.guardAuth(ctx, userID, sess, err) {
			p.sendView(ctx, userID, m.Chat.ID, sess)
		}
		return
	}

	name, email := user.Name, user.Email
	switch field {
	case "name":
		if err := p.validate.Var(m.Text, "required,min=2,max=60"); err != nil {
			p.sendText(m.Chat.ID, "Please send a name between 2 and 60 characters.")
			return
		}
		name = m.Text
	case "email":
		if err := p.validate.Var(m.Text, "required,email"); err != nil {
			p.sendText(m.Chat.ID, "Please send a valid email address.")
			return
		}
		email = m.Text
	}

	if _, err := client.UpdateProfile(ctx, name, email); err != nil {
		if p.guardAuth(ctx, userID, sess, err) {
			p.sendView(ctx, userID, m.Chat.ID, sess)
			return
		}
		p.logger.Warn().Err(err).Msg("update profile failed")
		p.sendText(m.Chat.ID, "Could not update the profile. Please try again.")
		return
	}
	if err := p.repo.UpdateProfile(ctx, userID, name, email); err != nil {
		p.logger.Warn().Err(err).Int64("user_id", userID).Msg("persist profile failed")
	}

	sess.Back()
	p.sendView(ctx, userID, m.Chat.ID, sess)
}

// ---------- Callbacks ----------

func (p *Processor) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	userID := cq.From.ID
	sess := p.session(ctx, userID)
	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID
	sess.MenuMessageID = messageID
	data := cq.Data

	ack := "" // callback answer text; empty just stops the spinner

	switch {
	case data == CbStart:
		if _, _, err := p.authedClient(ctx, userID); err == nil {
			sess.Go(StateMain)
		} else {
			sess.Go(StateAuthPhone)
		}

	case data == CbTurfs:
		sess.Go(StateTurfs)

	case data == CbMy:
		sess.Go(StateMy)

	case data == CbProfile:
		sess.Go(StateProfile)

	case data == CbHelp:
		sess.Go(StateHelp)

	case data == CbEditName:
		sess.Go(StateProfileEditName)

	case data == CbEditEmail:
		sess.Go(StateProfileEditEmail)

	case data == CbBack:
		sess.Back()

	case data == CbLogout:
		p.handleLogout(ctx, userID, sess)

	case data == CbBookTurf:
		sess.Go(StateBookDate)

	case data == CbSlotsDone:
		if sess.Draft.Engine == nil || len(sess.Draft.Engine.Selection()) == 0 {
			ack = "Please select at least one slot"
		} else {
			sess.Go(StateBookConfirm)
		}

	case data == CbConfirm:
		ack = p.handleConfirm(ctx, userID, sess)

	default:
		ack = p.handlePrefixed(ctx, userID, sess, data)
	}

	p.renderState(ctx, userID, chatID, messageID, sess)
	_, _ = p.bot.Request(tgbotapi.NewCallback(cq.ID, ack))
	p.persistSession(ctx, userID, sess)
}

func (p *Processor) handlePrefixed(ctx context.Context, userID int64, sess *Session, data string) string {
	if val, ok := Is(data, PTurf); ok {
		id, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return ""
		}
		sess.Draft = BookingDraft{TurfID: id}
		sess.Go(StateTurfCard)
		return ""
	}

	if val, ok := Is(data, PDate); ok {
		return p.handleDatePick(ctx, userID, sess, val)
	}

	if val, ok := Is(data, PSlot); ok {
		return p.handleSlotToggle(sess, val)
	}

	if val, ok := Is(data, PCancel); ok {
		return p.handleCancelBooking(ctx, userID, sess, val)
	}

	return ""
}

// handleDatePick binds a fresh engine to the user's token and loads the
// day's slots. Switching the date replaces slots and selection in one
// step inside the engine.
func (p *Processor) handleDatePick(ctx context.Context, userID int64, sess *Session, iso string) string {
	client, _, err := p.authedClient(ctx, userID)
	if err != nil {
		p.guardAuth(ctx, userID, sess, err)
		return "Please login first"
	}

	date, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return ""
	}

	eng := engine.New(apiSlotService{api: client}, apiBookingService{api: client}, p.logger)
	if _, err := eng.LoadSlots(ctx, sess.Draft.TurfID, date); err != nil {
		if p.guardAuth(ctx, userID, sess, err) {
			return "Session expired"
		}
		p.logger.Warn().Err(err).Int64("turf_id", sess.Draft.TurfID).Str("date", iso).Msg("load slots failed")
		return "Failed to load slots, try again"
	}

	sess.Draft.Date = iso
	sess.Draft.Engine = eng
	sess.Go(StateBookSlots)
	return ""
}

func (p *Processor) handleSlotToggle(sess *Session, val string) string {
	if sess.Draft.Engine == nil {
		return ""
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return ""
	}
	switch err := sess.Draft.Engine.Toggle(id); {
	case errors.Is(err, engine.ErrSlotUnavailable):
		return "This time slot is already booked"
	case errors.Is(err, engine.ErrNotContiguous):
		return "Please select consecutive time slots only"
	case errors.Is(err, engine.ErrUnknownSlot):
		return "That slot is gone, reloading"
	}
	return ""
}

func (p *Processor) handleConfirm(ctx context.Context, userID int64, sess *Session) string {
	eng := sess.Draft.Engine
	if eng == nil {
		sess.Back()
		return ""
	}

	outcome := eng.Submit(ctx)
	if p.metrics != nil {
		p.metrics.BookingsTotal.WithLabelValues(outcome.Kind.String()).Inc()
	}
	msg := OutcomeMessage(outcome)

	switch outcome.Kind {
	case engine.OutcomeCreated:
		sess.ResetFlow()
		sess.Go(StateMy)

	case engine.OutcomeAuthExpired:
		if err := p.repo.ClearCredentials(ctx, userID); err != nil {
			p.logger.Warn().Err(err).Int64("user_id", userID).Msg("clear credentials failed")
		}
		sess.ResetFlow()
		sess.State = StateStart

	default:
		// Back to the grid with fresh server truth: a concurrent booking
		// is the most likely cause of the failure.
		if date, err := time.Parse("2006-01-02", sess.Draft.Date); err == nil {
			if _, loadErr := eng.LoadSlots(ctx, sess.Draft.TurfID, date); loadErr != nil {
				p.logger.Warn().Err(loadErr).Msg("slot reload after failed booking")
			}
		}
		sess.Back()
	}
	return msg
}

func (p *Processor) handleCancelBooking(ctx context.Context, userID int64, sess *Session, val string) string {
	client, _, err := p.authedClient(ctx, userID)
	if err != nil {
		p.guardAuth(ctx, userID, sess, err)
		return "Please login first"
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return ""
	}
	if err := client.CancelBooking(ctx, id); err != nil {
		if p.guardAuth(ctx, userID, sess, err) {
			return "Session expired"
		}
		p.logger.Warn().Err(err).Int64("booking_id", id).Msg("cancel booking failed")
		return "Could not cancel the booking"
	}
	return "Booking cancelled"
}

func (p *Processor) handleLogout(ctx context.Context, userID int64, sess *Session) {
	if client, _, err := p.authedClient(ctx, userID); err == nil {
		if err := client.Logout(ctx); err != nil {
			p.logger.Debug().Err(err).Msg("api logout failed")
		}
	}
	if err := p.repo.ClearCredentials(ctx, userID); err != nil {
		p.logger.Warn().Err(err).Int64("user_id", userID).Msg("clear credentials failed")
	}
	sess.ResetFlow()
	sess.State = StateStart
}

// ---------- Rendering ----------

// view builds the text and keyboard for the session's current state,
// fetching whatever the state needs. States that need an API session
// reroute to the start screen when the user has none.
func (p *Processor) view(ctx context.Context, userID int64, sess *Session) (string, tgbotapi.InlineKeyboardMarkup) {
	switch sess.State {
	case StateStart:
		return welcomeText, StartMenu()

	case StateAuthPhone:
		return "Send your 10-digit phone number to login.", BackMenu()

	case StateAuthOTP:
		return "Enter the OTP we sent to " + sess.Phone + ".", BackMenu()

	case StateMain:
		text := "What would you like to do?"
		if client, _, err := p.authedClient(ctx, userID); err == nil {
			if featured, ferr := client.FeaturedTurfs(ctx); ferr == nil && len(featured) > 0 {
				names := make([]string, 0, 3)
				for _, t := range featured {
					names = append(names, t.Name)
					if len(names) == 3 {
						break
					}
				}
				text = "⭐ Featured: " + strings.Join(names, ", ") + "\n\n" + text
			}
		}
		return text, MainMenu()

	case StateTurfs:
		client, _, err := p.authedClient(ctx, userID)
		if err != nil {
			p.guardAuth(ctx, userID, sess, err)
			return welcomeText, StartMenu()
		}
		turfs, err := p.turfs(ctx, client)
		if err != nil {
			if p.guardAuth(ctx, userID, sess, err) {
				return welcomeText, StartMenu()
			}
			return "Could not load turfs. Please try again.", BackMenu()
		}
		if len(turfs) == 0 {
			return "No turfs available right now.", BackMenu()
		}
		return "Pick a turf:", TurfsMenu(turfs)

	case StateTurfCard:
		client, _, err := p.authedClient(ctx, userID)
		if err != nil {
			p.guardAuth(ctx, userID, sess, err)
			return welcomeText, StartMenu()
		}
		turf, err := client.Turf(ctx, sess.Draft.TurfID)
		if err != nil {
			if p.guardAuth(ctx, userID, sess, err) {
				return welcomeText, StartMenu()
			}
			return "Could not load the turf. Please try again.", BackMenu()
		}
		sess.Draft.TurfName = turf.Name
		return turfCardText(turf), TurfCardMenu()

	case StateBookDate:
		return "Select a date for " + sess.Draft.TurfName + ":", DateMenu(p.now())

	case StateBookSlots:
		if sess.Draft.Engine == nil {
			return "Pick a date first.", BackMenu()
		}
		slots := sess.Draft.Engine.Slots()
		hasSel := len(sess.Draft.Engine.Selection()) > 0
		return slotsText(sess.Draft, slots), SlotsMenu(slots, sess.Draft.Engine.Selected, hasSel)

	case StateBookConfirm:
		if sess.Draft.Engine == nil {
			return "Pick a date first.", BackMenu()
		}
		return confirmText(sess.Draft), ConfirmMenu()

	case StateMy:
		client, _, err := p.authedClient(ctx, userID)
		if err != nil {
			p.guardAuth(ctx, userID, sess, err)
			return welcomeText, StartMenu()
		}
		bookings, err := client.Bookings(ctx)
		if err != nil {
			if p.guardAuth(ctx, userID, sess, err) {
				return welcomeText, StartMenu()
			}
			return "Could not load your bookings. Please try again.", BackMenu()
		}
		return bookingsText(bookings), BookingsMenu(bookings)

	case StateProfile:
		client, user, err := p.authedClient(ctx, userID)
		if err != nil {
			p.guardAuth(ctx, userID, sess, err)
			return welcomeText, StartMenu()
		}
		player, err := client.Me(ctx)
		if err != nil {
			if p.guardAuth(ctx, userID, sess, err) {
				return welcomeText, StartMenu()
			}
			// Fall back to the locally persisted profile.
			player = &turfapi.Player{Name: user.Name, Phone: user.Phone, Email: user.Email}
		}
		return profileText(player), ProfileMenu()

	case StateProfileEditName:
		return "Send the new name.", BackMenu()

	case StateProfileEditEmail:
		return "Send the new email address.", BackMenu()

	case StateHelp:
		return helpText, BackMenu()
	}

	return "What would you like to do?", MainMenu()
}

func (p *Processor) renderState(ctx context.Context, userID, chatID int64, messageID int, sess *Session) {
	text, markup := p.view(ctx, userID, sess)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	if _, err := p.send(edit); err != nil {
		p.logger.Warn().Err(err).Msg("edit message failed")
	}
}

// sendView sends the current state as a new message, used after text
// input broke the edit chain.
func (p *Processor) sendView(ctx context.Context, userID, chatID int64, sess *Session) {
	text, markup := p.view(ctx, userID, sess)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if sent, err := p.send(msg); err == nil {
		sess.MenuMessageID = sent.MessageID
	}
}

func (p *Processor) sendText(chatID int64, text string) {
	if _, err := p.send(tgbotapi.NewMessage(chatID, text)); err != nil {
		p.logger.Warn().Err(err).Msg("send text failed")
	}
}

// turfs serves the catalogue from the redis cache when possible; slot
// availability is never cached.
func (p *Processor) turfs(ctx context.Context, client *turfapi.Client) ([]turfapi.Turf, error) {
	if p.cache != nil {
		if cached, err := p.cache.GetTurfs(ctx); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			p.logger.Debug().Err(err).Msg("turf cache read failed")
		}
	}
	turfs, err := client.Turfs(ctx)
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		if err := p.cache.SetTurfs(ctx, turfs); err != nil {
			p.logger.Debug().Err(err).Msg("turf cache write failed")
		}
	}
	return turfs, nil
}
