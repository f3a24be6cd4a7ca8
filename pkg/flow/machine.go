package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/msksk8cool/sk8school-bot/pkg/booking"
	"github.com/msksk8cool/sk8school-bot/pkg/catalog"
	"github.com/msksk8cool/sk8school-bot/pkg/channel"
	"github.com/sirupsen/logrus"
)

// Submitter hands a finished selection to the coach for approval and
// returns the new booking id.
type Submitter interface {
	Submit(ctx context.Context, actor channel.Actor, sel Selection) (string, error)
}

// Config configures a Machine.
type Config struct {
	Catalog  *catalog.Catalog
	Location *time.Location
	Now      func() time.Time
}

type handlerFunc func(m *Machine, ctx context.Context, actor channel.Actor, ev Event, sess *session) (channel.Message, error)

// transition is one row of the table. A nil from list accepts any state.
// discard drops the user's selection once the handler succeeds.
type transition struct {
	from    []State
	to      State
	discard bool
	handle  handlerFunc
}

func (t transition) allows(s State) bool {
	if t.from == nil {
		return true
	}
	for _, f := range t.from {
		if f == s {
			return true
		}
	}
	return false
}

// Machine drives the booking conversation for every user.
type Machine struct {
	cat       *catalog.Catalog
	loc       *time.Location
	now       func() time.Time
	sessions  *sessions
	submitter Submitter
	table     map[EventKind]transition
}

// NewMachine creates a booking flow machine.
func NewMachine(cfg Config, submitter Submitter) *Machine {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Machine{
		cat:       cfg.Catalog,
		loc:       cfg.Location,
		now:       cfg.Now,
		sessions:  newSessions(),
		submitter: submitter,
		table:     transitions(),
	}
}

func transitions() map[EventKind]transition {
	return map[EventKind]transition{
		EventMainMenu:     {from: nil, to: StateStart, discard: true, handle: (*Machine).mainMenu},
		EventStartBooking: {from: nil, to: StateStart, handle: (*Machine).startBooking},
		EventSelectPark:   {from: nil, to: StateStart, handle: (*Machine).selectPark},
		EventViewPark: {
			from:   []State{StateStart, StateParkViewed},
			to:     StateParkViewed,
			handle: (*Machine).viewPark,
		},
		EventConfirmPark: {
			from:   []State{StateStart, StateParkViewed},
			to:     StateParkSelected,
			handle: (*Machine).confirmPark,
		},
		EventChooseDate: {
			from:   []State{StateParkSelected},
			to:     StateDateSelected,
			handle: (*Machine).chooseDate,
		},
		EventChoosePeriod: {
			from:   []State{StateDateSelected},
			to:     StatePeriodSelected,
			handle: (*Machine).choosePeriod,
		},
		EventChooseTime: {
			from:   []State{StatePeriodSelected},
			to:     StateTimeSelected,
			handle: (*Machine).chooseTime,
		},
		EventEquipmentYes: {
			from:   []State{StateTimeSelected},
			to:     StateAwaitingConfirm,
			handle: (*Machine).equipmentYes,
		},
		EventEquipmentNo: {
			from:   []State{StateTimeSelected},
			to:     StateEquipmentMenu,
			handle: (*Machine).equipmentNo,
		},
		EventChooseEquipment: {
			from:   []State{StateEquipmentMenu},
			to:     StateAwaitingConfirm,
			handle: (*Machine).chooseEquipment,
		},
		EventFinalConfirm: {
			from:    []State{StateAwaitingConfirm},
			to:      StateSubmitted,
			discard: true,
			handle:  (*Machine).finalConfirm,
		},
		EventCancel: {
			from:    []State{StateAwaitingConfirm},
			to:      StateCancelled,
			discard: true,
			handle:  (*Machine).cancel,
		},
	}
}

// Handles reports whether the machine owns events of kind.
func (m *Machine) Handles(kind EventKind) bool {
	_, ok := m.table[kind]
	return ok
}

// State returns the user's current conversation state.
func (m *Machine) State(userID int64) State {
	return m.sessions.get(userID).state
}

// Selection returns the user's in-flight selection, if any.
func (m *Machine) Selection(userID int64) (Selection, bool) {
	m.sessions.mu.Lock()
	defer m.sessions.mu.Unlock()

	sess, ok := m.sessions.m[userID]
	return sess.sel, ok
}

// Apply runs one event for actor and returns the screen to show. An event
// arriving in an unexpected state is logged and applied anyway with
// whatever the selection holds.
func (m *Machine) Apply(ctx context.Context, actor channel.Actor, ev Event) (channel.Message, error) {
	t, ok := m.table[ev.Kind]
	if !ok {
		return channel.Message{}, fmt.Errorf("%w: event %s", ErrUnknownToken, ev.Kind)
	}

	sess := m.sessions.get(actor.ID)
	from := sess.state
	if !t.allows(from) {
		logrus.Warnf("user %d sent %s in state %s, continuing with partial selection", actor.ID, ev.Kind, from)
	}

	// Handlers may override the target state.
	sess.state = t.to
	msg, err := t.handle(m, ctx, actor, ev, &sess)
	if err != nil {
		return channel.Message{}, err
	}

	if t.discard && sess.state == t.to {
		m.sessions.drop(actor.ID)
	} else {
		m.sessions.put(actor.ID, sess)
	}

	logrus.Debugf("user %d: %s --%s--> %s", actor.ID, from, ev.Kind, sess.state)
	return msg, nil
}

func (m *Machine) mainMenu(ctx context.Context, actor channel.Actor, ev Event, sess *session) (channel.Message, error) {
	return MainMenuScreen(), nil
}

func (m *Machine) startBooking(ctx context.Context, actor channel.Actor, ev Event, sess *session) (channel.Message, error) {
	*sess = session{state: StateStart}
	return TrainingInfoScreen(), nil
}

// selectPark restarts the selection; later choices never survive a return
// to the park list.
func (m *Machine) selectPark(ctx context.Context, actor channel.Actor, ev Event, sess *session) (channel.Message, error) {
	*sess = session{state: StateStart}
	return parkListScreen(m.cat), nil
}

func (m *Machine) park(id string) catalog.Park {
	p, ok := m.cat.Park(id)
	if !ok {
		logrus.Warnf("unknown park %s, using %s", id, m.cat.Parks[0].ID)
		return m.cat.Parks[0]
	}
	return p
}

func (m *Machine) viewPark(ctx context.Context, actor channel.Actor, ev Event, sess *session) (channel.Message, error) {
	return parkDetailScreen(m.park(ev.ParkID)), nil
}

func (m *Machine) confirmPark(ctx context.Context, actor channel.Actor, ev Event, sess *session) (channel.Message, error) {
	p := m.park(ev.ParkID)
	sess.sel.ParkID = p.ID
	sess.sel.ParkName = p.Name

	return dateMenuScreen(p.Name, DateMenu(m.now(), m.loc)), nil
}

func (m *Machine) chooseDate(ctx context.Context, actor channel.Actor, ev Event, sess *session) (channel.Message, error) {
	d := DateAhead(m.now(), m.loc, ev.DaysAhead)
	sess.sel.Date = d.Format(booking.DateLayout)
	sess.sel.DateDisplay = DateDisplay(d, ev.DaysAhead)

	return periodMenuScreen(m.cat, sess.sel), nil
}

func (m *Machine) choosePeriod(ctx context.Context, actor channel.Actor, ev Event, sess *session) (channel.Message, error) {
	p, ok := m.cat.Period(ev.Period)
	if !ok {
		return channel.Message{}, fmt.Errorf("%w: period %s", ErrUnknownToken, ev.Period)
	}
	sess.sel.Period = p.ID

	return timeMenuScreen(p, sess.sel), nil
}

func (m *Machine) chooseTime(ctx context.Context, actor channel.Actor, ev Event, sess *session) (channel.Message, error) {
	if !m.cat.HasTimeSlot(ev.Time) {
		return channel.Message{}, fmt.Errorf("%w: time slot %s", ErrUnknownToken, ev.Time)
	}
	sess.sel.Time = ev.Time

	return equipmentCheckScreen(sess.sel), nil
}

func (m *Machine) equipmentYes(ctx context.Context, actor channel.Actor, ev Event, sess *session) (channel.Message, error) {
	sess.sel.Equipment = booking.EquipmentNone

	return confirmScreen(m.cat, sess.sel), nil
}

func (m *Machine) equipmentNo(ctx context.Context, actor channel.Actor, ev Event, sess *session) (channel.Message, error) {
	return equipmentMenuScreen(sess.sel), nil
}

func (m *Machine) chooseEquipment(ctx context.Context, actor channel.Actor, ev Event, sess *session) (channel.Message, error) {
	sess.sel.Equipment = ev.Equipment

	return confirmScreen(m.cat, sess.sel), nil
}

func (m *Machine) finalConfirm(ctx context.Context, actor channel.Actor, ev Event, sess *session) (channel.Message, error) {
	if sess.sel.Equipment == "" {
		sess.sel.Equipment = booking.EquipmentNone
	}

	id, err := m.submitter.Submit(ctx, actor, sess.sel)
	if err != nil {
		logrus.Errorf("failed to submit booking for user %d: %v", actor.ID, err)
		sess.state = StateAwaitingConfirm
		return submitFailedScreen(), nil
	}

	logrus.Infof("user %d submitted booking %s", actor.ID, id)
	return submittedScreen(m.cat, sess.sel), nil
}

func (m *Machine) cancel(ctx context.Context, actor channel.Actor, ev Event, sess *session) (channel.Message, error) {
	return cancelledScreen(), nil
}
