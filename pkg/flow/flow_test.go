package flow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/msksk8cool/sk8school-bot/pkg/booking"
	"github.com/msksk8cool/sk8school-bot/pkg/catalog"
	"github.com/msksk8cool/sk8school-bot/pkg/channel"
)

type fakeSubmitter struct {
	got []Selection
	err error
}

func (f *fakeSubmitter) Submit(ctx context.Context, actor channel.Actor, sel Selection) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.got = append(f.got, sel)
	return "booking_test", nil
}

var (
	moscow = time.FixedZone("MSK", 3*60*60)
	// Thursday
	testNow = time.Date(2025, 6, 12, 10, 0, 0, 0, moscow)
	ivan    = channel.Actor{ID: 777, FirstName: "Ivan", Username: "ivan"}
)

func newTestMachine(sub Submitter) *Machine {
	return NewMachine(Config{
		Catalog:  catalog.Default(),
		Location: moscow,
		Now:      func() time.Time { return testNow },
	}, sub)
}

func apply(t *testing.T, m *Machine, token string) channel.Message {
	t.Helper()
	ev, err := DecodeToken(token)
	if err != nil {
		t.Fatalf("DecodeToken(%q) error = %v", token, err)
	}
	msg, err := m.Apply(context.Background(), ivan, ev)
	if err != nil {
		t.Fatalf("Apply(%q) error = %v", token, err)
	}
	return msg
}

func hasToken(kb channel.Keyboard, token string) bool {
	for _, row := range kb {
		for _, b := range row {
			if b.Token == token {
				return true
			}
		}
	}
	return false
}

func TestDecodeToken(t *testing.T) {
	tests := []struct {
		token   string
		want    Event
		wantErr bool
	}{
		{token: "main_menu", want: Event{Kind: EventMainMenu}},
		{token: "training_info", want: Event{Kind: EventStartBooking}},
		{token: "park_park2", want: Event{Kind: EventViewPark, ParkID: "park2"}},
		{token: "confirm_park_park2", want: Event{Kind: EventConfirmPark, ParkID: "park2"}},
		{token: "date_1_days", want: Event{Kind: EventChooseDate, DaysAhead: 1}},
		{token: "date_7_days", want: Event{Kind: EventChooseDate, DaysAhead: 7}},
		{token: "date_8_days", wantErr: true},
		{token: "date_0_days", wantErr: true},
		{token: "period_evening", want: Event{Kind: EventChoosePeriod, Period: "evening"}},
		{token: "time_20:00", want: Event{Kind: EventChooseTime, Time: "20:00"}},
		{token: "time_header_day", wantErr: true},
		{token: "equipment_yes", want: Event{Kind: EventEquipmentYes}},
		{token: "equipment_both", want: Event{Kind: EventChooseEquipment, Equipment: booking.EquipmentBoth}},
		{token: "equipment_none", wantErr: true},
		{token: "final_confirm", want: Event{Kind: EventFinalConfirm}},
		{token: "booking_cancel", want: Event{Kind: EventCancel}},
		{
			token: "admin_approve_777_park2_2025-06-13_20:00",
			want:  Event{Kind: EventAdminApprove, Decision: DecisionRef{UserID: 777, ParkID: "park2", Date: "2025-06-13", Time: "20:00"}},
		},
		{
			token: "admin_reject_777_park2_2025-06-13_20:00",
			want:  Event{Kind: EventAdminReject, Decision: DecisionRef{UserID: 777, ParkID: "park2", Date: "2025-06-13", Time: "20:00"}},
		},
		{token: "admin_approve_abc_park2_2025-06-13_20:00", wantErr: true},
		{token: "admin_reject_777", wantErr: true},
		{token: "play_game", wantErr: true},
		{token: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := DecodeToken(tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownToken) {
					t.Errorf("DecodeToken() error = %v, want ErrUnknownToken", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeToken() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodeToken() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecisionTokens_RoundTrip(t *testing.T) {
	ref := DecisionRef{UserID: 123456789, ParkID: "park4", Date: "2025-12-31", Time: "22:00"}

	ev, err := DecodeToken(ApproveToken(ref))
	if err != nil || ev.Decision != ref {
		t.Errorf("approve round trip = %+v, %v", ev, err)
	}
	if len(ApproveToken(ref)) > 64 {
		t.Errorf("token exceeds callback data limit: %d bytes", len(ApproveToken(ref)))
	}
}

func TestDateMenu(t *testing.T) {
	opts := DateMenu(testNow, moscow)

	if len(opts) != MaxDaysAhead {
		t.Fatalf("DateMenu() len = %d, want %d", len(opts), MaxDaysAhead)
	}
	if opts[0].Label != "🎯 Завтра" {
		t.Errorf("first label = %q", opts[0].Label)
	}
	if opts[1].Label != "📋 Сб, 14 июн" {
		t.Errorf("second label = %q", opts[1].Label)
	}
	if opts[6].DaysAhead != 7 || opts[6].Date.Day() != 19 {
		t.Errorf("last option = %+v", opts[6])
	}
}

func TestDateDisplay(t *testing.T) {
	if got := DateDisplay(time.Date(2025, 6, 13, 0, 0, 0, 0, moscow), 1); got != "Завтра" {
		t.Errorf("tomorrow = %q", got)
	}
	if got := DateDisplay(time.Date(2025, 6, 16, 0, 0, 0, 0, moscow), 4); got != "Понедельник, 16 июня" {
		t.Errorf("monday = %q", got)
	}
}

func TestMachine_FullBooking(t *testing.T) {
	sub := &fakeSubmitter{}
	m := newTestMachine(sub)

	apply(t, m, "training_info")
	parks := apply(t, m, "select_park")
	if !hasToken(parks.Keyboard, "park_park2") {
		t.Fatal("park list should offer park2")
	}

	apply(t, m, "park_park2")
	dates := apply(t, m, "confirm_park_park2")
	if len(dates.Keyboard) != MaxDaysAhead+2 {
		t.Errorf("date menu rows = %d", len(dates.Keyboard))
	}

	apply(t, m, "date_1_days")
	times := apply(t, m, "period_evening")
	for _, slot := range []string{"18:00", "20:00", "22:00"} {
		if !hasToken(times.Keyboard, "time_"+slot) {
			t.Errorf("evening should offer %s", slot)
		}
	}

	apply(t, m, "time_20:00")
	menu := apply(t, m, "equipment_no")
	if m.State(ivan.ID) != StateEquipmentMenu || !hasToken(menu.Keyboard, "equipment_both") {
		t.Fatalf("expected equipment menu, state %s", m.State(ivan.ID))
	}

	summary := apply(t, m, "equipment_both")
	for _, want := range []string{"Тропарево", "Завтра", "20:00", "🛡️🛹 Защита + Скейтборд", "1500₽", "60-90 минут"} {
		if !strings.Contains(summary.Text, want) {
			t.Errorf("summary missing %q", want)
		}
	}

	done := apply(t, m, "final_confirm")
	if !strings.Contains(done.Text, "Заявка отправлена") {
		t.Errorf("unexpected final screen: %s", done.Text)
	}

	if len(sub.got) != 1 {
		t.Fatalf("expected one submission, got %d", len(sub.got))
	}
	want := Selection{
		ParkID:      "park2",
		ParkName:    catalog.Default().Parks[1].Name,
		Date:        "2025-06-13",
		DateDisplay: "Завтра",
		Period:      "evening",
		Time:        "20:00",
		Equipment:   booking.EquipmentBoth,
	}
	if sub.got[0] != want {
		t.Errorf("submitted %+v, want %+v", sub.got[0], want)
	}

	if _, ok := m.Selection(ivan.ID); ok {
		t.Error("selection should be discarded after submit")
	}
	if m.State(ivan.ID) != StateStart {
		t.Errorf("state after submit = %s", m.State(ivan.ID))
	}
}

func TestMachine_EquipmentYesSkipsMenu(t *testing.T) {
	m := newTestMachine(&fakeSubmitter{})

	for _, tok := range []string{"confirm_park_park1", "date_3_days", "period_day", "time_12:00"} {
		apply(t, m, tok)
	}
	msg := apply(t, m, "equipment_yes")

	if m.State(ivan.ID) != StateAwaitingConfirm {
		t.Errorf("state = %s, want awaiting confirm", m.State(ivan.ID))
	}
	if !strings.Contains(msg.Text, "✨ У меня всё есть") {
		t.Errorf("summary should show own equipment: %s", msg.Text)
	}
	sel, _ := m.Selection(ivan.ID)
	if sel.Equipment != booking.EquipmentNone || sel.Date != "2025-06-15" {
		t.Errorf("selection = %+v", sel)
	}
}

func TestMachine_OutOfOrderUsesPlaceholders(t *testing.T) {
	m := newTestMachine(&fakeSubmitter{})

	msg := apply(t, m, "time_20:00")
	if !strings.Contains(msg.Text, "*Парк:* Парк") || !strings.Contains(msg.Text, "*Дата:* Дата") {
		t.Errorf("expected placeholders, got %s", msg.Text)
	}
	if m.State(ivan.ID) != StateTimeSelected {
		t.Errorf("state = %s", m.State(ivan.ID))
	}

	msg = apply(t, m, "equipment_no")
	if !strings.Contains(msg.Text, "*Время:* 20:00") {
		t.Errorf("time should be kept: %s", msg.Text)
	}
}

func TestMachine_SelectParkDropsLaterChoices(t *testing.T) {
	sub := &fakeSubmitter{}
	m := newTestMachine(sub)

	for _, tok := range []string{"confirm_park_park2", "date_1_days", "period_evening", "time_20:00", "equipment_no", "equipment_both"} {
		apply(t, m, tok)
	}
	apply(t, m, "select_park")

	if m.State(ivan.ID) != StateStart {
		t.Errorf("state = %s, want start", m.State(ivan.ID))
	}
	if sel, _ := m.Selection(ivan.ID); sel != (Selection{}) {
		t.Errorf("selection after returning to the park list = %+v, want empty", sel)
	}

	// A confirm button from the old summary must not resubmit the old choices.
	apply(t, m, "final_confirm")
	if len(sub.got) != 1 {
		t.Fatalf("expected one submission, got %d", len(sub.got))
	}
	got := sub.got[0]
	if got.ParkID != "" || got.Date != "" || got.Time != "" || got.Equipment != booking.EquipmentNone {
		t.Errorf("stale selection submitted: %+v", got)
	}
}

func TestMachine_SubmitFailureKeepsSelection(t *testing.T) {
	m := newTestMachine(&fakeSubmitter{err: errors.New("disk full")})

	for _, tok := range []string{"confirm_park_park1", "date_2_days", "period_day", "time_14:00", "equipment_yes"} {
		apply(t, m, tok)
	}
	msg := apply(t, m, "final_confirm")

	if !strings.Contains(msg.Text, "Произошла ошибка") {
		t.Errorf("unexpected screen: %s", msg.Text)
	}
	if m.State(ivan.ID) != StateAwaitingConfirm {
		t.Errorf("state = %s", m.State(ivan.ID))
	}
}

func TestMachine_CancelAndMainMenuDiscard(t *testing.T) {
	sub := &fakeSubmitter{}
	m := newTestMachine(sub)

	for _, tok := range []string{"confirm_park_park1", "date_2_days", "period_day", "time_14:00", "equipment_yes"} {
		apply(t, m, tok)
	}
	msg := apply(t, m, "booking_cancel")
	if !strings.Contains(msg.Text, "Запись отменена") {
		t.Errorf("unexpected cancel screen: %s", msg.Text)
	}
	if _, ok := m.Selection(ivan.ID); ok {
		t.Error("cancel should discard the selection")
	}

	apply(t, m, "confirm_park_park3")
	apply(t, m, "main_menu")
	if _, ok := m.Selection(ivan.ID); ok {
		t.Error("main menu should discard the selection")
	}
	if len(sub.got) != 0 {
		t.Error("nothing should have been submitted")
	}
}

func TestMachine_UnknownPeriod(t *testing.T) {
	m := newTestMachine(&fakeSubmitter{})

	_, err := m.Apply(context.Background(), ivan, Event{Kind: EventChoosePeriod, Period: "night"})
	if !errors.Is(err, ErrUnknownToken) {
		t.Errorf("Apply() error = %v, want ErrUnknownToken", err)
	}
}

func TestMachine_Handles(t *testing.T) {
	m := newTestMachine(&fakeSubmitter{})

	if !m.Handles(EventFinalConfirm) {
		t.Error("machine should handle final confirm")
	}
	if m.Handles(EventAdminApprove) || m.Handles(EventMyProgress) {
		t.Error("machine should not handle admin or progress events")
	}
}
