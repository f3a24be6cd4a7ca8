package approval

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/msksk8cool/sk8school-bot/pkg/achievement"
	"github.com/msksk8cool/sk8school-bot/pkg/booking"
	"github.com/msksk8cool/sk8school-bot/pkg/catalog"
	"github.com/msksk8cool/sk8school-bot/pkg/channel"
	"github.com/msksk8cool/sk8school-bot/pkg/flow"
	"github.com/msksk8cool/sk8school-bot/pkg/progress"
	"github.com/msksk8cool/sk8school-bot/pkg/reminder"
	"github.com/msksk8cool/sk8school-bot/pkg/store"
)

const adminID int64 = 1000

var (
	moscow   = time.FixedZone("MSK", 3*60*60)
	testNow  = time.Date(2025, 6, 12, 10, 0, 0, 0, moscow)
	student  = channel.Actor{ID: 42, FirstName: "Ivan", Username: "ivan"}
	admin    = channel.Actor{ID: adminID, FirstName: "Coach"}
	adminMsg = channel.MessageRef{ChatID: adminID, MessageID: 7}
)

type fakeChannel struct {
	mu      sync.Mutex
	sent    map[int64][]channel.Message
	edits   []channel.Message
	sendErr error
	editErr error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{sent: make(map[int64][]channel.Message)}
}

func (f *fakeChannel) Send(ctx context.Context, chatID int64, msg channel.Message) (channel.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return channel.MessageRef{}, f.sendErr
	}
	f.sent[chatID] = append(f.sent[chatID], msg)
	return channel.MessageRef{ChatID: chatID, MessageID: len(f.sent[chatID])}, nil
}

func (f *fakeChannel) Edit(ctx context.Context, ref channel.MessageRef, msg channel.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, msg)
	return nil
}

func (f *fakeChannel) Answer(ctx context.Context, callbackID, text string) error {
	return nil
}

func (f *fakeChannel) lastEdit() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.edits) == 0 {
		return ""
	}
	return f.edits[len(f.edits)-1].Text
}

type fakeProgress struct {
	sessions []progress.SessionInput
	unlocks  []achievement.Unlock
	err      error
}

func (f *fakeProgress) AddSession(ctx context.Context, in progress.SessionInput) (*progress.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sessions = append(f.sessions, in)
	return &progress.Result{NewAchievements: f.unlocks, Total: len(f.sessions)}, nil
}

func (f *fakeProgress) UserProgress(ctx context.Context, userID int64) (*progress.Summary, bool) {
	if len(f.sessions) == 0 {
		return nil, false
	}
	return &progress.Summary{UserName: "Ivan", Username: "ivan", Total: len(f.sessions)}, true
}

type fakeReminders struct {
	jobs []reminder.Job
	err  error
}

func (f *fakeReminders) Schedule(ctx context.Context, job reminder.Job) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.jobs = append(f.jobs, job)
	return true, nil
}

type fixture struct {
	gate      *Gate
	ch        *fakeChannel
	bookings  *booking.Repository
	progress  *fakeProgress
	reminders *fakeReminders
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend, err := store.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}

	f := &fixture{
		ch:        newFakeChannel(),
		bookings:  booking.NewRepository(backend, booking.RepositoryConfig{Now: func() time.Time { return testNow }, Location: moscow}),
		progress:  &fakeProgress{},
		reminders: &fakeReminders{},
	}
	f.gate = NewGate(Config{
		AdminID:  adminID,
		Catalog:  catalog.Default(),
		Location: moscow,
		Now:      func() time.Time { return testNow },
	}, f.ch, f.bookings, f.progress, f.reminders)
	return f
}

func testSelection() flow.Selection {
	return flow.Selection{
		ParkID:      "park2",
		ParkName:    "Скейт-парк у м. Тропарево 🌅",
		Date:        "2025-06-13",
		DateDisplay: "Завтра",
		Period:      "evening",
		Time:        "18:00",
		Equipment:   booking.EquipmentBoth,
	}
}

func testRef() flow.DecisionRef {
	return flow.DecisionRef{UserID: student.ID, ParkID: "park2", Date: "2025-06-13", Time: "18:00"}
}

func (f *fixture) submit(t *testing.T) string {
	t.Helper()
	id, err := f.gate.Submit(context.Background(), student, testSelection())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	return id
}

func TestGate_Submit(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t)

	b, err := f.bookings.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if b.Status != booking.StatusPending || b.ParkID != "park2" || b.Equipment != booking.EquipmentBoth {
		t.Errorf("stored booking = %+v", b)
	}

	msgs := f.ch.sent[adminID]
	if len(msgs) != 1 {
		t.Fatalf("admin got %d messages, want 1", len(msgs))
	}
	text := msgs[0].Text
	for _, want := range []string{"Новая заявка", "@ivan", "Завтра", "18:00", "Защита + Скейтборд", "1500₽"} {
		if !strings.Contains(text, want) {
			t.Errorf("admin message missing %q:\n%s", want, text)
		}
	}

	kb := msgs[0].Keyboard
	if len(kb) != 2 || kb[0][0].Token != "admin_approve_42_park2_2025-06-13_18:00" || kb[1][0].Token != "admin_reject_42_park2_2025-06-13_18:00" {
		t.Errorf("admin keyboard = %+v", kb)
	}
}

func TestGate_SubmitEscapesUserFields(t *testing.T) {
	f := newFixture(t)
	actor := channel.Actor{ID: 43, FirstName: "Ivan_P", Username: "ivan_petrov"}
	if _, err := f.gate.Submit(context.Background(), actor, testSelection()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	msgs := f.ch.sent[adminID]
	if len(msgs) != 1 {
		t.Fatalf("admin got %d messages, want 1", len(msgs))
	}
	text := msgs[0].Text
	if !strings.Contains(text, `@ivan\_petrov`) || !strings.Contains(text, `Ivan\_P`) {
		t.Errorf("admin message not escaped:\n%s", text)
	}
	if strings.Contains(text, "@ivan_petrov") {
		t.Errorf("admin message has raw username:\n%s", text)
	}
}

func TestGate_SubmitAdminUnreachable(t *testing.T) {
	f := newFixture(t)
	f.ch.sendErr = errors.New("chat not found")

	id, err := f.gate.Submit(context.Background(), student, testSelection())
	if err != nil {
		t.Fatalf("Submit() error = %v, want nil", err)
	}
	if _, err := f.bookings.Get(context.Background(), id); err != nil {
		t.Errorf("booking should be stored even when the admin is unreachable: %v", err)
	}
}

func TestGate_SubmitUnknownParkFallsBack(t *testing.T) {
	f := newFixture(t)
	sel := testSelection()
	sel.ParkID = "nowhere"

	id, err := f.gate.Submit(context.Background(), student, sel)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	b, _ := f.bookings.Get(context.Background(), id)
	if b.ParkID != "park1" {
		t.Errorf("ParkID = %q, want park1", b.ParkID)
	}
}

func TestGate_Approve(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t)
	f.progress.unlocks = []achievement.Unlock{{ID: "first_session", Name: "🎯 Первая тренировка", Description: "Записался на первую тренировку!"}}

	results, err := f.gate.Approve(context.Background(), admin, testRef(), adminMsg)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if len(results) != 6 {
		t.Fatalf("ran %d steps, want 6", len(results))
	}
	for _, r := range results {
		if !r.Success {
			t.Errorf("step %s failed: %s", r.Step, r.Error)
		}
	}

	b, _ := f.bookings.Get(context.Background(), id)
	if b.Status != booking.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", b.Status)
	}

	if !strings.Contains(f.ch.lastEdit(), "Заявка подтверждена") {
		t.Errorf("admin message = %q", f.ch.lastEdit())
	}

	userMsgs := f.ch.sent[student.ID]
	if len(userMsgs) != 3 {
		t.Fatalf("user got %d messages, want confirmation, achievements and progress", len(userMsgs))
	}
	if !strings.Contains(userMsgs[0].Text, "https://yandex.ru/maps/-/CLEz5Zo9") {
		t.Errorf("confirmation lacks map link: %s", userMsgs[0].Text)
	}
	if !strings.Contains(userMsgs[1].Text, "Новые достижения") {
		t.Errorf("achievement message = %s", userMsgs[1].Text)
	}

	if len(f.reminders.jobs) != 1 {
		t.Fatalf("armed %d reminders, want 1", len(f.reminders.jobs))
	}
	job := f.reminders.jobs[0]
	if job.UserName != "Ivan" || job.ParkLink != "https://yandex.ru/maps/-/CLEz5Zo9" || job.Time != "18:00" {
		t.Errorf("reminder job = %+v", job)
	}

	if len(f.progress.sessions) != 1 || f.progress.sessions[0].Date != "2025-06-13" {
		t.Errorf("progress sessions = %+v", f.progress.sessions)
	}
}

func TestGate_ApproveIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.submit(t)

	if _, err := f.gate.Approve(context.Background(), admin, testRef(), adminMsg); err != nil {
		t.Fatalf("first Approve() error = %v", err)
	}
	results, err := f.gate.Approve(context.Background(), admin, testRef(), adminMsg)
	if err != nil {
		t.Fatalf("second Approve() error = %v", err)
	}
	if results != nil {
		t.Errorf("second approve ran steps: %+v", results)
	}
	if len(f.progress.sessions) != 1 || len(f.reminders.jobs) != 1 {
		t.Errorf("second approve repeated side effects: sessions=%d reminders=%d", len(f.progress.sessions), len(f.reminders.jobs))
	}
	if !strings.Contains(f.ch.lastEdit(), "уже подтверждена") {
		t.Errorf("admin message = %q", f.ch.lastEdit())
	}
}

func TestGate_ApproveUnauthorized(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t)

	_, err := f.gate.Approve(context.Background(), student, testRef(), adminMsg)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Approve() error = %v, want ErrUnauthorized", err)
	}
	if f.ch.lastEdit() != noPermissionText {
		t.Errorf("notice = %q", f.ch.lastEdit())
	}

	b, _ := f.bookings.Get(context.Background(), id)
	if b.Status != booking.StatusPending {
		t.Errorf("status = %s, want pending", b.Status)
	}
}

func TestGate_ApproveNotFound(t *testing.T) {
	f := newFixture(t)

	results, err := f.gate.Approve(context.Background(), admin, testRef(), adminMsg)
	if err != nil || results != nil {
		t.Fatalf("Approve() = %v, %v", results, err)
	}
	if !strings.Contains(f.ch.lastEdit(), "не найдена") {
		t.Errorf("admin message = %q", f.ch.lastEdit())
	}
}

func TestGate_ApproveStepsAreBestEffort(t *testing.T) {
	f := newFixture(t)
	f.submit(t)
	f.ch.editErr = errors.New("message is too old")
	f.reminders.err = errors.New("redis down")

	results, err := f.gate.Approve(context.Background(), admin, testRef(), adminMsg)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	failed := map[string]bool{}
	for _, r := range results {
		if !r.Success {
			failed[r.Step] = true
		}
	}
	if !failed["update_admin_message"] || !failed["schedule_reminder"] {
		t.Errorf("failed steps = %v", failed)
	}
	if len(f.progress.sessions) != 1 {
		t.Error("progress should be recorded after earlier steps fail")
	}
}

func TestGate_Reject(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t)

	if _, err := f.gate.Reject(context.Background(), admin, testRef(), adminMsg, ""); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}

	b, _ := f.bookings.Get(context.Background(), id)
	if b.Status != booking.StatusRejected || b.RejectionReason != "Отклонено тренером" {
		t.Errorf("booking = %+v", b)
	}
	userMsgs := f.ch.sent[student.ID]
	if len(userMsgs) != 1 || !strings.Contains(userMsgs[0].Text, "Попробуйте выбрать другое время") {
		t.Errorf("user messages = %+v", userMsgs)
	}
	if len(f.reminders.jobs) != 0 || len(f.progress.sessions) != 0 {
		t.Error("reject must not arm reminders or record progress")
	}

	results, err := f.gate.Reject(context.Background(), admin, testRef(), adminMsg, "")
	if err != nil || results != nil {
		t.Errorf("repeated Reject() = %v, %v", results, err)
	}
	if !strings.Contains(f.ch.lastEdit(), "уже отклонена") {
		t.Errorf("admin message = %q", f.ch.lastEdit())
	}
}

func TestGate_RejectUnauthorized(t *testing.T) {
	f := newFixture(t)
	f.submit(t)

	if _, err := f.gate.Reject(context.Background(), student, testRef(), adminMsg, ""); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Reject() error = %v, want ErrUnauthorized", err)
	}
}

func TestRunSteps_ContinuesAfterFailure(t *testing.T) {
	var ran []string
	steps := []step{
		{name: "a", run: func(ctx context.Context) error { ran = append(ran, "a"); return errors.New("boom") }},
		{name: "b", run: func(ctx context.Context) error { ran = append(ran, "b"); return nil }},
	}

	results := runSteps(context.Background(), "booking_x", steps)
	if len(ran) != 2 {
		t.Errorf("ran = %v", ran)
	}
	if results[0].Success || results[0].Error != "boom" || !results[1].Success {
		t.Errorf("results = %+v", results)
	}
}
