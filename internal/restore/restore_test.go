package restore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"serotonyl.ru/kamasbot/internal/common"
	"serotonyl.ru/kamasbot/internal/features/listings"
	"serotonyl.ru/kamasbot/internal/features/threads"
	"serotonyl.ru/kamasbot/internal/platform"
	"serotonyl.ru/kamasbot/internal/store"
)

type fakeListings struct {
	active    []*listings.Listing
	missing   map[string]bool
	reposted  []string
	repostErr error
}

func (f *fakeListings) ListActive(ctx context.Context) ([]*listings.Listing, error) {
	return f.active, nil
}

func (f *fakeListings) ProbeMessage(l *listings.Listing) error {
	if f.missing[l.ID] {
		return common.ErrNotFound
	}
	return nil
}

func (f *fakeListings) Repost(ctx context.Context, l *listings.Listing) error {
	if f.repostErr != nil {
		return f.repostErr
	}
	f.reposted = append(f.reposted, l.ID)
	return nil
}

type fakeThreads struct {
	links   []*threads.Link
	dead    map[int64]bool
	dropped []int64
}

func (f *fakeThreads) Links(ctx context.Context) ([]*threads.Link, error) {
	return f.links, nil
}

func (f *fakeThreads) ThreadAlive(link *threads.Link) bool {
	return !f.dead[link.ThreadID]
}

func (f *fakeThreads) DropLink(ctx context.Context, link *threads.Link) error {
	f.dropped = append(f.dropped, link.ThreadID)
	return nil
}

type fakePanelStore struct {
	records map[string][]byte
}

func (f *fakePanelStore) Get(ctx context.Context, kind, key string) (*store.Record, error) {
	payload, ok := f.records[kind+"/"+key]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &store.Record{Kind: kind, Key: key, Payload: payload}, nil
}

func (f *fakePanelStore) Append(ctx context.Context, kind, key string, payload []byte) error {
	if _, ok := f.records[kind+"/"+key]; ok {
		return errors.New("ключ уже занят")
	}
	if f.records == nil {
		f.records = make(map[string][]byte)
	}
	f.records[kind+"/"+key] = payload
	return nil
}

func (f *fakePanelStore) Update(ctx context.Context, kind, key string, payload []byte) error {
	if _, ok := f.records[kind+"/"+key]; !ok {
		return common.ErrNotFound
	}
	f.records[kind+"/"+key] = payload
	return nil
}

// fakeClient реализует platform.Client; живость сообщений панели
// задаётся полем deadMessages.
type fakeClient struct {
	nextMessageID int
	sent          []string
	edited        []int
	deadMessages  map[int]bool
}

func (f *fakeClient) SendMessage(chatID int64, text string) (int, error) {
	f.nextMessageID++
	f.sent = append(f.sent, text)
	return f.nextMessageID, nil
}

func (f *fakeClient) SendMessageWithButtons(chatID int64, text string, buttons [][]platform.Button) (int, error) {
	return f.SendMessage(chatID, text)
}

func (f *fakeClient) EditMessageText(chatID int64, messageID int, text string) error {
	if f.deadMessages[messageID] {
		return common.ErrNotFound
	}
	f.edited = append(f.edited, messageID)
	return nil
}

func (f *fakeClient) EditMessageButtons(chatID int64, messageID int, buttons [][]platform.Button) error {
	if f.deadMessages[messageID] {
		return common.ErrNotFound
	}
	return nil
}

func (f *fakeClient) DeleteMessage(chatID int64, messageID int) error { return nil }

func (f *fakeClient) CreateThread(chatID int64, name string) (int64, error) { return 1, nil }

func (f *fakeClient) SendToThread(chatID, threadID int64, text string) (int, error) { return 0, nil }

func (f *fakeClient) CloseThread(chatID, threadID int64) error { return nil }

func (f *fakeClient) ThreadExists(chatID, threadID int64) bool { return true }

func (f *fakeClient) AssignRole(userID int64, role string) error { return nil }

func (f *fakeClient) SendDM(userID int64, text string) error { return nil }

func (f *fakeClient) AnswerCallback(callbackID, text string) error { return nil }

func TestRunRepostsMissingListings(t *testing.T) {
	ls := &fakeListings{
		active: []*listings.Listing{
			{ID: "A", MessageID: 10},
			{ID: "B", MessageID: 11},
			{ID: "C", MessageID: 12},
		},
		missing: map[string]bool{"B": true},
	}
	r := New(ls, &fakeThreads{}, &fakePanelStore{}, &fakeClient{}, 100)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ls.reposted) != 1 || ls.reposted[0] != "B" {
		t.Errorf("reposted = %v, ожидали только B", ls.reposted)
	}
}

func TestRunDropsDeadThreadLinks(t *testing.T) {
	th := &fakeThreads{
		links: []*threads.Link{
			{ThreadID: 1, Name: "Transaction-aaaa"},
			{ThreadID: 2, Name: "Transaction-bbbb"},
		},
		dead: map[int64]bool{2: true},
	}
	r := New(&fakeListings{}, th, &fakePanelStore{}, &fakeClient{}, 100)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(th.dropped) != 1 || th.dropped[0] != 2 {
		t.Errorf("dropped = %v, ожидали только тему 2", th.dropped)
	}
}

func TestRunRestoresPanel(t *testing.T) {
	records := &fakePanelStore{}
	client := &fakeClient{}
	r := New(&fakeListings{}, &fakeThreads{}, records, client, 100)

	// Первый прогон публикует панель и запоминает сообщение.
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	rec, err := records.Get(context.Background(), store.KindPanel, panelKey)
	if err != nil {
		t.Fatalf("панель не записана: %v", err)
	}
	var panel panelRecord
	if err := json.Unmarshal(rec.Payload, &panel); err != nil {
		t.Fatalf("нечитаемая запись панели: %v", err)
	}
	if panel.MessageID == 0 {
		t.Fatal("запись панели без идентификатора сообщения")
	}

	// Повторный прогон с живой панелью ничего не публикует.
	sentBefore := len(client.sent)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(client.sent) != sentBefore {
		t.Error("живая панель не должна публиковаться повторно")
	}

	// Панель удалили руками — прогон публикует новую.
	client.deadMessages = map[int]bool{panel.MessageID: true}
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(client.sent) != sentBefore+1 {
		t.Error("пропавшая панель должна публиковаться заново")
	}
}

func TestResetPanelRepaintsLiveMessage(t *testing.T) {
	records := &fakePanelStore{}
	client := &fakeClient{}
	r := New(&fakeListings{}, &fakeThreads{}, records, client, 100)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	sentBefore := len(client.sent)

	// Живое сообщение перерисовывается на месте, без новой публикации.
	if err := r.ResetPanel(context.Background()); err != nil {
		t.Fatalf("ResetPanel: %v", err)
	}
	if len(client.sent) != sentBefore {
		t.Error("живая панель должна перерисовываться, а не публиковаться заново")
	}
	if len(client.edited) == 0 {
		t.Error("текст живой панели должен быть перерисован")
	}
}

func TestResetPanelRepublishesDeadMessage(t *testing.T) {
	records := &fakePanelStore{}
	client := &fakeClient{}
	r := New(&fakeListings{}, &fakeThreads{}, records, client, 100)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	rec, _ := records.Get(context.Background(), store.KindPanel, panelKey)
	var old panelRecord
	if err := json.Unmarshal(rec.Payload, &old); err != nil {
		t.Fatalf("нечитаемая запись панели: %v", err)
	}

	client.deadMessages = map[int]bool{old.MessageID: true}
	sentBefore := len(client.sent)
	if err := r.ResetPanel(context.Background()); err != nil {
		t.Fatalf("ResetPanel: %v", err)
	}
	if len(client.sent) != sentBefore+1 {
		t.Fatal("пропавшая панель должна публиковаться заново")
	}

	// Существующая запись обновляется на новое сообщение.
	rec, _ = records.Get(context.Background(), store.KindPanel, panelKey)
	var renewed panelRecord
	if err := json.Unmarshal(rec.Payload, &renewed); err != nil {
		t.Fatalf("нечитаемая запись панели: %v", err)
	}
	if renewed.MessageID == old.MessageID {
		t.Error("запись панели должна ссылаться на новое сообщение")
	}
}

func TestRunContinuesAfterRepostFailure(t *testing.T) {
	ls := &fakeListings{
		active:    []*listings.Listing{{ID: "A"}, {ID: "B"}},
		missing:   map[string]bool{"A": true, "B": true},
		repostErr: errors.New("сеть недоступна"),
	}
	th := &fakeThreads{
		links: []*threads.Link{{ThreadID: 5}},
		dead:  map[int64]bool{5: true},
	}
	r := New(ls, th, &fakePanelStore{}, &fakeClient{}, 100)

	// Сбой перепубликации не должен останавливать остальное восстановление.
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(th.dropped) != 1 {
		t.Error("мёртвая привязка должна быть снята несмотря на сбои объявлений")
	}
}
