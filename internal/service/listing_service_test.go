package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/FanzeeApp/sotvolbackend/internal/apperr"
	"github.com/FanzeeApp/sotvolbackend/internal/model"
	"github.com/FanzeeApp/sotvolbackend/internal/repository"
)

type fakeListingStore struct {
	listings map[int]*model.Listing
	nextCode int
	deleted  []int
	updates  map[string]interface{}
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{listings: make(map[int]*model.Listing), nextCode: 1000}
}

func (s *fakeListingStore) NextCode(ctx context.Context) (int, error) {
	s.nextCode++
	return s.nextCode, nil
}

func (s *fakeListingStore) Create(ctx context.Context, l *model.Listing) error {
	l.Status = model.ListingAvailable
	cp := *l
	s.listings[l.Code] = &cp
	return nil
}

func (s *fakeListingStore) GetByCode(ctx context.Context, code int) (*model.Listing, error) {
	l, ok := s.listings[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *l
	return &cp, nil
}

func (s *fakeListingStore) List(ctx context.Context, f repository.ListFilter) ([]model.Listing, error) {
	var out []model.Listing
	for _, l := range s.listings {
		out = append(out, *l)
	}
	return out, nil
}

func (s *fakeListingStore) Update(ctx context.Context, code int, fields map[string]interface{}) error {
	if _, ok := s.listings[code]; !ok {
		return sql.ErrNoRows
	}
	s.updates = fields
	return nil
}

func (s *fakeListingStore) Delete(ctx context.Context, code int) error {
	if _, ok := s.listings[code]; !ok {
		return sql.ErrNoRows
	}
	delete(s.listings, code)
	s.deleted = append(s.deleted, code)
	return nil
}

func (s *fakeListingStore) SetChannelMessageID(ctx context.Context, code, messageID int) error {
	if l, ok := s.listings[code]; ok {
		l.ChannelMessageID = sql.NullInt64{Int64: int64(messageID), Valid: true}
	}
	return nil
}

type fakeMediaStore struct {
	saved   []string
	deleted []string
}

func (s *fakeMediaStore) Save(ctx context.Context, filename, contentType string, src io.Reader) (string, error) {
	if _, err := io.ReadAll(src); err != nil {
		return "", err
	}
	id := fmt.Sprintf("media%d", len(s.saved)+1)
	s.saved = append(s.saved, id)
	return id, nil
}

func (s *fakeMediaStore) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type fakePublisher struct {
	err         error
	published   int
	deletedMsgs []int
	lastFiles   []PublishFile
}

func (p *fakePublisher) PublishListing(l *model.Listing, files []PublishFile) (int, error) {
	p.lastFiles = files
	if p.err != nil {
		return 0, p.err
	}
	p.published++
	return 555, nil
}

func (p *fakePublisher) DeleteListingMessage(messageID int) error {
	p.deletedMsgs = append(p.deletedMsgs, messageID)
	return nil
}

type fakeCompressor struct {
	calls int
}

func (c *fakeCompressor) Compress(data []byte) ([]byte, error) {
	c.calls++
	return data[:len(data)/2], nil
}

func newListingFixture() (*ListingService, *fakeListingStore, *fakeMediaStore, *fakePublisher, *fakeCompressor) {
	store := newFakeListingStore()
	media := &fakeMediaStore{}
	pub := &fakePublisher{}
	comp := &fakeCompressor{}
	svc := NewListingService(store, media, pub, comp, "http://localhost:8080", slog.Default())
	return svc, store, media, pub, comp
}

func validCreateInput() CreateListingInput {
	return CreateListingInput{
		Model:  "iPhone",
		Name:   "13 Pro",
		Price:  dec("1000"),
		Rating: 5,
		Images: []MediaUpload{{Filename: "a.jpg", ContentType: "image/jpeg", Data: []byte("jpg")}},
	}
}

func TestCreateListing(t *testing.T) {
	svc, store, media, pub, _ := newListingFixture()

	l, warning, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if warning != "" {
		t.Fatalf("unexpected warning %q", warning)
	}
	if l.Code != 1001 {
		t.Fatalf("code = %d, want 1001", l.Code)
	}
	if l.Mode != model.ModeDBChannel {
		t.Fatalf("mode = %q, want default db_channel", l.Mode)
	}
	if len(l.Images) != 1 || l.Images[0] != "http://localhost:8080/media/media1" {
		t.Fatalf("images = %v", l.Images)
	}
	if pub.published != 1 {
		t.Fatalf("published = %d, want 1", pub.published)
	}
	stored, _ := store.GetByCode(context.Background(), l.Code)
	if !stored.ChannelMessageID.Valid || stored.ChannelMessageID.Int64 != 555 {
		t.Fatalf("channel message id not recorded: %+v", stored.ChannelMessageID)
	}
	if len(media.saved) != 1 {
		t.Fatalf("media saved = %d, want 1", len(media.saved))
	}
}

func TestCreateListing_Validation(t *testing.T) {
	svc, _, _, _, _ := newListingFixture()

	tests := []struct {
		name   string
		mutate func(*CreateListingInput)
	}{
		{"no images", func(in *CreateListingInput) { in.Images = nil }},
		{"rating too low", func(in *CreateListingInput) { in.Rating = 0 }},
		{"rating too high", func(in *CreateListingInput) { in.Rating = 6 }},
		{"negative price", func(in *CreateListingInput) { in.Price = dec("-1") }},
		{"unknown mode", func(in *CreateListingInput) { in.Mode = "channel_only" }},
		{"missing model", func(in *CreateListingInput) { in.Model = " " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreateInput()
			tt.mutate(&in)
			_, _, err := svc.Create(context.Background(), in)
			if got := apperr.StatusOf(err); got != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", got)
			}
		})
	}
}

func TestCreateListing_PublishFailureOnlyChannelRollsBack(t *testing.T) {
	svc, store, media, pub, _ := newListingFixture()
	pub.err = errors.New("telegram is down")

	in := validCreateInput()
	in.Mode = model.ModeOnlyChannel
	_, _, err := svc.Create(context.Background(), in)
	if got := apperr.StatusOf(err); got != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", got)
	}
	if len(store.listings) != 0 {
		t.Fatal("listing row survived the rollback")
	}
	if len(media.deleted) != len(media.saved) {
		t.Fatalf("media cleanup incomplete: saved %d, deleted %d", len(media.saved), len(media.deleted))
	}
}

func TestCreateListing_PublishFailureDBChannelWarns(t *testing.T) {
	svc, store, _, pub, _ := newListingFixture()
	pub.err = errors.New("telegram is down")

	l, warning, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("Create() error = %v, db_channel must tolerate publish failure", err)
	}
	if warning == "" {
		t.Fatal("expected a warning")
	}
	if _, gerr := store.GetByCode(context.Background(), l.Code); gerr != nil {
		t.Fatalf("listing missing after tolerated failure: %v", gerr)
	}
}

func TestCreateListing_CompressesOversizedVideo(t *testing.T) {
	svc, _, _, pub, comp := newListingFixture()

	in := validCreateInput()
	in.Video = &MediaUpload{
		Filename:    "demo.mp4",
		ContentType: "video/mp4",
		Data:        make([]byte, maxDirectVideoSize+1),
	}
	_, _, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if comp.calls != 1 {
		t.Fatalf("compressor calls = %d, want 1", comp.calls)
	}
	last := pub.lastFiles[len(pub.lastFiles)-1]
	if !last.IsVideo {
		t.Fatal("video attachment missing")
	}
	if len(last.Data) > maxDirectVideoSize {
		t.Fatalf("published video still oversized: %d bytes", len(last.Data))
	}
}

func TestCreateListing_SmallVideoNotCompressed(t *testing.T) {
	svc, _, _, _, comp := newListingFixture()

	in := validCreateInput()
	in.Video = &MediaUpload{Filename: "demo.mp4", ContentType: "video/mp4", Data: []byte("tiny")}
	if _, _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if comp.calls != 0 {
		t.Fatalf("compressor calls = %d, want 0", comp.calls)
	}
}

func TestUpdateListing(t *testing.T) {
	svc, store, _, _, _ := newListingFixture()
	l, _, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	name := "14 Pro Max"
	rating := 4
	if _, err := svc.Update(context.Background(), l.Code, UpdateListingInput{Name: &name, Rating: &rating}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if store.updates["name"] != "14 Pro Max" || store.updates["rating"] != 4 {
		t.Fatalf("updates = %v", store.updates)
	}

	_, err = svc.Update(context.Background(), l.Code, UpdateListingInput{})
	if got := apperr.StatusOf(err); got != http.StatusBadRequest {
		t.Fatalf("empty update status = %d, want 400", got)
	}

	badRating := 9
	_, err = svc.Update(context.Background(), l.Code, UpdateListingInput{Rating: &badRating})
	if got := apperr.StatusOf(err); got != http.StatusBadRequest {
		t.Fatalf("bad rating status = %d, want 400", got)
	}

	_, err = svc.Update(context.Background(), 4242, UpdateListingInput{Name: &name})
	if got := apperr.StatusOf(err); got != http.StatusNotFound {
		t.Fatalf("missing listing status = %d, want 404", got)
	}
}

func TestDeleteListing(t *testing.T) {
	svc, store, media, pub, _ := newListingFixture()
	l, _, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(context.Background(), l.Code); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != l.Code {
		t.Fatalf("deleted codes = %v", store.deleted)
	}
	if len(media.deleted) != 1 || media.deleted[0] != "media1" {
		t.Fatalf("deleted media = %v", media.deleted)
	}
	if len(pub.deletedMsgs) != 1 || pub.deletedMsgs[0] != 555 {
		t.Fatalf("deleted channel messages = %v", pub.deletedMsgs)
	}

	err = svc.Delete(context.Background(), l.Code)
	if got := apperr.StatusOf(err); got != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", got)
	}
}
