package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FanzeeApp/sotvolbackend/internal/apperr"
	"github.com/FanzeeApp/sotvolbackend/internal/model"
	"github.com/FanzeeApp/sotvolbackend/internal/repository"
)

// maxDirectVideoSize is the Telegram bot API upload limit; larger videos
// are run through the compressor before publishing.
const maxDirectVideoSize = 50 << 20

type ListingStore interface {
	NextCode(ctx context.Context) (int, error)
	Create(ctx context.Context, l *model.Listing) error
	GetByCode(ctx context.Context, code int) (*model.Listing, error)
	List(ctx context.Context, f repository.ListFilter) ([]model.Listing, error)
	Update(ctx context.Context, code int, fields map[string]interface{}) error
	Delete(ctx context.Context, code int) error
	SetChannelMessageID(ctx context.Context, code, messageID int) error
}

type MediaStore interface {
	Save(ctx context.Context, filename, contentType string, src io.Reader) (string, error)
	Delete(ctx context.Context, id string) error
}

// PublishFile is one media attachment of a channel post.
type PublishFile struct {
	Name    string
	Data    []byte
	IsVideo bool
}

type ChannelPublisher interface {
	PublishListing(l *model.Listing, files []PublishFile) (messageID int, err error)
	DeleteListingMessage(messageID int) error
}

type VideoCompressor interface {
	Compress(data []byte) ([]byte, error)
}

type ListingService struct {
	store      ListingStore
	media      MediaStore
	publisher  ChannelPublisher
	compressor VideoCompressor
	baseURL    string
	log        *slog.Logger
}

func NewListingService(store ListingStore, media MediaStore, publisher ChannelPublisher,
	compressor VideoCompressor, baseURL string, log *slog.Logger) *ListingService {
	return &ListingService{
		store:      store,
		media:      media,
		publisher:  publisher,
		compressor: compressor,
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        log,
	}
}

type MediaUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type CreateListingInput struct {
	Mode           string
	Model          string
	Name           string
	Condition      string
	Storage        string
	Color          string
	Box            string
	Battery        string
	Warranty       string
	Price          decimal.Decimal
	PriceFormatted string
	Exchange       bool
	Rating         int
	Images         []MediaUpload
	Video          *MediaUpload
}

// Create stores the listing and its media, then publishes it to the public
// channel. For only_channel listings a failed publish rolls everything
// back; for db_channel listings it is downgraded to a warning.
func (s *ListingService) Create(ctx context.Context, in CreateListingInput) (*model.Listing, string, error) {
	mode := in.Mode
	if mode == "" {
		mode = model.ModeDBChannel
	}
	if mode != model.ModeDBChannel && mode != model.ModeOnlyChannel {
		return nil, "", apperr.Validation("unknown mode %q", in.Mode)
	}
	if strings.TrimSpace(in.Model) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, "", apperr.Validation("model and name are required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, "", apperr.Validation("rating must be between 1 and 5")
	}
	if in.Price.IsNegative() {
		return nil, "", apperr.Validation("price must be non-negative")
	}
	if len(in.Images) == 0 {
		return nil, "", apperr.Validation("at least one image is required")
	}

	var mediaIDs []string
	urls := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		name := uuid.NewString() + path.Ext(img.Filename)
		id, err := s.media.Save(ctx, name, img.ContentType, bytes.NewReader(img.Data))
		if err != nil {
			s.deleteMedia(ctx, mediaIDs)
			return nil, "", apperr.Internal("store image", err)
		}
		mediaIDs = append(mediaIDs, id)
		urls = append(urls, s.baseURL+"/media/"+id)
	}

	code, err := s.store.NextCode(ctx)
	if err != nil {
		s.deleteMedia(ctx, mediaIDs)
		return nil, "", apperr.Internal("allocate listing code", err)
	}

	l := &model.Listing{
		Code:           code,
		Mode:           mode,
		Model:          strings.TrimSpace(in.Model),
		Name:           strings.TrimSpace(in.Name),
		Condition:      in.Condition,
		Storage:        in.Storage,
		Color:          in.Color,
		Box:            in.Box,
		Battery:        in.Battery,
		Warranty:       in.Warranty,
		Price:          in.Price,
		PriceFormatted: in.PriceFormatted,
		Exchange:       in.Exchange,
		Rating:         in.Rating,
		Images:         urls,
	}
	if err := s.store.Create(ctx, l); err != nil {
		s.deleteMedia(ctx, mediaIDs)
		return nil, "", apperr.Internal("insert listing", err)
	}

	files := s.publishFiles(in)
	messageID, pubErr := s.publisher.PublishListing(l, files)
	if pubErr != nil {
		if mode == model.ModeOnlyChannel {
			// The listing must not exist unpublished: compensate.
			if derr := s.store.Delete(ctx, l.Code); derr != nil {
				s.log.Error("rollback listing delete failed", "code", l.Code, "err", derr)
			}
			s.deleteMedia(ctx, mediaIDs)
			return nil, "", apperr.External("channel publish failed", pubErr)
		}
		s.log.Warn("channel publish failed", "code", l.Code, "err", pubErr)
		return l, "listing saved, but channel publish failed", nil
	}

	if err := s.store.SetChannelMessageID(ctx, l.Code, messageID); err != nil {
		s.log.Warn("store channel message id failed", "code", l.Code, "err", err)
	}
	l.ChannelMessageID = sql.NullInt64{Int64: int64(messageID), Valid: true}
	return l, "", nil
}

// publishFiles assembles the channel attachments, compressing the video
// when it exceeds the bot API upload limit.
func (s *ListingService) publishFiles(in CreateListingInput) []PublishFile {
	files := make([]PublishFile, 0, len(in.Images)+1)
	for _, img := range in.Images {
		files = append(files, PublishFile{Name: img.Filename, Data: img.Data})
	}
	if in.Video != nil {
		data := in.Video.Data
		if len(data) > maxDirectVideoSize && s.compressor != nil {
			compressed, err := s.compressor.Compress(data)
			if err != nil {
				s.log.Warn("video compression failed, publishing original", "err", err)
			} else {
				data = compressed
			}
		}
		files = append(files, PublishFile{Name: in.Video.Filename, Data: data, IsVideo: true})
	}
	return files
}

func (s *ListingService) deleteMedia(ctx context.Context, ids []string) {
	for _, id := range ids {
		if err := s.media.Delete(ctx, id); err != nil {
			s.log.Warn("media cleanup failed", "id", id, "err", err)
		}
	}
}

func (s *ListingService) Get(ctx context.Context, code int) (*model.Listing, error) {
	l, err := s.store.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("listing %d not found", code)
		}
		return nil, apperr.Internal("load listing", err)
	}
	return l, nil
}

func (s *ListingService) List(ctx context.Context, f repository.ListFilter) ([]model.Listing, error) {
	listings, err := s.store.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal("list listings", err)
	}
	if listings == nil {
		listings = []model.Listing{}
	}
	return listings, nil
}

type UpdateListingInput struct {
	Mode           *string
	Model          *string
	Name           *string
	Condition      *string
	Storage        *string
	Color          *string
	Box            *string
	Battery        *string
	Warranty       *string
	Price          *decimal.Decimal
	PriceFormatted *string
	Exchange       *bool
	Rating         *int
}

// Update applies a partial admin edit to the descriptive fields.
func (s *ListingService) Update(ctx context.Context, code int, in UpdateListingInput) (*model.Listing, error) {
	fields := map[string]interface{}{}
	if in.Mode != nil {
		if *in.Mode != model.ModeDBChannel && *in.Mode != model.ModeOnlyChannel {
			return nil, apperr.Validation("unknown mode %q", *in.Mode)
		}
		fields["mode"] = *in.Mode
	}
	if in.Model != nil {
		fields["model"] = *in.Model
	}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Condition != nil {
		fields["condition"] = *in.Condition
	}
	if in.Storage != nil {
		fields["storage"] = *in.Storage
	}
	if in.Color != nil {
		fields["color"] = *in.Color
	}
	if in.Box != nil {
		fields["box"] = *in.Box
	}
	if in.Battery != nil {
		fields["battery"] = *in.Battery
	}
	if in.Warranty != nil {
		fields["warranty"] = *in.Warranty
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, apperr.Validation("price must be non-negative")
		}
		fields["price"] = *in.Price
	}
	if in.PriceFormatted != nil {
		fields["price_formatted"] = *in.PriceFormatted
	}
	if in.Exchange != nil {
		fields["exchange"] = *in.Exchange
	}
	if in.Rating != nil {
		if *in.Rating < 1 || *in.Rating > 5 {
			return nil, apperr.Validation("rating must be between 1 and 5")
		}
		fields["rating"] = *in.Rating
	}
	if len(fields) == 0 {
		return nil, apperr.Validation("no fields to update")
	}

	if err := s.store.Update(ctx, code, fields); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("listing %d not found", code)
		}
		return nil, apperr.Internal("update listing", err)
	}
	return s.Get(ctx, code)
}

// Delete removes the listing (bookings cascade in the database), its stored
// media and, best effort, the channel post.
func (s *ListingService) Delete(ctx context.Context, code int) error {
	l, err := s.Get(ctx, code)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, code); err != nil {
		return apperr.Internal("delete listing", err)
	}

	ids := make([]string, 0, len(l.Images))
	for _, u := range l.Images {
		if id := mediaIDFromURL(u); id != "" {
			ids = append(ids, id)
		}
	}
	s.deleteMedia(ctx, ids)

	if l.ChannelMessageID.Valid {
		if err := s.publisher.DeleteListingMessage(int(l.ChannelMessageID.Int64)); err != nil {
			s.log.Warn("channel message delete failed", "code", code, "err", err)
		}
	}
	return nil
}

func mediaIDFromURL(u string) string {
	idx := strings.LastIndex(u, "/")
	if idx < 0 || idx+1 >= len(u) {
		return ""
	}
	return u[idx+1:]
}
