package courses

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"learnora.com/app/internal/shared/slug"
	"learnora.com/app/internal/storage"
)

// InputError carries per-field validation messages.
type InputError struct {
	Fields map[string]string
}

func (e *InputError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	return "invalid course input: " + strings.Join(keys, ",")
}

var ErrNoFiles = errors.New("no files uploaded")

type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Files are the uploaded media arrays. Videos and thumbnails are consumed in
// order across all chapters' videos; PDFs are consumed one per chapter.
type Files struct {
	IntroVideo     *Upload
	IntroThumbnail *Upload
	Videos         []Upload
	Thumbnails     []Upload
	PDFs           []Upload
}

func (f Files) empty() bool {
	return f.IntroVideo == nil && f.IntroThumbnail == nil &&
		len(f.Videos) == 0 && len(f.Thumbnails) == 0 && len(f.PDFs) == 0
}

type VideoInput struct {
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

type ChapterInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Videos      []VideoInput `json:"videos"`
}

type CreateInput struct {
	Title         string
	Description   string
	ActualPrice   string
	DiscountPrice string
	Currency      string
	Duration      string
	Language      string
	Category      string
	Chapters      []ChapterInput
	Files         Files
}

// UpdateInput is a partial update. Nil fields keep the stored value; nil
// Chapters keeps the stored chapters with their media.
type UpdateInput struct {
	Title         *string
	Description   *string
	ActualPrice   *string
	DiscountPrice *string
	Duration      *string
	Language      *string
	Category      *string
	Chapters      []ChapterInput
	Files         Files
}

type Service struct {
	repo     *GormRepo
	store    storage.Storage
	currency string
	logger   *slog.Logger
}

func NewService(repo *GormRepo, store storage.Storage, defaultCurrency string) *Service {
	return &Service{repo: repo, store: store, currency: defaultCurrency, logger: slog.Default()}
}

func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Course, error) {
	actual, discount, err := s.validate(in)
	if err != nil {
		return Course{}, err
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.currency
	}

	up := &uploader{svc: s}
	chapters := up.assemble(ctx, in.Chapters, in.Files, nil)

	now := time.Now()
	c := Course{
		ID:                 uuid.NewString(),
		Slug:               slug.WithSuffix(slug.FromTitle(in.Title), uuid.NewString()[:8], 160),
		Title:              strings.TrimSpace(in.Title),
		Description:        strings.TrimSpace(in.Description),
		ActualPriceMinor:   actual,
		DiscountPriceMinor: discount,
		Currency:           currency,
		Duration:           in.Duration,
		Language:           in.Language,
		Category:           in.Category,
		IntroVideoURL:      up.put(ctx, "videos", in.Files.IntroVideo),
		IntroThumbnailURL:  up.put(ctx, "thumbnails", in.Files.IntroThumbnail),
		Chapters:           chapters,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	c.MediaKeys = up.keys

	if err := s.repo.Create(ctx, &c); err != nil {
		s.removeMedia(ctx, up.keys)
		return Course{}, err
	}

	s.logger.InfoContext(ctx, "course created", "course_id", c.ID, "chapters", len(c.Chapters), "media", len(c.MediaKeys))
	return c, nil
}

// Update re-validates whatever the caller changed against the stored course.
// New chapter files fill positions like Create does; positions without a new
// file keep their current media.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Course, error) {
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return Course{}, err
	}

	fields := map[string]string{}
	required := map[string]*string{
		"title":    in.Title,
		"duration": in.Duration,
		"language": in.Language,
		"category": in.Category,
	}
	for k, v := range required {
		if v != nil && strings.TrimSpace(*v) == "" {
			fields[k] = "This field is required."
		}
	}

	actual, discount := cur.ActualPriceMinor, cur.DiscountPriceMinor
	if in.ActualPrice != nil {
		if actual, err = ParseMinor(*in.ActualPrice); err != nil {
			fields["actual_price"] = err.Error()
		}
	}
	if in.DiscountPrice != nil {
		if discount, err = ParseMinor(*in.DiscountPrice); err != nil {
			fields["discount_price"] = err.Error()
		}
	}
	if _, bad := fields["actual_price"]; !bad {
		if _, bad := fields["discount_price"]; !bad && discount > actual {
			fields["discount_price"] = "Discount price cannot exceed the actual price."
		}
	}
	if in.Chapters != nil && len(in.Chapters) == 0 {
		fields["chapters"] = "At least one chapter is required."
	}
	if len(fields) > 0 {
		return Course{}, &InputError{Fields: fields}
	}

	up := &uploader{svc: s}
	var chapters []Chapter
	if in.Chapters != nil {
		chapters = up.assemble(ctx, in.Chapters, in.Files, cur.Chapters)
	}
	introVideo := up.put(ctx, "videos", in.Files.IntroVideo)
	introThumb := up.put(ctx, "thumbnails", in.Files.IntroThumbnail)

	updated, err := s.repo.Update(ctx, id, func(c *Course) {
		setTrimmed(&c.Title, in.Title)
		setTrimmed(&c.Description, in.Description)
		setTrimmed(&c.Duration, in.Duration)
		setTrimmed(&c.Language, in.Language)
		setTrimmed(&c.Category, in.Category)
		if in.ActualPrice != nil {
			c.ActualPriceMinor = actual
		}
		if in.DiscountPrice != nil {
			c.DiscountPriceMinor = discount
		}
		if chapters != nil {
			c.Chapters = chapters
		}
		if introVideo != "" {
			c.IntroVideoURL = introVideo
		}
		if introThumb != "" {
			c.IntroThumbnailURL = introThumb
		}
		c.MediaKeys = append(c.MediaKeys, up.keys...)
		c.UpdatedAt = time.Now()
	})
	if err != nil {
		s.removeMedia(ctx, up.keys)
		return Course{}, err
	}

	s.logger.InfoContext(ctx, "course updated", "course_id", id, "media_added", len(up.keys))
	return updated, nil
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func (s *Service) Delete(ctx context.Context, id string) error {
	c, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.removeMedia(ctx, c.MediaKeys)
	return nil
}

func (s *Service) validate(in CreateInput) (actual, discount int64, err error) {
	fields := map[string]string{}
	required := map[string]string{
		"title":    in.Title,
		"duration": in.Duration,
		"language": in.Language,
		"category": in.Category,
	}
	for k, v := range required {
		if strings.TrimSpace(v) == "" {
			fields[k] = "This field is required."
		}
	}

	actual, aerr := ParseMinor(in.ActualPrice)
	if aerr != nil {
		fields["actual_price"] = aerr.Error()
	}
	discount, derr := ParseMinor(in.DiscountPrice)
	if derr != nil {
		fields["discount_price"] = derr.Error()
	}
	if aerr == nil && derr == nil && discount > actual {
		fields["discount_price"] = "Discount price cannot exceed the actual price."
	}
	if len(in.Chapters) == 0 {
		fields["chapters"] = "At least one chapter is required."
	}

	if len(fields) > 0 {
		return 0, 0, &InputError{Fields: fields}
	}
	if in.Files.empty() {
		return 0, 0, ErrNoFiles
	}
	return actual, discount, nil
}

func (s *Service) removeMedia(ctx context.Context, keys []string) {
	for _, k := range keys {
		if err := s.store.Delete(ctx, k); err != nil {
			s.logger.WarnContext(ctx, "media cleanup failed", "key", k, "err", err)
		}
	}
}

type cursor struct {
	items []Upload
	next  int
}

func (c *cursor) take() *Upload {
	if c.next >= len(c.items) {
		return nil
	}
	u := &c.items[c.next]
	c.next++
	return u
}

// uploader pushes files to storage and remembers every key it created.
// A failed upload leaves an empty URL and is logged; it does not abort the course.
type uploader struct {
	svc  *Service
	keys []string
}

// assemble builds chapters from in, consuming files in order. A position that
// gets no new file falls back to the media at the same position in prev.
func (u *uploader) assemble(ctx context.Context, in []ChapterInput, files Files, prev []Chapter) []Chapter {
	videos := &cursor{items: files.Videos}
	thumbs := &cursor{items: files.Thumbnails}
	pdfs := &cursor{items: files.PDFs}

	out := make([]Chapter, 0, len(in))
	for i, ch := range in {
		var was Chapter
		if i < len(prev) {
			was = prev[i]
		}
		vids := make([]Video, 0, len(ch.Videos))
		for j, v := range ch.Videos {
			var wasVideo Video
			if j < len(was.Videos) {
				wasVideo = was.Videos[j]
			}
			vids = append(vids, Video{
				Title:        orDefault(v.Title, "Untitled Video"),
				Duration:     orDefault(v.Duration, "0:00"),
				VideoURL:     orDefault(u.put(ctx, "videos", videos.take()), wasVideo.VideoURL),
				ThumbnailURL: orDefault(u.put(ctx, "thumbnails", thumbs.take()), wasVideo.ThumbnailURL),
			})
		}
		out = append(out, Chapter{
			Title:       orDefault(ch.Title, "Untitled Chapter"),
			Description: ch.Description,
			PDFURL:      orDefault(u.put(ctx, "pdfs", pdfs.take()), was.PDFURL),
			Videos:      vids,
		})
	}
	return out
}

func (u *uploader) put(ctx context.Context, folder string, f *Upload) string {
	if f == nil || f.Open == nil {
		return ""
	}
	rc, err := f.Open()
	if err != nil {
		u.svc.logger.WarnContext(ctx, "media open failed", "folder", folder, "file", f.Filename, "err", err)
		return ""
	}
	defer rc.Close()

	res, err := u.svc.store.Put(ctx, rc, storage.PutInput{
		Folder:      folder,
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Size:        f.Size,
	})
	if err != nil {
		u.svc.logger.WarnContext(ctx, "media upload failed", "folder", folder, "file", f.Filename, "err", err)
		return ""
	}
	u.keys = append(u.keys, res.Key)
	return res.URL
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
