package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"campusmarket/trading/internal/model"
	"campusmarket/trading/internal/recommend"
	"campusmarket/trading/internal/repository"
	"campusmarket/trading/internal/timetable"
	"campusmarket/trading/internal/vision"
)

// textbookCandidates bounds how many recent listings are scored.
const textbookCandidates = 200

// Classifier labels an image.
type Classifier interface {
	Classify(ctx context.Context, image []byte) ([]model.Label, error)
}

type RecommendationService struct {
	items   *repository.ItemRepository
	wishes  *repository.WishlistRepository
	courses timetable.CourseStore
	vision  Classifier
	now     func() time.Time
}

// NewRecommendationService wires the recommenders. classifier may be nil
// when image recognition is not configured.
func NewRecommendationService(
	items *repository.ItemRepository,
	wishes *repository.WishlistRepository,
	courses timetable.CourseStore,
	classifier Classifier,
) *RecommendationService {
	return &RecommendationService{
		items:   items,
		wishes:  wishes,
		courses: courses,
		vision:  classifier,
		now:     time.Now,
	}
}

// Textbooks recommends listings for studentID's courses. month overrides the
// current month when set.
func (s *RecommendationService) Textbooks(ctx context.Context, actor Actor, studentID string, month int) ([]model.RecommendedItem, error) {
	if month == 0 {
		month = int(s.now().Month())
	}
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}
	if _, err := timetable.ParseStudentID(studentID); err != nil {
		return nil, err
	}

	in := recommend.TextbookInput{Month: time.Month(month)}
	var items []model.Item

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		in.Term1, err = timetable.CoursesForTerm(ctx, s.courses, studentID, 1)
		return err
	})
	g.Go(func() error {
		var err error
		in.Term2, err = timetable.CoursesForTerm(ctx, s.courses, studentID, 2)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.items.List(ctx, textbookCandidates)
		return err
	})
	g.Go(func() error {
		var err error
		in.Wishlist, err = s.wishes.ListByUser(ctx, actor.UID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	in.Items = recommend.ExcludeOwner(items, actor.UID, actor.Email)
	return recommend.Textbooks(in), nil
}

type ImageRecommendation struct {
	Labels   []model.Label              `json:"labels"`
	Products []model.RecommendedProduct `json:"products"`
}

// ByImage labels image and recommends other users' listings that match.
func (s *RecommendationService) ByImage(ctx context.Context, actor Actor, image []byte) (*ImageRecommendation, error) {
	if s.vision == nil {
		return nil, vision.ErrNotConfigured
	}
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	var (
		labels []model.Label
		items  []model.Item
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		labels, err = s.vision.Classify(ctx, image)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.items.List(ctx, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &ImageRecommendation{
		Labels:   labels,
		Products: recommend.Products(labels, recommend.ExcludeOwner(items, actor.UID, actor.Email)),
	}, nil
}
