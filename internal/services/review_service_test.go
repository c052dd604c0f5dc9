package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"skillmarket_backend/internal/cache"
	"skillmarket_backend/internal/email"
	"skillmarket_backend/internal/models"
	"skillmarket_backend/internal/repositories"
	"skillmarket_backend/internal/services/dto"
	"skillmarket_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ---------------- In-memory fakes ----------------

// memStore backs all fake repositories. The db argument the repositories
// receive is ignored; the store is the single source of truth.
type memStore struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	profiles map[string]*models.Profile
	services map[string]*models.Service
	reviews  map[string]*models.Review
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*models.User),
		profiles: make(map[string]*models.Profile),
		services: make(map[string]*models.Service),
		reviews:  make(map[string]*models.Review),
	}
}

func (s *memStore) addUser(u *models.User) *models.User {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return u
}

func (s *memStore) addProfile(p *models.Profile) *models.Profile {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
	return p
}

func (s *memStore) addService(sv *models.Service) *models.Service {
	if sv.ID == "" {
		sv.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[sv.ID] = sv
	return sv
}

func (s *memStore) addReview(r *models.Review) *models.Review {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews[r.ID] = r
	return r
}

func (s *memStore) review(id string) *models.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := s.reviews[id]
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

func (s *memStore) profile(id string) *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.profiles[id]
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func (s *memStore) service(id string) *models.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sv := s.services[id]
	if sv == nil {
		return nil
	}
	c := *sv
	return &c
}

type fakeUserRepo struct{ store *memStore }

func (f *fakeUserRepo) Create(db *gorm.DB, user *models.User) error {
	f.store.addUser(user)
	return nil
}

func (f *fakeUserRepo) FindByID(db *gorm.DB, id string) (*models.User, error) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	u, ok := f.store.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUserRepo) FindByEmail(db *gorm.DB, emailAddr string) (*models.User, error) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	for _, u := range f.store.users {
		if u.Email == emailAddr {
			c := *u
			return &c, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) FindAdmins(db *gorm.DB) ([]models.User, error) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	var admins []models.User
	for _, u := range f.store.users {
		if u.Role == models.UserRoleAdmin {
			admins = append(admins, *u)
		}
	}
	return admins, nil
}

type fakeProfileRepo struct{ store *memStore }

func (f *fakeProfileRepo) Create(db *gorm.DB, profile *models.Profile) error {
	f.store.addProfile(profile)
	return nil
}

func (f *fakeProfileRepo) FindByID(db *gorm.DB, id string) (*models.Profile, error) {
	p := f.store.profile(id)
	if p == nil {
		return nil, repositories.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) FindByUserID(db *gorm.DB, userID string) (*models.Profile, error) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	for _, p := range f.store.profiles {
		if p.UserID == userID {
			c := *p
			return &c, nil
		}
	}
	return nil, repositories.ErrProfileNotFound
}

func (f *fakeProfileRepo) Update(db *gorm.DB, profile *models.Profile) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	existing, ok := f.store.profiles[profile.ID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	existing.DisplayName = profile.DisplayName
	existing.Headline = profile.Headline
	existing.About = profile.About
	existing.City = profile.City
	existing.Categories = profile.Categories
	existing.IsPublic = profile.IsPublic
	return nil
}

func (f *fakeProfileRepo) List(db *gorm.DB, city, category string, limit, offset int) ([]models.Profile, int64, error) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	var out []models.Profile
	for _, p := range f.store.profiles {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProfileRepo) UpdateRatingAggregate(db *gorm.DB, profileID string, rating float64, reviewCount int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	p, ok := f.store.profiles[profileID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	p.Rating = rating
	p.ReviewCount = reviewCount
	return nil
}

type fakeServiceRepo struct{ store *memStore }

func (f *fakeServiceRepo) Create(db *gorm.DB, service *models.Service) error {
	f.store.addService(service)
	return nil
}

func (f *fakeServiceRepo) FindByID(db *gorm.DB, id string) (*models.Service, error) {
	sv := f.store.service(id)
	if sv == nil {
		return nil, repositories.ErrServiceNotFound
	}
	return sv, nil
}

func (f *fakeServiceRepo) FindByProfile(db *gorm.DB, profileID string) ([]models.Service, error) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	var out []models.Service
	for _, sv := range f.store.services {
		if sv.ProfileID == profileID {
			out = append(out, *sv)
		}
	}
	return out, nil
}

func (f *fakeServiceRepo) Update(db *gorm.DB, service *models.Service) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	existing, ok := f.store.services[service.ID]
	if !ok {
		return repositories.ErrServiceNotFound
	}
	existing.Title = service.Title
	existing.Description = service.Description
	existing.Category = service.Category
	existing.Price = service.Price
	existing.IsActive = service.IsActive
	return nil
}

func (f *fakeServiceRepo) Delete(db *gorm.DB, id string) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if _, ok := f.store.services[id]; !ok {
		return repositories.ErrServiceNotFound
	}
	delete(f.store.services, id)
	return nil
}

func (f *fakeServiceRepo) UpdateRatingAggregate(db *gorm.DB, serviceID string, rating float64, reviewCount int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	sv, ok := f.store.services[serviceID]
	if !ok {
		return repositories.ErrServiceNotFound
	}
	sv.Rating = rating
	sv.ReviewCount = reviewCount
	return nil
}

type fakeReviewRepo struct{ store *memStore }

func (f *fakeReviewRepo) Create(db *gorm.DB, review *models.Review) error {
	if existing, err := f.FindByAuthorAndTarget(db, review.AuthorID, review.ProfileID, review.ServiceID); err == nil && existing != nil {
		return repositories.ErrReviewAlreadyExists
	}
	f.store.addReview(review)
	return nil
}

func (f *fakeReviewRepo) FindByID(db *gorm.DB, id string) (*models.Review, error) {
	r := f.store.review(id)
	if r == nil {
		return nil, repositories.ErrReviewNotFound
	}
	return r, nil
}

func (f *fakeReviewRepo) FindByAuthorAndTarget(db *gorm.DB, authorID, profileID string, serviceID *string) (*models.Review, error) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	for _, r := range f.store.reviews {
		if r.AuthorID != authorID || r.ProfileID != profileID {
			continue
		}
		if (r.ServiceID == nil) != (serviceID == nil) {
			continue
		}
		if serviceID != nil && *r.ServiceID != *serviceID {
			continue
		}
		c := *r
		return &c, nil
	}
	return nil, repositories.ErrReviewNotFound
}

func (f *fakeReviewRepo) FindByAuthor(db *gorm.DB, authorID string) ([]models.Review, error) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	var out []models.Review
	for _, r := range f.store.reviews {
		if r.AuthorID == authorID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) FindPublicByProfile(db *gorm.DB, profileID string, page, pageSize int) ([]models.Review, int64, error) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	var out []models.Review
	for _, r := range f.store.reviews {
		if r.ProfileID == profileID && r.Status == models.ReviewStatusApproved && r.Published {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeReviewRepo) FindPublicByService(db *gorm.DB, serviceID string, page, pageSize int) ([]models.Review, int64, error) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	var out []models.Review
	for _, r := range f.store.reviews {
		if r.ServiceID != nil && *r.ServiceID == serviceID && r.Status == models.ReviewStatusApproved && r.Published {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeReviewRepo) FindPending(db *gorm.DB, limit, offset int) ([]models.Review, int64, error) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	var out []models.Review
	for _, r := range f.store.reviews {
		if r.Status == models.ReviewStatusPending {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeReviewRepo) FindQualifyingByProfile(db *gorm.DB, profileID string) ([]models.Review, error) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	var out []models.Review
	for _, r := range f.store.reviews {
		if r.ProfileID == profileID && r.Qualifies() {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) FindQualifyingByService(db *gorm.DB, serviceID string) ([]models.Review, error) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	var out []models.Review
	for _, r := range f.store.reviews {
		if r.ServiceID != nil && *r.ServiceID == serviceID && r.Qualifies() {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) UpdateModeration(db *gorm.DB, review *models.Review) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	existing, ok := f.store.reviews[review.ID]
	if !ok {
		return repositories.ErrReviewNotFound
	}
	existing.Status = review.Status
	existing.Published = review.Published
	existing.ModerationNote = review.ModerationNote
	existing.ModeratedBy = review.ModeratedBy
	existing.ModeratedAt = review.ModeratedAt
	return nil
}

func (f *fakeReviewRepo) UpdateVisibility(db *gorm.DB, reviewID string, visible bool) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	existing, ok := f.store.reviews[reviewID]
	if !ok {
		return repositories.ErrReviewNotFound
	}
	existing.Visible = visible
	return nil
}

// fakeTxManager runs the callback directly and counts invocations.
type fakeTxManager struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeTxManager) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return fc(nil)
}

// ---------------- Fixture ----------------

type reviewFixture struct {
	store       *memStore
	svc         ReviewService
	txm         *fakeTxManager
	invalidator *cache.RecordingInvalidator
	mailer      *email.MockProvider

	admin   *models.User
	owner   *models.User
	author  *models.User
	profile *models.Profile
	service *models.Service
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()

	store := newMemStore()
	txm := &fakeTxManager{}
	invalidator := cache.NewRecordingInvalidator()
	mailer := email.NewMockProvider()

	svc := NewReviewService(
		nil, txm,
		&fakeReviewRepo{store: store},
		&fakeProfileRepo{store: store},
		&fakeServiceRepo{store: store},
		&fakeUserRepo{store: store},
		invalidator,
		mailer,
	)

	admin := store.addUser(&models.User{Email: "admin@example.com", Name: "Admin", Role: models.UserRoleAdmin})
	owner := store.addUser(&models.User{Email: "owner@example.com", Name: "Owner", Role: models.UserRoleUser})
	author := store.addUser(&models.User{Email: "author@example.com", Name: "Author", Role: models.UserRoleUser})
	profile := store.addProfile(&models.Profile{UserID: owner.ID, DisplayName: "Owner Profile", IsPublic: true})
	service := store.addService(&models.Service{ProfileID: profile.ID, Title: "Deep Clean", IsActive: true})

	return &reviewFixture{
		store:       store,
		svc:         svc,
		txm:         txm,
		invalidator: invalidator,
		mailer:      mailer,
		admin:       admin,
		owner:       owner,
		author:      author,
		profile:     profile,
		service:     service,
	}
}

func (fx *reviewFixture) addPendingReview(authorID string, rating int) *models.Review {
	return fx.store.addReview(&models.Review{
		ProfileID: fx.profile.ID,
		AuthorID:  authorID,
		Rating:    rating,
		Comment:   "some comment",
		Status:    models.ReviewStatusPending,
		Published: false,
		Visible:   true,
	})
}

func (fx *reviewFixture) addApprovedReview(authorID string, rating int) *models.Review {
	return fx.store.addReview(&models.Review{
		ProfileID: fx.profile.ID,
		AuthorID:  authorID,
		Rating:    rating,
		Comment:   "some comment",
		Status:    models.ReviewStatusApproved,
		Published: true,
		Visible:   true,
	})
}

// ---------------- Moderation ----------------

func TestModerateReview_ApproveRecomputesRating(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	fx.addApprovedReview(uuid.NewString(), 5)
	fx.addApprovedReview(uuid.NewString(), 5)
	pending := fx.addPendingReview(fx.author.ID, 1)

	resp, err := fx.svc.ModerateReview(ctx, fx.admin.ID, pending.ID, &dto.ModerateReviewRequest{Decision: "approved"})
	require.NoError(t, err)

	assert.Equal(t, string(models.ReviewStatusApproved), resp.Status)
	assert.True(t, resp.Published)

	stored := fx.store.review(pending.ID)
	require.NotNil(t, stored.ModeratedAt)
	require.NotNil(t, stored.ModeratedBy)
	assert.Equal(t, fx.admin.ID, *stored.ModeratedBy)

	// (5+5+1)/3 = 3.666..., rounded half away from zero to 2 decimals.
	profile := fx.store.profile(fx.profile.ID)
	assert.Equal(t, 3.67, profile.Rating)
	assert.Equal(t, int64(3), profile.ReviewCount)

	assert.Equal(t, 1, fx.txm.calls)
	assert.Contains(t, fx.invalidator.Tags(), cache.ProfileTag(fx.profile.ID))
	assert.Contains(t, fx.invalidator.Tags(), cache.ReviewTag(pending.ID))
}

func TestModerateReview_ApproveServiceReview(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	review := fx.store.addReview(&models.Review{
		ProfileID: fx.profile.ID,
		ServiceID: &fx.service.ID,
		AuthorID:  fx.author.ID,
		Rating:    4,
		Status:    models.ReviewStatusPending,
		Visible:   true,
	})

	_, err := fx.svc.ModerateReview(ctx, fx.admin.ID, review.ID, &dto.ModerateReviewRequest{Decision: "approved"})
	require.NoError(t, err)

	service := fx.store.service(fx.service.ID)
	assert.Equal(t, 4.0, service.Rating)
	assert.Equal(t, int64(1), service.ReviewCount)

	profile := fx.store.profile(fx.profile.ID)
	assert.Equal(t, 4.0, profile.Rating)
	assert.Equal(t, int64(1), profile.ReviewCount)

	assert.Contains(t, fx.invalidator.Tags(), cache.ServiceTag(fx.service.ID))
}

func TestModerateReview_RejectLeavesRatingUntouched(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	pending := fx.addPendingReview(fx.author.ID, 1)

	resp, err := fx.svc.ModerateReview(ctx, fx.admin.ID, pending.ID, &dto.ModerateReviewRequest{
		Decision: "rejected",
		Reason:   "spam",
	})
	require.NoError(t, err)

	assert.Equal(t, string(models.ReviewStatusRejected), resp.Status)
	assert.False(t, resp.Published)

	stored := fx.store.review(pending.ID)
	assert.Equal(t, "spam", stored.ModerationNote)

	profile := fx.store.profile(fx.profile.ID)
	assert.Equal(t, 0.0, profile.Rating)
	assert.Equal(t, int64(0), profile.ReviewCount)

	// A rejection invalidates the review itself and nothing rating-related.
	assert.Equal(t, []string{cache.ReviewTag(pending.ID)}, fx.invalidator.Tags())
}

func TestModerateReview_SecondDecisionConflicts(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	pending := fx.addPendingReview(fx.author.ID, 5)

	_, err := fx.svc.ModerateReview(ctx, fx.admin.ID, pending.ID, &dto.ModerateReviewRequest{Decision: "approved"})
	require.NoError(t, err)

	profile := fx.store.profile(fx.profile.ID)
	require.Equal(t, int64(1), profile.ReviewCount)

	// A retry, or a second moderator racing the first, must not double-count.
	_, err = fx.svc.ModerateReview(ctx, fx.admin.ID, pending.ID, &dto.ModerateReviewRequest{Decision: "rejected"})
	assert.ErrorIs(t, err, apperrors.ErrReviewAlreadyModerated)

	stored := fx.store.review(pending.ID)
	assert.Equal(t, models.ReviewStatusApproved, stored.Status)

	profile = fx.store.profile(fx.profile.ID)
	assert.Equal(t, 5.0, profile.Rating)
	assert.Equal(t, int64(1), profile.ReviewCount)
}

func TestModerateReview_RequiresAdmin(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	pending := fx.addPendingReview(fx.author.ID, 5)

	_, err := fx.svc.ModerateReview(ctx, fx.owner.ID, pending.ID, &dto.ModerateReviewRequest{Decision: "approved"})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)

	stored := fx.store.review(pending.ID)
	assert.Equal(t, models.ReviewStatusPending, stored.Status)
}

func TestModerateReview_UnknownModerator(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	pending := fx.addPendingReview(fx.author.ID, 5)

	_, err := fx.svc.ModerateReview(ctx, uuid.NewString(), pending.ID, &dto.ModerateReviewRequest{Decision: "approved"})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeUnauthorized, appErr.Code)
}

func TestModerateReview_InvalidDecision(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	pending := fx.addPendingReview(fx.author.ID, 5)

	_, err := fx.svc.ModerateReview(ctx, fx.admin.ID, pending.ID, &dto.ModerateReviewRequest{Decision: "deleted"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidModerationDecision)
}

func TestModerateReview_NotFound(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	_, err := fx.svc.ModerateReview(ctx, fx.admin.ID, uuid.NewString(), &dto.ModerateReviewRequest{Decision: "approved"})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

// ---------------- Visibility ----------------

func TestToggleVisibility_OwnerFlipsFlag(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	review := fx.addApprovedReview(fx.author.ID, 5)

	resp, err := fx.svc.ToggleReviewVisibility(ctx, fx.owner.ID, review.ID)
	require.NoError(t, err)
	assert.False(t, resp.Visible)
	assert.False(t, fx.store.review(review.ID).Visible)

	resp, err = fx.svc.ToggleReviewVisibility(ctx, fx.owner.ID, review.ID)
	require.NoError(t, err)
	assert.True(t, resp.Visible)
	assert.True(t, fx.store.review(review.ID).Visible)
}

func TestToggleVisibility_DoesNotTouchAggregate(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	fx.addApprovedReview(uuid.NewString(), 5)
	hidden := fx.addApprovedReview(fx.author.ID, 1)

	fx.svc.RecomputeProfileRating(ctx, fx.profile.ID)
	before := fx.store.profile(fx.profile.ID)
	require.Equal(t, 3.0, before.Rating)
	require.Equal(t, int64(2), before.ReviewCount)

	_, err := fx.svc.ToggleReviewVisibility(ctx, fx.owner.ID, hidden.ID)
	require.NoError(t, err)

	after := fx.store.profile(fx.profile.ID)
	assert.Equal(t, before.Rating, after.Rating)
	assert.Equal(t, before.ReviewCount, after.ReviewCount)

	// Even a fresh recompute still counts the hidden review.
	fx.svc.RecomputeProfileRating(ctx, fx.profile.ID)
	after = fx.store.profile(fx.profile.ID)
	assert.Equal(t, 3.0, after.Rating)
	assert.Equal(t, int64(2), after.ReviewCount)
}

func TestToggleVisibility_NonOwnerForbidden(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	review := fx.addApprovedReview(fx.author.ID, 5)

	_, err := fx.svc.ToggleReviewVisibility(ctx, fx.author.ID, review.ID)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
	assert.True(t, fx.store.review(review.ID).Visible)
}

func TestToggleVisibility_RequiresApprovedReview(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	pending := fx.addPendingReview(fx.author.ID, 5)

	_, err := fx.svc.ToggleReviewVisibility(ctx, fx.owner.ID, pending.ID)
	assert.ErrorIs(t, err, apperrors.ErrReviewNotModerated)
}

// ---------------- Creation ----------------

func TestCreateReview_StartsPending(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	resp, err := fx.svc.CreateReview(ctx, fx.author.ID, &dto.CreateReviewRequest{
		ProfileID: fx.profile.ID,
		Rating:    4,
		Comment:   "solid work",
	})
	require.NoError(t, err)

	assert.Equal(t, string(models.ReviewStatusPending), resp.Status)
	assert.False(t, resp.Published)
	assert.True(t, resp.Visible)

	// Pending reviews never feed the aggregate.
	profile := fx.store.profile(fx.profile.ID)
	assert.Equal(t, 0.0, profile.Rating)
	assert.Equal(t, int64(0), profile.ReviewCount)
}

func TestCreateReview_SelfReviewRejected(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	_, err := fx.svc.CreateReview(ctx, fx.owner.ID, &dto.CreateReviewRequest{
		ProfileID: fx.profile.ID,
		Rating:    5,
	})
	assert.ErrorIs(t, err, apperrors.ErrSelfReviewNotAllowed)
}

func TestCreateReview_DuplicateRejected(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	req := &dto.CreateReviewRequest{ProfileID: fx.profile.ID, Rating: 4}
	_, err := fx.svc.CreateReview(ctx, fx.author.ID, req)
	require.NoError(t, err)

	_, err = fx.svc.CreateReview(ctx, fx.author.ID, req)
	assert.ErrorIs(t, err, apperrors.ErrReviewAlreadyExists)
}

func TestCreateReview_ServiceMustBelongToProfile(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	otherOwner := fx.store.addUser(&models.User{Email: "other@example.com", Role: models.UserRoleUser})
	otherProfile := fx.store.addProfile(&models.Profile{UserID: otherOwner.ID, DisplayName: "Other"})
	foreignService := fx.store.addService(&models.Service{ProfileID: otherProfile.ID, Title: "Foreign"})

	_, err := fx.svc.CreateReview(ctx, fx.author.ID, &dto.CreateReviewRequest{
		ProfileID: fx.profile.ID,
		ServiceID: &foreignService.ID,
		Rating:    4,
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)
}

func TestCreateReview_RatingOutOfRange(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		_, err := fx.svc.CreateReview(ctx, fx.author.ID, &dto.CreateReviewRequest{
			ProfileID: fx.profile.ID,
			Rating:    rating,
		})
		require.Error(t, err, "rating %d", rating)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
	}
}

// ---------------- Stats and listings ----------------

func TestGetProfileRatingStats(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	fx.addApprovedReview(uuid.NewString(), 5)
	fx.addApprovedReview(uuid.NewString(), 5)
	fx.addApprovedReview(uuid.NewString(), 1)
	fx.addPendingReview(fx.author.ID, 3) // pending, excluded

	stats, err := fx.svc.GetProfileRatingStats(ctx, fx.profile.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalReviews)
	assert.Equal(t, 3.67, stats.AverageRating)
	assert.Equal(t, int64(2), stats.RatingCounts[5])
	assert.Equal(t, int64(1), stats.RatingCounts[1])
	assert.Equal(t, int64(0), stats.RatingCounts[3])
}

func TestGetProfileRatingStats_Empty(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	stats, err := fx.svc.GetProfileRatingStats(ctx, fx.profile.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.TotalReviews)
	assert.Equal(t, 0.0, stats.AverageRating)
	for star := 1; star <= 5; star++ {
		assert.Equal(t, int64(0), stats.RatingCounts[star])
	}
}

func TestGetProfileReviews_HiddenCommentBlanked(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	review := fx.addApprovedReview(fx.author.ID, 4)
	_, err := fx.svc.ToggleReviewVisibility(ctx, fx.owner.ID, review.ID)
	require.NoError(t, err)

	list, err := fx.svc.GetProfileReviews(ctx, fx.profile.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, list.Reviews, 1)

	// Hidden reviews stay listed so counts and averages line up, but the
	// comment is withheld.
	assert.Empty(t, list.Reviews[0].Comment)
	assert.Equal(t, 4, list.Reviews[0].Rating)
	assert.False(t, list.Reviews[0].Visible)
}

// ---------------- Aggregation ----------------

func TestAggregateRating(t *testing.T) {
	cases := []struct {
		name    string
		ratings []int
		want    float64
		count   int64
	}{
		{"empty", nil, 0, 0},
		{"single", []int{4}, 4.0, 1},
		{"exact mean", []int{4, 5}, 4.5, 2},
		{"repeating decimal rounds up", []int{5, 5, 1}, 3.67, 3},
		{"repeating decimal rounds down", []int{1, 1, 2}, 1.33, 3},
		{"all fives", []int{5, 5, 5, 5}, 5.0, 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var reviews []models.Review
			for _, r := range tc.ratings {
				reviews = append(reviews, models.Review{Rating: r})
			}
			got, count := aggregateRating(reviews)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.count, count)
		})
	}
}

func TestCalculateTotalPages(t *testing.T) {
	assert.Equal(t, 0, calculateTotalPages(0, 20))
	assert.Equal(t, 1, calculateTotalPages(1, 20))
	assert.Equal(t, 1, calculateTotalPages(20, 20))
	assert.Equal(t, 2, calculateTotalPages(21, 20))
	assert.Equal(t, 0, calculateTotalPages(10, 0))
}
