package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"redirly/internal/cache"
	"redirly/internal/entities"
	"redirly/internal/models"
	"redirly/internal/repository"

	"github.com/go-playground/validator/v10"
)

var (
	ErrLinkNotFound = repository.ErrLinkNotFound
	ErrSlugTaken    = repository.ErrSlugTaken
	// ErrLinkInactive is returned when a link is outside its start/end window
	ErrLinkInactive = errors.New("link is not active")
)

// ValidationError reports a rejected field of a link request
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LinkMetrics records link redirect and cache outcomes
type LinkMetrics interface {
	ObserveRedirect(result string)
	ObserveCacheLookup(hit bool)
}

// LinkService defines the interface for link business logic
type LinkService interface {
	Create(ctx context.Context, userID string, req *models.LinkRequest) (*models.LinkResponse, error)
	Get(ctx context.Context, id, userID string) (*models.LinkResponse, error)
	List(ctx context.Context, userID string) ([]*models.LinkResponse, error)
	Update(ctx context.Context, id, userID string, req *models.LinkRequest) (*models.LinkResponse, error)
	Delete(ctx context.Context, id, userID string) error
	Status(ctx context.Context, slug string, now time.Time) (*models.LinkStatusResponse, error)
	Resolve(ctx context.Context, slug, userAgent string, now time.Time) (*models.Destination, error)
}

type linkService struct {
	repo     repository.LinkRepository
	cache    cache.Cache
	validate *validator.Validate
	logger   *slog.Logger
	metrics  LinkMetrics
	baseURL  string
}

// NewLinkService creates a new link service. cacheClient and metrics may be
// nil; without a cache every lookup goes to the database.
func NewLinkService(repo repository.LinkRepository, cacheClient cache.Cache, logger *slog.Logger, metrics LinkMetrics, baseURL string) LinkService {
	if logger == nil {
		logger = slog.Default()
	}
	return &linkService{
		repo:     repo,
		cache:    cacheClient,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
		metrics:  metrics,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

const (
	linkCacheTTL       = time.Hour
	maxSlugAttempts    = 10
	generatedSlugBytes = 6
	minSlugLength      = 3
	maxSlugLength      = 64
)

// Slugs that would shadow application routes
var reservedSlugs = map[string]bool{
	"admin":    true,
	"api":      true,
	"www":      true,
	"health":   true,
	"metrics":  true,
	"auth":     true,
	"login":    true,
	"signin":   true,
	"signup":   true,
	"signout":  true,
	"logout":   true,
	"links":    true,
	"qrcode":   true,
	"redirect": true,
	"status":   true,
}

var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateSlug validates a custom slug
func validateSlug(slug string) error {
	if len(slug) < minSlugLength {
		return &ValidationError{Field: "slug", Message: fmt.Sprintf("must be at least %d characters long", minSlugLength)}
	}
	if len(slug) > maxSlugLength {
		return &ValidationError{Field: "slug", Message: fmt.Sprintf("must be at most %d characters long", maxSlugLength)}
	}
	if !slugPattern.MatchString(slug) {
		return &ValidationError{Field: "slug", Message: "can only contain letters, numbers, hyphens, and underscores"}
	}
	if reservedSlugs[strings.ToLower(slug)] {
		return &ValidationError{Field: "slug", Message: fmt.Sprintf("'%s' is reserved and cannot be used", slug)}
	}
	return nil
}

// generateSlug generates a random 8-character URL-safe slug
func generateSlug() (string, error) {
	buf := make([]byte, generatedSlugBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// validateRequest checks req and returns the link it describes
func (s *linkService) validateRequest(req *models.LinkRequest) (*entities.Link, error) {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return nil, &ValidationError{Field: jsonFieldName(fe.Namespace()), Message: fmt.Sprintf("failed '%s' validation", fe.Tag())}
		}
		return nil, fmt.Errorf("failed to validate link: %w", err)
	}

	if req.StartDate != nil && req.EndDate != nil && !req.EndDate.After(*req.StartDate) {
		return nil, &ValidationError{Field: "end_date", Message: "must be after start_date"}
	}

	link := &entities.Link{
		URL:       strings.TrimSpace(req.URL),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if req.Meta != nil && (req.Meta.AndroidURL != "" || req.Meta.IOSURL != "") {
		link.Meta = &entities.LinkMeta{
			AndroidURL: req.Meta.AndroidURL,
			IOSURL:     req.Meta.IOSURL,
		}
	}
	if req.Slug != nil {
		link.Slug = strings.TrimSpace(*req.Slug)
		if link.Slug != "" {
			if err := validateSlug(link.Slug); err != nil {
				return nil, err
			}
		}
	}
	return link, nil
}

var jsonFieldNames = map[string]string{
	"LinkRequest.URL":             "url",
	"LinkRequest.Meta.AndroidURL": "meta.android_url",
	"LinkRequest.Meta.IOSURL":     "meta.ios_url",
}

func jsonFieldName(namespace string) string {
	if name, ok := jsonFieldNames[namespace]; ok {
		return name
	}
	return namespace
}

// Create validates req and stores a new link owned by userID
func (s *linkService) Create(ctx context.Context, userID string, req *models.LinkRequest) (*models.LinkResponse, error) {
	link, err := s.validateRequest(req)
	if err != nil {
		return nil, err
	}
	link.UserID = userID

	// Custom slug: a collision is the caller's problem
	if link.Slug != "" {
		created, err := s.repo.Create(ctx, link)
		if err != nil {
			return nil, err
		}
		return s.toResponse(created), nil
	}

	// Generated slug: retry on collision
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		link.Slug, err = generateSlug()
		if err != nil {
			return nil, err
		}

		created, err := s.repo.Create(ctx, link)
		if errors.Is(err, ErrSlugTaken) {
			s.logger.Debug("generated slug collided", slog.String("slug", link.Slug))
			continue
		}
		if err != nil {
			return nil, err
		}
		return s.toResponse(created), nil
	}

	return nil, fmt.Errorf("failed to generate unique slug after %d attempts", maxSlugAttempts)
}

// Get returns a link owned by userID
func (s *linkService) Get(ctx context.Context, id, userID string) (*models.LinkResponse, error) {
	link, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(link), nil
}

// List returns all links owned by userID
func (s *linkService) List(ctx context.Context, userID string) ([]*models.LinkResponse, error) {
	links, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.LinkResponse, 0, len(links))
	for _, link := range links {
		responses = append(responses, s.toResponse(link))
	}
	return responses, nil
}

// Update replaces the fields of a link owned by userID. An empty slug keeps the current one.
func (s *linkService) Update(ctx context.Context, id, userID string, req *models.LinkRequest) (*models.LinkResponse, error) {
	link, err := s.validateRequest(req)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	link.ID = existing.ID
	link.UserID = existing.UserID
	if link.Slug == "" {
		link.Slug = existing.Slug
	}

	updated, err := s.repo.Update(ctx, link)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, existing.Slug, updated.Slug)
	return s.toResponse(updated), nil
}

// Delete removes a link owned by userID
func (s *linkService) Delete(ctx context.Context, id, userID string) error {
	deleted, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	s.invalidate(ctx, deleted.Slug)
	return nil
}

// Status reports whether slug is followable at now
func (s *linkService) Status(ctx context.Context, slug string, now time.Time) (*models.LinkStatusResponse, error) {
	link, err := s.lookup(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &models.LinkStatusResponse{
		Slug:      link.Slug,
		Active:    link.ActiveAt(now),
		StartDate: link.StartDate,
		EndDate:   link.EndDate,
	}, nil
}

// Resolve returns the destination of slug for a client with the given user agent
func (s *linkService) Resolve(ctx context.Context, slug, userAgent string, now time.Time) (*models.Destination, error) {
	link, err := s.lookup(ctx, slug)
	if errors.Is(err, ErrLinkNotFound) {
		s.observeRedirect("not_found")
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if !link.ActiveAt(now) {
		s.observeRedirect("inactive")
		return nil, ErrLinkInactive
	}

	dest := destinationFor(link, userAgent)
	s.observeRedirect(dest.Platform)
	return dest, nil
}

var (
	androidAgent = regexp.MustCompile(`(?i)android`)
	iosAgent     = regexp.MustCompile(`(?i)iphone|ipad|ipod`)
)

// destinationFor picks the platform URL matching userAgent, falling back to link.URL
func destinationFor(link *entities.Link, userAgent string) *models.Destination {
	if link.Meta != nil {
		if link.Meta.AndroidURL != "" && androidAgent.MatchString(userAgent) {
			return &models.Destination{URL: link.Meta.AndroidURL, Platform: "android"}
		}
		if link.Meta.IOSURL != "" && iosAgent.MatchString(userAgent) {
			return &models.Destination{URL: link.Meta.IOSURL, Platform: "ios"}
		}
	}
	return &models.Destination{URL: link.URL, Platform: "default"}
}

func slugCacheKey(slug string) string {
	return "link:slug:" + slug
}

// lookup finds a link by slug, trying the cache first
func (s *linkService) lookup(ctx context.Context, slug string) (*entities.Link, error) {
	if s.cache != nil {
		var cached entities.Link
		err := s.cache.GetJSON(ctx, slugCacheKey(slug), &cached)
		switch {
		case err == nil:
			s.observeCache(true)
			return &cached, nil
		case errors.Is(err, cache.ErrCacheMiss):
			s.observeCache(false)
		default:
			s.logger.Warn("link cache read failed", slog.String("slug", slug), slog.String("error", err.Error()))
		}
	}

	link, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, slugCacheKey(slug), link, linkCacheTTL); err != nil {
			s.logger.Warn("link cache write failed", slog.String("slug", slug), slog.String("error", err.Error()))
		}
	}
	return link, nil
}

func (s *linkService) invalidate(ctx context.Context, slugs ...string) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		keys = append(keys, slugCacheKey(slug))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("link cache invalidation failed", slog.Any("slugs", slugs), slog.String("error", err.Error()))
	}
}

func (s *linkService) toResponse(link *entities.Link) *models.LinkResponse {
	return &models.LinkResponse{
		Link:     link,
		ShortURL: fmt.Sprintf("%s/%s", s.baseURL, link.Slug),
	}
}

func (s *linkService) observeRedirect(result string) {
	if s.metrics != nil {
		s.metrics.ObserveRedirect(result)
	}
}

func (s *linkService) observeCache(hit bool) {
	if s.metrics != nil {
		s.metrics.ObserveCacheLookup(hit)
	}
}
