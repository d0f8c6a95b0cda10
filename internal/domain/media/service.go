package media

import (
	"context"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"eralearn/internal/pkg/jwt"
)

const youtubeEmbedBase = "https://www.youtube.com/embed/"

// StreamRoute is where Resolve points internal assets.
const StreamRoute = "/api/media/stream/"

var (
	youtubeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	assetIDPattern   = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

type AssetRepository interface {
	Create(ctx context.Context, a *Asset) error
	GetByID(ctx context.Context, id string) (*Asset, error)
}

// MediaFiles reports whether a storage path names a servable video.
type MediaFiles interface {
	Exists(storagePath string) bool
}

type TokenIssuer interface {
	GenerateMediaToken(userID, storagePath string) (string, time.Time, error)
	ValidateMediaToken(token, storagePath string) (*jwt.MediaClaims, error)
}

type Service struct {
	assets           AssetRepository
	files            MediaFiles
	tokens           TokenIssuer
	publicBase       string
	internalRedirect string
	log              *zap.Logger
}

// NewService wires asset resolution. With internalRedirect empty, streams are
// handed to the static server at publicBase by HTTP redirect.
func NewService(assets AssetRepository, files MediaFiles, tokens TokenIssuer, publicBase, internalRedirect string, log *zap.Logger) *Service {
	return &Service{
		assets:           assets,
		files:            files,
		tokens:           tokens,
		publicBase:       "/" + strings.Trim(publicBase, "/"),
		internalRedirect: strings.TrimRight(internalRedirect, "/"),
		log:              log,
	}
}

func (s *Service) Create(ctx context.Context, userID string, req CreateAssetRequest) (*Asset, error) {
	a := &Asset{
		ID:        req.ID,
		Title:     strings.TrimSpace(req.Title),
		Provider:  req.Provider,
		CreatedBy: userID,
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	} else if !assetIDPattern.MatchString(a.ID) {
		return nil, ErrInvalidAssetID
	}

	switch req.Provider {
	case ProviderInternal:
		p := strings.TrimPrefix(req.StoragePath, "/")
		if !s.files.Exists(p) {
			return nil, ErrMediaFileMissing
		}
		a.StoragePath = p
	case ProviderYouTube:
		if !youtubeIDPattern.MatchString(req.YouTubeID) {
			return nil, ErrInvalidYouTubeID
		}
		a.YouTubeID = req.YouTubeID
	default:
		return nil, ErrUnknownProvider
	}

	if err := s.assets.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info("asset registered",
		zap.String("asset_id", a.ID),
		zap.String("provider", string(a.Provider)),
		zap.String("user_id", userID),
	)
	return a, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Asset, error) {
	return s.assets.GetByID(ctx, id)
}

// Resolve returns a playback URL for the asset. YouTube assets pass through
// as embed URLs; internal assets get a short-lived stream URL bound to userID.
func (s *Service) Resolve(ctx context.Context, userID, assetID string) (*Resolution, error) {
	a, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	if a.Provider == ProviderYouTube {
		return &Resolution{Provider: a.Provider, URL: youtubeEmbedBase + a.YouTubeID}, nil
	}

	token, expiresAt, err := s.tokens.GenerateMediaToken(userID, a.StoragePath)
	if err != nil {
		return nil, err
	}
	return &Resolution{
		Provider:  a.Provider,
		URL:       StreamRoute + escapePath(a.StoragePath) + "?token=" + url.QueryEscape(token),
		ExpiresAt: &expiresAt,
	}, nil
}

// Authorize checks a media token against the requested storage path.
func (s *Service) Authorize(token, storagePath string) (*Delivery, error) {
	storagePath = strings.TrimPrefix(storagePath, "/")
	if token == "" || storagePath == "" {
		return nil, ErrInvalidMediaToken
	}

	claims, err := s.tokens.ValidateMediaToken(token, storagePath)
	if err != nil {
		s.log.Info("media token rejected", zap.String("path", storagePath), zap.Error(err))
		return nil, ErrInvalidMediaToken
	}

	s.log.Debug("media stream authorized",
		zap.String("path", storagePath),
		zap.String("user_id", claims.Subject),
	)
	if s.internalRedirect != "" {
		return &Delivery{InternalRedirect: s.internalRedirect + "/" + escapePath(storagePath)}, nil
	}
	return &Delivery{RedirectURL: path.Join(s.publicBase, escapePath(storagePath))}, nil
}

// escapePath escapes each segment of a slash-separated storage path.
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}
