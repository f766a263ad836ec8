package store

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/inamate/sketch/internal/codec"
	"github.com/inamate/sketch/internal/typeid"
)

var (
	ErrNotFound  = errors.New("scene not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("scene was modified")
)

// Scene is the metadata of a stored scene file.
type Scene struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	Digest    string    `json:"digest"`
	Size      int       `json:"size"`
	Layers    int       `json:"layers"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository persists scene files. Implementations return ErrNotFound for
// unknown ids.
type Repository interface {
	Insert(ctx context.Context, s Scene, data []byte) error
	Get(ctx context.Context, id string) (Scene, []byte, error)
	Update(ctx context.Context, s Scene, data []byte) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]Scene, error)
}

// Service stores scene files on behalf of their owners. Every file is
// validated and re-encoded by the codec before it is written, so stored
// bytes are always in the current format.
type Service struct {
	repo  Repository
	codec *codec.Codec
	now   func() time.Time
}

func NewService(repo Repository, c *codec.Codec) *Service {
	return &Service{repo: repo, codec: c, now: time.Now}
}

// Digest returns the content digest used as the scene ETag.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:16])
}

// Normalize imports data and exports it again in the current format.
func (s *Service) Normalize(ctx context.Context, data []byte) ([]byte, int, error) {
	doc, err := s.codec.Import(ctx, data)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.codec.Export(ctx, doc)
	if err != nil {
		return nil, 0, err
	}
	return out, len(doc.Layers), nil
}

func (s *Service) Create(ctx context.Context, ownerID, name string, data []byte) (*Scene, error) {
	canonical, layers, err := s.Normalize(ctx, data)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	scene := Scene{
		ID:        typeid.NewSceneID(),
		OwnerID:   ownerID,
		Name:      name,
		Digest:    Digest(canonical),
		Size:      len(canonical),
		Layers:    layers,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, scene, canonical); err != nil {
		return nil, fmt.Errorf("insert scene: %w", err)
	}
	return &scene, nil
}

func (s *Service) Get(ctx context.Context, id, userID string) (*Scene, []byte, error) {
	if err := typeid.Validate(id, typeid.PrefixScene); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	scene, data, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if scene.OwnerID != userID {
		return nil, nil, ErrForbidden
	}
	return &scene, data, nil
}

// Replace overwrites a scene. A non-empty ifMatch must equal the current
// digest, otherwise ErrConflict is returned and nothing is written.
func (s *Service) Replace(ctx context.Context, id, userID, ifMatch string, data []byte) (*Scene, error) {
	scene, _, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != scene.Digest {
		return nil, ErrConflict
	}
	canonical, layers, err := s.Normalize(ctx, data)
	if err != nil {
		return nil, err
	}
	scene.Digest = Digest(canonical)
	scene.Size = len(canonical)
	scene.Layers = layers
	scene.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, *scene, canonical); err != nil {
		return nil, fmt.Errorf("update scene: %w", err)
	}
	return scene, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if _, _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, userID string) ([]Scene, error) {
	scenes, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	return scenes, nil
}

// Summary describes a stored scene file.
func (s *Service) Summary(ctx context.Context, id, userID string) (*codec.Summary, error) {
	_, data, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	sum, err := s.codec.Inspect(ctx, data)
	if err != nil {
		return nil, err
	}
	return &sum, nil
}
