// Package auth resolves login attempts to identities and derives what each role may do.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"os"

	"postboard/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// ErrInvalidCredentials is returned for any failed login, whichever part did not match.
var ErrInvalidCredentials = errors.New("invalid username or password")

// IdentityResolver authenticates credentials against a registry of identities.
type IdentityResolver interface {
	Authenticate(ctx context.Context, username, secret string) (*models.Identity, error)
	// ByID returns the identity with the given id, used to rehydrate sessions.
	ByID(id string) (*models.Identity, bool)
}

// StaticRegistry matches the username exactly, then the secret exactly.
type StaticRegistry struct {
	byUsername map[string]models.Identity
	byID       map[string]models.Identity
}

// NewStaticRegistry builds a registry and rejects duplicate ids or usernames and unknown roles.
func NewStaticRegistry(identities []models.Identity) (*StaticRegistry, error) {
	r := &StaticRegistry{
		byUsername: make(map[string]models.Identity, len(identities)),
		byID:       make(map[string]models.Identity, len(identities)),
	}
	for _, id := range identities {
		if id.ID == "" || id.Username == "" {
			return nil, fmt.Errorf("identity %q: id and username are required", id.Username)
		}
		if id.Role != models.RoleStudent && id.Role != models.RoleAdmin {
			return nil, fmt.Errorf("identity %q: unknown role %q", id.Username, id.Role)
		}
		if _, dup := r.byUsername[id.Username]; dup {
			return nil, fmt.Errorf("duplicate username %q", id.Username)
		}
		if _, dup := r.byID[id.ID]; dup {
			return nil, fmt.Errorf("duplicate identity id %q", id.ID)
		}
		r.byUsername[id.Username] = id
		r.byID[id.ID] = id
	}
	return r, nil
}

// Authenticate implements IdentityResolver.
func (r *StaticRegistry) Authenticate(_ context.Context, username, secret string) (*models.Identity, error) {
	id, ok := r.byUsername[username]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(id.Secret), []byte(secret)) != 1 {
		return nil, ErrInvalidCredentials
	}
	return public(id), nil
}

// ByID implements IdentityResolver.
func (r *StaticRegistry) ByID(id string) (*models.Identity, bool) {
	found, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return public(found), true
}

// Len returns the number of identities.
func (r *StaticRegistry) Len() int {
	return len(r.byID)
}

// HashedRegistry is a StaticRegistry whose secrets are bcrypt hashes.
type HashedRegistry struct {
	*StaticRegistry
}

// NewHashedRegistry builds a registry from identities carrying bcrypt-hashed secrets.
func NewHashedRegistry(identities []models.Identity) (*HashedRegistry, error) {
	for _, id := range identities {
		if _, err := bcrypt.Cost([]byte(id.Secret)); err != nil {
			return nil, fmt.Errorf("identity %q: secret is not a bcrypt hash: %w", id.Username, err)
		}
	}
	static, err := NewStaticRegistry(identities)
	if err != nil {
		return nil, err
	}
	return &HashedRegistry{StaticRegistry: static}, nil
}

// Authenticate implements IdentityResolver.
func (r *HashedRegistry) Authenticate(_ context.Context, username, secret string) (*models.Identity, error) {
	id, ok := r.byUsername[username]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(id.Secret), []byte(secret)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return public(id), nil
}

// HashSecrets returns a copy of identities with secrets replaced by bcrypt hashes.
func HashSecrets(identities []models.Identity, cost int) ([]models.Identity, error) {
	out := make([]models.Identity, len(identities))
	for i, id := range identities {
		hash, err := bcrypt.GenerateFromPassword([]byte(id.Secret), cost)
		if err != nil {
			return nil, fmt.Errorf("hash secret for %q: %w", id.Username, err)
		}
		id.Secret = string(hash)
		out[i] = id
	}
	return out, nil
}

// identitiesFile is the YAML layout of an identities file.
type identitiesFile struct {
	Identities []models.Identity `yaml:"identities"`
}

// LoadIdentitiesFile reads identities from a YAML file.
func LoadIdentitiesFile(path string) ([]models.Identity, error) {
	// #nosec G304: path comes from operator configuration
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read identities file: %w", err)
	}
	return ParseIdentities(raw)
}

// ParseIdentities decodes the YAML identities document.
func ParseIdentities(raw []byte) ([]models.Identity, error) {
	var doc identitiesFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse identities: %w", err)
	}
	if len(doc.Identities) == 0 {
		return nil, errors.New("identities file lists no identities")
	}
	return doc.Identities, nil
}

// MarshalIdentities encodes identities in the identities file layout.
func MarshalIdentities(identities []models.Identity) ([]byte, error) {
	return yaml.Marshal(identitiesFile{Identities: identities})
}

// DefaultIdentities is the demo registry used when no identities file is configured.
func DefaultIdentities() []models.Identity {
	return []models.Identity{
		{ID: "student-001", Username: "student1", DisplayName: "Marco Rossi", Role: models.RoleStudent, Secret: "ASMstudent2024!"},
		{ID: "student-002", Username: "student2", DisplayName: "Sofia Chen", Role: models.RoleStudent, Secret: "ASMstudent2024!"},
		{ID: "admin-001", Username: "admin", DisplayName: "Dr. Johnson", Role: models.RoleAdmin, Secret: "ASMadmin2024!"},
	}
}

// NewResolver builds the configured resolver. mode is "static" or "hashed";
// an empty path selects DefaultIdentities.
func NewResolver(mode, path string) (IdentityResolver, error) {
	identities := DefaultIdentities()
	if path != "" {
		loaded, err := LoadIdentitiesFile(path)
		if err != nil {
			return nil, err
		}
		identities = loaded
	}

	switch mode {
	case "", "static":
		return NewStaticRegistry(identities)
	case "hashed":
		if path == "" {
			hashed, err := HashSecrets(identities, bcrypt.DefaultCost)
			if err != nil {
				return nil, err
			}
			identities = hashed
		}
		return NewHashedRegistry(identities)
	default:
		return nil, fmt.Errorf("unknown registry mode %q", mode)
	}
}

func public(id models.Identity) *models.Identity {
	id.Secret = ""
	return &id
}
