package adminapi

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/corefs/docfs/internal/logger"
)

// Operator is one admin API account. Distinct from the document-protocol
// user registry in pkg/metadatastore, which has no password and is
// populated implicitly on REGISTER_CLIENT.
type Operator struct {
	ID                 string    `json:"id"`
	Username           string    `json:"username"`
	PasswordHash       string    `json:"password_hash"`
	DisplayName        string    `json:"display_name,omitempty"`
	Email              string    `json:"email,omitempty"`
	Role               string    `json:"role"`
	Enabled            bool      `json:"enabled"`
	MustChangePassword bool      `json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

var (
	ErrOperatorNotFound = errors.New("adminapi: operator not found")
	ErrOperatorExists   = errors.New("adminapi: operator already exists")
	ErrWrongPassword    = errors.New("adminapi: wrong password")
	ErrCannotDropAdmin  = errors.New("adminapi: cannot remove the last admin")
)

// operatorStore holds every admin API account. It is a small hand-rolled
// registry in the same shape as pkg/metadatastore's in-memory tables, saved
// to a single JSON file rather than spread across pluggable persisters: the
// operator population is tiny and never a hot path (SPEC_FULL.md §3's admin
// API is "small and read-mostly").
type operatorStore struct {
	path string
	cost int

	mu        sync.Mutex
	operators map[string]*Operator
}

func newOperatorStore(path string, bcryptCost int) *operatorStore {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &operatorStore{path: path, cost: bcryptCost, operators: make(map[string]*Operator)}
}

// load reads the JSON file at path if present, otherwise leaves the store
// empty for bootstrap to populate.
func (s *operatorStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var list []*Operator
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range list {
		s.operators[op.Username] = op
	}
	return nil
}

func (s *operatorStore) saveLocked() error {
	list := make([]*Operator, 0, len(s.operators))
	for _, op := range s.operators {
		list = append(list, op)
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// bootstrapAdmin creates the "admin" operator with a random password if no
// operator exists yet at all, logging the generated password once so an
// operator can log in and change it (MustChangePassword is set).
func (s *operatorStore) bootstrapAdmin(id func() string) (generatedPassword string, created bool, err error) {
	s.mu.Lock()
	empty := len(s.operators) == 0
	s.mu.Unlock()
	if !empty {
		return "", false, nil
	}

	password := randomPassword()
	if err := s.create(&Operator{
		ID:                 id(),
		Username:           "admin",
		Role:               RoleAdmin,
		Enabled:            true,
		MustChangePassword: true,
	}, password); err != nil {
		return "", false, err
	}
	return password, true, nil
}

func (s *operatorStore) create(op *Operator, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	now := time.Now()
	op.PasswordHash = string(hash)
	op.CreatedAt = now
	op.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.operators[op.Username]; exists {
		return ErrOperatorExists
	}
	s.operators[op.Username] = op
	return s.saveLocked()
}

func (s *operatorStore) get(username string) (*Operator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.operators[username]
	if !ok {
		return nil, ErrOperatorNotFound
	}
	cp := *op
	return &cp, nil
}

func (s *operatorStore) list() []*Operator {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Operator, 0, len(s.operators))
	for _, op := range s.operators {
		cp := *op
		out = append(out, &cp)
	}
	return out
}

func (s *operatorStore) verifyPassword(username, password string) (*Operator, error) {
	op, err := s.get(username)
	if err != nil {
		return nil, err
	}
	if !op.Enabled {
		return nil, ErrOperatorNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}
	return op, nil
}

func (s *operatorStore) update(username string, mutate func(op *Operator)) (*Operator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.operators[username]
	if !ok {
		return nil, ErrOperatorNotFound
	}
	mutate(op)
	op.UpdatedAt = time.Now()
	if err := s.saveLocked(); err != nil {
		return nil, err
	}
	cp := *op
	return &cp, nil
}

func (s *operatorStore) setPassword(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	_, err = s.update(username, func(op *Operator) {
		op.PasswordHash = string(hash)
		op.MustChangePassword = false
	})
	return err
}

func (s *operatorStore) delete(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.operators[username]
	if !ok {
		return ErrOperatorNotFound
	}
	if op.Role == RoleAdmin && countAdminsLocked(s.operators) <= 1 {
		return ErrCannotDropAdmin
	}
	delete(s.operators, username)
	return s.saveLocked()
}

func countAdminsLocked(operators map[string]*Operator) int {
	n := 0
	for _, op := range operators {
		if op.Role == RoleAdmin {
			n++
		}
	}
	return n
}

func logBootstrapPassword(username, password string) {
	logger.Warn("adminapi: bootstrapped operator account, change its password immediately",
		"username", username, "password", password)
}
