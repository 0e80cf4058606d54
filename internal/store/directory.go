package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/isdelr/todoshare-be/internal/models"
)

var (
	ErrDuplicateIdentity = errors.New("duplicate identity")
	ErrUnknownUser       = errors.New("unknown user")
	ErrNotOwner          = errors.New("not the list owner")
	ErrSelfShare         = errors.New("cannot share a list with its owner")
)

// Directory holds user records and resolves usernames and emails to them.
type Directory struct {
	mu         sync.RWMutex
	users      map[string]models.User
	byUsername map[string]string
	byEmail    map[string]string
}

// NewDirectory creates an empty Directory.
func NewDirectory() *Directory {
	return &Directory{
		users:      make(map[string]models.User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

// FindByUsernameOrEmail matches key case-sensitively against usernames, then emails.
func (d *Directory) FindByUsernameOrEmail(key string) (models.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lookupLocked(key)
}

// FindByID returns the user with the given id.
func (d *Directory) FindByID(id string) (models.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	return u, ok
}

// Create stores a new user. The username and the email are each checked
// against both stored fields, so a new username may not equal an existing
// email and vice versa.
func (d *Directory) Create(user models.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	existing, found := d.lookupLocked(user.Username)
	if !found {
		existing, found = d.lookupLocked(user.Email)
	}
	if found {
		if existing.Username == user.Username {
			return fmt.Errorf("%w: username already exists", ErrDuplicateIdentity)
		}
		return fmt.Errorf("%w: email already exists", ErrDuplicateIdentity)
	}
	if _, taken := d.users[user.ID]; taken {
		return fmt.Errorf("%w: id already exists", ErrDuplicateIdentity)
	}

	d.users[user.ID] = user
	d.byUsername[user.Username] = user.ID
	d.byEmail[user.Email] = user.ID
	return nil
}

// Count returns the number of registered users.
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}

func (d *Directory) lookupLocked(key string) (models.User, bool) {
	if id, ok := d.byUsername[key]; ok {
		return d.users[id], true
	}
	if id, ok := d.byEmail[key]; ok {
		return d.users[id], true
	}
	return models.User{}, false
}
