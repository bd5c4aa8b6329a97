// Package roster is the directory of workers an overseer can address.
//
// Entries are weak references: the registry never owns a member's
// lifecycle, it only indexes members by name and installs the optional
// back-references a member opts into through the capability interfaces
// below. Name resolution is case-insensitive with a deterministic fuzzy
// fallback so the same query always lands on the same member.
package roster

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Overseer is the minimal view of the arbiter a member may hold.
type Overseer interface {
	OverseerID() string
}

// Member is the minimum contract for a registry entry.
type Member interface {
	MemberID() string
}

// OverseerAware members receive a back-reference to the overseer that
// registered them.
type OverseerAware interface {
	SetOverseer(Overseer)
}

// Accountable members keep a reports-to list. The registry appends the
// overseer's id on first registration of a member and never appends the
// same id twice, so implementations do not need their own guard.
type Accountable interface {
	AddReportsTo(overseerID string)
}

// NotFoundError reports a name that resolved to no registered member.
// Registered carries the known names so callers can suggest them.
type NotFoundError struct {
	Name       string
	Registered []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no crew found matching %q", e.Name)
}

// IsNotFound reports whether err is a roster NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Registry indexes members under their lower-cased names for one
// overseer. All methods are safe for concurrent use.
type Registry struct {
	overseer Overseer

	mu      sync.RWMutex
	members map[string]Member
	linked  map[string]bool // member ids whose reports-to list already names the overseer
}

// NewRegistry returns an empty registry owned by the given overseer.
func NewRegistry(o Overseer) *Registry {
	return &Registry{
		overseer: o,
		members:  make(map[string]Member),
		linked:   make(map[string]bool),
	}
}

// Register stores the member under lower(name). Re-registering a name
// replaces the previous entry. If the member is Accountable the
// overseer's id is appended to its reports-to list exactly once across
// all registrations; if it is OverseerAware the back-reference is set.
func (r *Registry) Register(name string, m Member) {
	key := strings.ToLower(strings.TrimSpace(name))

	r.mu.Lock()
	r.members[key] = m
	needsLink := !r.linked[m.MemberID()]
	if needsLink {
		r.linked[m.MemberID()] = true
	}
	r.mu.Unlock()

	// Capability hooks run outside the lock: they call into foreign code.
	if aware, ok := m.(OverseerAware); ok {
		aware.SetOverseer(r.overseer)
	}
	if acc, ok := m.(Accountable); ok && needsLink {
		acc.AddReportsTo(r.overseer.OverseerID())
	}
}

// Unregister removes the entry for name. It reports whether the name was
// registered. Removal is a pure key deletion: back-references installed
// at registration time are left on the member.
func (r *Registry) Unregister(name string) bool {
	key := strings.ToLower(strings.TrimSpace(name))

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[key]; !ok {
		return false
	}
	delete(r.members, key)
	return true
}

// Resolve maps a name to a member id. Exact lowered match wins first;
// otherwise the query and each registered key are compared by substring
// in both directions and the lexicographically smallest matching key is
// chosen, keeping fuzzy resolution deterministic.
func (r *Registry) Resolve(name string) (string, error) {
	m, _, err := r.ResolveEntry(name)
	if err != nil {
		return "", err
	}
	return m.MemberID(), nil
}

// ResolveEntry resolves like Resolve but returns the member itself along
// with the canonical name it is registered under.
func (r *Registry) ResolveEntry(name string) (Member, string, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	r.mu.RLock()
	defer r.mu.RUnlock()

	if key != "" {
		if m, ok := r.members[key]; ok {
			return m, key, nil
		}

		best := ""
		for k := range r.members {
			if !strings.Contains(k, key) && !strings.Contains(key, k) {
				continue
			}
			if best == "" || k < best {
				best = k
			}
		}
		if best != "" {
			return r.members[best], best, nil
		}
	}

	return nil, "", &NotFoundError{Name: name, Registered: r.namesLocked()}
}

// ByID scans for the member with the given id.
func (r *Registry) ByID(id string) (Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.members {
		if m.MemberID() == id {
			return m, true
		}
	}
	return nil, false
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

// Len returns the number of registered members.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.members))
	for k := range r.members {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
